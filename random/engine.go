// Package random provides the communicator-scoped, per-rank
// deterministic pseudo-random stream that the alias-table sampler's
// rank selection and local sampling are built on.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	rmath "math/rand"
	"sync"

	"github.com/ygm-project/ygm-go/comm"
)

// Engine is a single rank's PRNG stream. It is not safe for
// concurrent use, matching the single-threaded-per-rank execution
// model: a rank's own logical stream is the only caller.
type Engine struct {
	rng *rmath.Rand
}

// NewEngine returns a per-rank engine. If seed is non-nil, every
// rank's stream is derived deterministically from *seed by
// splitmix64-mixing it with the rank index, so re-running with the
// same (seed, rank count) reproduces the same per-rank streams. If
// seed is nil, rank 0 draws entropy from crypto/rand and broadcasts
// it to every other rank before returning, so every rank mixes the
// same base seed; the result is not reproducible across runs.
func NewEngine(c *comm.Communicator, seed *uint64) *Engine {
	var base uint64
	if seed != nil {
		base = *seed
	} else {
		base = broadcastEntropy(c)
	}
	mixed := splitmix64(base) ^ splitmix64(uint64(c.Rank())*0x9E3779B97F4A7C15)
	return &Engine{rng: rmath.New(rmath.NewSource(int64(mixed)))}
}

// broadcastEntropy has rank 0 draw a random 64-bit seed and ship it to
// every other rank via one-sided async messages, then barriers so
// every rank has the value before sampling begins.
func broadcastEntropy(c *comm.Communicator) uint64 {
	var seed uint64
	if c.Rank() == 0 {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand failing is a fatal environment error, not a
			// user error; there is nothing to recover to.
			panic("random: crypto/rand unavailable: " + err.Error())
		}
		seed = binary.LittleEndian.Uint64(buf[:])
		for dest := 1; dest < c.Size(); dest++ {
			c.Async(dest, func(peer *comm.Communicator) {
				setBroadcastSeed(peer, seed)
			})
		}
	}
	c.Barrier()
	if c.Rank() != 0 {
		seed = takeBroadcastSeed(c)
	}
	return seed
}

// broadcastSeeds stashes the seed delivered to each rank by
// broadcastEntropy until that rank reads it back after the barrier.
// Keyed by *comm.Communicator identity since one process may host
// several clusters/tests concurrently. The write (during this rank's
// own drainInbox, inside its own Barrier call) and the read (right
// after that same Barrier call returns) happen on the same rank
// goroutine, but distinct ranks' entries share this one map, so
// access is still serialized with a mutex.
var broadcastSeeds = struct {
	mu sync.Mutex
	m  map[*comm.Communicator]uint64
}{m: make(map[*comm.Communicator]uint64)}

func setBroadcastSeed(c *comm.Communicator, seed uint64) {
	broadcastSeeds.mu.Lock()
	broadcastSeeds.m[c] = seed
	broadcastSeeds.mu.Unlock()
}

func takeBroadcastSeed(c *comm.Communicator) uint64 {
	broadcastSeeds.mu.Lock()
	seed := broadcastSeeds.m[c]
	delete(broadcastSeeds.m, c)
	broadcastSeeds.mu.Unlock()
	return seed
}

// splitmix64 is the standard SplitMix64 mixing function, used to
// derive well-distributed per-rank seeds from a single scalar seed
// without needing a cryptographic hash.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// UniformInt draws an integer uniformly from [lo, hi], inclusive of
// both endpoints (matching the sampler's use for selecting a
// destination rank in [0, R-1]).
func (e *Engine) UniformInt(lo, hi int) int {
	if hi < lo {
		panic("random: UniformInt: hi < lo")
	}
	return lo + e.rng.Intn(hi-lo+1)
}

// UniformFloat64 draws a float64 uniformly from [lo, hi).
func (e *Engine) UniformFloat64(lo, hi float64) float64 {
	if math.IsNaN(lo) || math.IsNaN(hi) || hi < lo {
		panic("random: UniformFloat64: invalid range")
	}
	return lo + e.rng.Float64()*(hi-lo)
}
