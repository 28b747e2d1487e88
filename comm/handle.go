package comm

import (
	"context"
	"encoding/binary"
	"strconv"
	"sync"

	"github.com/grailbio/base/log"
	"github.com/spaolacci/murmur3"

	"github.com/ygm-project/ygm-go/ctxsync"
)

// handleRegistry backs Handle[T]'s cross-rank resolution. Handles are
// registered collectively: every rank calls NewHandle with its own
// local peer object, and NewHandle itself is a rendezvous, exactly
// like the "objects register themselves by construction order
// collectively" contract requires. The id assigned is therefore the
// same on every rank without any value ever crossing the wire to
// negotiate it.
type handleRegistry struct {
	mu      sync.Mutex
	objects map[uint64]map[int]any

	allocMu      sync.Mutex
	allocCond    *ctxsync.Cond
	allocGen     int
	allocArrived int
	allocNext    uint64
	allocResult  uint64
}

// allocate blocks until every rank in the cluster has called
// allocate for this logical registration point, then returns the
// same freshly-minted id to all of them.
func (r *handleRegistry) allocate(n int) uint64 {
	r.allocMu.Lock()
	gen := r.allocGen
	r.allocArrived++
	if r.allocArrived == n {
		id := r.allocNext
		r.allocNext++
		r.allocResult = id
		r.allocArrived = 0
		r.allocGen++
		r.allocCond.Broadcast()
		r.allocMu.Unlock()
		return id
	}
	for gen == r.allocGen {
		_ = r.allocCond.Wait(context.Background())
	}
	id := r.allocResult
	r.allocMu.Unlock()
	return id
}

func (r *handleRegistry) register(id uint64, rank int, obj any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.objects == nil {
		r.objects = make(map[uint64]map[int]any)
	}
	byRank := r.objects[id]
	if byRank == nil {
		byRank = make(map[int]any)
		r.objects[id] = byRank
	}
	byRank[rank] = obj
}

func (r *handleRegistry) lookup(id uint64, rank int) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byRank := r.objects[id]
	if byRank == nil {
		return nil, false
	}
	v, ok := byRank[rank]
	return v, ok
}

// Handle is the cross-rank reference to a per-rank object: the
// contract's ygm_ptr equivalent. It is a small value (an id and a
// kind tag) that can be captured by an Async closure and sent to any
// rank; Dereference on the receiving rank resolves it to that rank's
// own locally-registered peer object.
type Handle[T any] struct {
	id      uint64
	kind    string
	cluster *Cluster
	digest  uint32
}

// NewHandle is collective: every rank must call it, passing its own
// local instance of T, in the same order relative to any other
// NewHandle calls on the same cluster (mirroring "created in a
// deterministic order" from the contract). It blocks until every rank
// has called it, then returns a Handle usable from any rank to
// address any other rank's registered peer.
func NewHandle[T any](c *Communicator, kind string, obj *T) *Handle[T] {
	id := c.cluster.handles.allocate(c.cluster.Size())
	c.cluster.handles.register(id, c.rank, obj)
	h := &Handle[T]{
		id:      id,
		kind:    kind,
		cluster: c.cluster,
		digest:  fingerprint(kind, id),
	}
	log.Debug.Printf("comm: rank %d: registered handle kind=%s id=%d digest=%08x", c.rank, kind, id, h.digest)
	return h
}

// Dereference returns the peer object registered for c's rank. It
// panics if no local object was registered for that rank, which
// indicates every rank did not call NewHandle for this logical
// object — a construction-order bug, not a runtime condition a
// caller can recover from.
func (h *Handle[T]) Dereference(c *Communicator) *T {
	v, ok := h.cluster.handles.lookup(h.id, c.rank)
	if !ok {
		panic("comm: Handle.Dereference: no local object registered for rank " +
			strconv.Itoa(c.rank) + " (handle kind " + h.kind + ")")
	}
	return v.(*T)
}

// Digest returns a stable fingerprint of this handle's identity,
// logged in NewHandle's registration line so a rank mismatch between
// two supposedly-identical handles shows up as differing digests in
// the log rather than requiring a field-by-field comparison.
func (h *Handle[T]) Digest() uint32 { return h.digest }

func fingerprint(kind string, id uint64) uint32 {
	buf := make([]byte, len(kind)+8)
	n := copy(buf, kind)
	binary.LittleEndian.PutUint64(buf[n:], id)
	return murmur3.Sum32WithSeed(buf, 0x9747b28c)
}
