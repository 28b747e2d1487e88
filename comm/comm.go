// Package comm implements the fixed-membership, asynchronous
// one-sided messaging communicator that the sampler and work-queue
// packages are built on. Its internal buffering and progress engine
// are intentionally minimal: the contract is what matters, not how
// fast a single process can shuffle closures between goroutines.
//
// A Cluster hosts a fixed number of ranks in a single process. Each
// rank's Communicator only processes messages addressed to it while
// it is inside a Barrier call (the reductions Sum, PrefixSum,
// LogicalOr and IsSame do not deliver messages) — matching the
// single-threaded-per-rank execution
// model described in the library this package's contract is drawn
// from: a rank's logical stream never observes concurrent mutation of
// its own state from an incoming RPC while it is running ordinary
// user code.
package comm

import (
	"context"
	"sync"

	"github.com/grailbio/base/log"
	"golang.org/x/sync/errgroup"

	"github.com/ygm-project/ygm-go/ctxsync"
	"github.com/ygm-project/ygm-go/stats"
)

// message is a single one-sided invocation queued for a destination
// rank. args are simply the closure's captured state; there is no
// wire format because the whole cluster lives in one process.
type message func(*Communicator)

// Communicator is one rank's view of a Cluster. It is not safe for
// concurrent use by more than one goroutine at a time except where
// explicitly noted (Async may be called from any rank's own
// goroutine).
type Communicator struct {
	cluster *Cluster
	rank    int

	sync.Mutex
	cond *ctxsync.Cond

	inbox     []message
	preBarrer []func()

	Stats *stats.Map
}

// Cluster is the fixed set of ranks sharing one in-process message
// fabric. It plays the role of the library's messaging layer: an
// external collaborator whose internals (buffering, coalescing,
// progress) are a black box to the sampler and work-queue packages
// built atop it.
type Cluster struct {
	comms []*Communicator

	mu       sync.Mutex
	inFlight int64 // total messages sent but not yet processed, cluster-wide

	barrierGen int
	barrierIn  int
	barrierMu  sync.Mutex
	barrierC   *ctxsync.Cond

	gatherMu     sync.Mutex
	gatherC      *ctxsync.Cond
	gather       *gatherRound
	gatherResult []float64

	handles handleRegistry
}

// NewCluster constructs an n-rank in-process cluster. n must be at
// least 1.
func NewCluster(n int) *Cluster {
	if n < 1 {
		log.Fatalf("comm: NewCluster: n must be >= 1, got %d", n)
	}
	c := &Cluster{comms: make([]*Communicator, n)}
	c.barrierC = ctxsync.NewCond(&c.barrierMu)
	c.gatherC = ctxsync.NewCond(&c.gatherMu)
	c.handles.allocCond = ctxsync.NewCond(&c.handles.allocMu)
	for r := 0; r < n; r++ {
		comm := &Communicator{cluster: c, rank: r, Stats: stats.NewMap()}
		comm.cond = ctxsync.NewCond(comm)
		c.comms[r] = comm
	}
	return c
}

// Comm returns the Communicator for rank r.
func (c *Cluster) Comm(r int) *Communicator { return c.comms[r] }

// Size returns the number of ranks in the cluster.
func (c *Cluster) Size() int { return len(c.comms) }

// Each runs fn concurrently once per rank, using an errgroup so the
// first error returned by any rank aborts the fan-out and propagates.
// This is how every collective in this package is actually driven:
// user code (or a test) calls Each to simulate the R independent
// logical streams making the same collective call at roughly the
// same time.
func (c *Cluster) Each(fn func(comm *Communicator) error) error {
	var g errgroup.Group
	for _, comm := range c.comms {
		comm := comm
		g.Go(func() error { return fn(comm) })
	}
	return g.Wait()
}

// Rank returns this communicator's rank in [0, Size()).
func (c *Communicator) Rank() int { return c.rank }

// Size returns the fixed number of ranks in the cluster.
func (c *Communicator) Size() int { return c.cluster.Size() }

// Cluster returns the owning cluster, for constructing further
// per-rank collaborators (e.g. random.Engine) that need to see every
// rank.
func (c *Communicator) Cluster() *Cluster { return c.cluster }

// Async enqueues a one-sided invocation of fn on rank dest and
// returns immediately without waiting for fn to run. fn executes on
// dest's own logical stream the next time dest enters Barrier.
func (c *Communicator) Async(dest int, fn func(*Communicator)) {
	c.cluster.mu.Lock()
	c.cluster.inFlight++
	c.cluster.mu.Unlock()

	target := c.cluster.comms[dest]
	target.Lock()
	target.inbox = append(target.inbox, fn)
	target.cond.Broadcast()
	target.Unlock()

	c.Stats.Int("async_sent").Add(1)
}

// RegisterPreBarrierCallback adds fn to the list fired on this rank
// at the start of every subsequent Barrier call, before quiescence is
// checked. Callbacks are one-shot: register again from within fn if
// it should keep firing.
func (c *Communicator) RegisterPreBarrierCallback(fn func()) {
	c.Lock()
	c.preBarrer = append(c.preBarrer, fn)
	c.Unlock()
}

// drainInbox executes every message currently queued for this rank,
// decrementing the cluster's in-flight counter as each completes.
// Must be called with c unlocked; it takes and releases the lock
// itself around each pop so that a handler which calls back into c
// (e.g. local_insert on an owned queue) sees consistent state.
func (c *Communicator) drainInbox() {
	for {
		c.Lock()
		if len(c.inbox) == 0 {
			c.Unlock()
			return
		}
		fn := c.inbox[0]
		c.inbox = c.inbox[1:]
		c.Unlock()

		fn(c)

		c.cluster.mu.Lock()
		c.cluster.inFlight--
		c.cluster.mu.Unlock()
		c.Stats.Int("async_processed").Add(1)
	}
}

// firePreBarrierCallbacks runs and clears this rank's registered
// pre-barrier callbacks. A callback that wants to run again next
// round must call RegisterPreBarrierCallback itself.
func (c *Communicator) firePreBarrierCallbacks() {
	c.Lock()
	fns := c.preBarrer
	c.preBarrer = nil
	c.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// hasPendingCallback reports whether this rank has a pre-barrier
// callback registered right now (used by Barrier to decide whether
// another round is needed).
func (c *Communicator) hasPendingCallback() bool {
	c.Lock()
	defer c.Unlock()
	return len(c.preBarrer) > 0
}

// rendezvous blocks until every rank in the cluster has called
// rendezvous for the current barrier generation, then advances the
// generation and releases all waiters. It is the cyclic-barrier
// primitive Barrier repeats every round.
func (c *Cluster) rendezvous() {
	c.barrierMu.Lock()
	gen := c.barrierGen
	c.barrierIn++
	if c.barrierIn == len(c.comms) {
		c.barrierIn = 0
		c.barrierGen++
		c.barrierC.Broadcast()
		c.barrierMu.Unlock()
		return
	}
	for gen == c.barrierGen {
		// The concurrency model (spec §5) has no cancellation: a rank
		// that hangs hangs the job, so this wait has no deadline.
		_ = c.barrierC.Wait(context.Background())
	}
	c.barrierMu.Unlock()
}

// Barrier is collective: it must be called by every rank before any
// of them returns. It fires each rank's pre-barrier callbacks, lets
// every rank drain its inbox, and repeats until the whole cluster has
// no in-flight messages and no rank re-armed a pre-barrier callback
// during the round — matching the requirement that a re-entrant
// insertion during drain is itself fully processed before the
// barrier completes.
func (c *Communicator) Barrier() {
	for {
		c.firePreBarrierCallbacks()
		c.drainInbox()
		c.cluster.rendezvous()

		c.cluster.mu.Lock()
		inFlight := c.cluster.inFlight
		c.cluster.mu.Unlock()

		pending := c.hasPendingCallback()
		anyPending := c.cluster.anyPendingCallback()

		if inFlight == 0 && !pending && !anyPending {
			c.cluster.rendezvous() // second sync: agree cluster-wide before returning
			return
		}
		c.cluster.rendezvous()
	}
}

func (c *Cluster) anyPendingCallback() bool {
	for _, comm := range c.comms {
		if comm.hasPendingCallback() {
			return true
		}
	}
	return false
}
