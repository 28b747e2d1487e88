package workqueue

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"

	"github.com/ygm-project/ygm-go/comm"
)

// Queue is a distributed work queue: each rank holds a local Policy
// instance, and items inserted locally are drained into work during
// the rank's own barrier, not at insertion time. Grounded on
// original_source/include/ygm/container/work_queue.hpp.
type Queue[Item any] struct {
	comm *comm.Communicator
	work func(q *Queue[Item], item Item)
	self *comm.Handle[Queue[Item]]

	policy             Policy[Item]
	callbackRegistered bool
}

// New constructs a Queue collectively: every rank in c must call New,
// each with its own policy, in the same relative barrier order. work
// is invoked once per drained item, on the rank that owns it.
func New[Item any](c *comm.Communicator, policy Policy[Item], work func(q *Queue[Item], item Item)) *Queue[Item] {
	log.Printf("workqueue: rank %d: creating work_queue", c.Rank())
	q := &Queue[Item]{
		comm:   c,
		work:   work,
		policy: policy,
	}
	q.self = comm.NewHandle(c, "workqueue.Queue", q)
	return q
}

// LocalInsert appends item to the local queue in policy order. The
// first insertion since the local queue was last drained registers a
// pre-barrier callback that drains it; later insertions in the same
// batch reuse that registration.
func (q *Queue[Item]) LocalInsert(item Item) {
	q.policy.Push(item)
	if !q.callbackRegistered {
		q.registerProcessingCallback()
	}
}

// LocalProcessAll drains the local queue by policy order, invoking
// the work function for each item. Items pushed by the work function
// itself (recursive re-entrant insertion, spec §4.6) are observed by
// this same loop, since it re-checks Empty after every callback rather
// than snapshotting the queue up front. A nil policy (a queue whose
// contents MoveFrom took) is treated as already empty: a pre-barrier
// callback registered before the move and still queued on the shared
// Communicator would otherwise panic here instead of harmlessly
// no-op'ing.
func (q *Queue[Item]) LocalProcessAll() {
	if q.policy == nil {
		return
	}
	for !q.policy.Empty() {
		item := q.policy.Top()
		q.policy.Pop()
		q.work(q, item)
	}
}

// registerProcessingCallback arms a pre-barrier callback that drains
// the local queue on this rank's next Barrier. The flag is cleared
// only after the drain completes, so LocalInsert calls made from
// inside the work function during that drain do not arm a second,
// redundant callback.
func (q *Queue[Item]) registerProcessingCallback() {
	q.comm.RegisterPreBarrierCallback(func() {
		q.LocalProcessAll()
		q.callbackRegistered = false
	})
	q.callbackRegistered = true
}

// LocalHasWork reports whether the local queue has undrained items. A
// queue whose policy was taken by MoveFrom reports false rather than
// panicking, so a moved-from source stays inspectable.
func (q *Queue[Item]) LocalHasWork() bool { return q.policy != nil && !q.policy.Empty() }

// LocalSize returns the number of undrained items in the local queue,
// or 0 for a queue whose policy was taken by MoveFrom.
func (q *Queue[Item]) LocalSize() int {
	if q.policy == nil {
		return 0
	}
	return q.policy.Size()
}

// LocalClear discards all local items without draining them. Use it
// to abandon unfinished work before Close instead of letting Close
// fail its emptiness check.
func (q *Queue[Item]) LocalClear() {
	if q.policy == nil {
		return
	}
	for !q.policy.Empty() {
		q.policy.Pop()
	}
}

// Clear discards each rank's local items and then barriers, so no
// rank observes a mix of drained and cleared work from the others.
func (q *Queue[Item]) Clear() {
	q.LocalClear()
	q.comm.Barrier()
}

// AsyncInsert inserts item into dest's local queue. It is
// fire-and-forget like comm.Async: the insertion, and any drain it
// triggers, is only guaranteed complete after the caller's next
// Barrier.
func (q *Queue[Item]) AsyncInsert(dest int, item Item) {
	self := q.self
	q.comm.Async(dest, func(peer *comm.Communicator) {
		self.Dereference(peer).LocalInsert(item)
	})
}

// MoveFrom transfers src's local queue and pending callback state into
// q and leaves src empty with its callback flag cleared; a callback src
// registered before the move stays queued on the Communicator and runs
// once at the next Barrier as a no-op. It stands in for the
// original's move constructor/assignment (spec §8 item 7; spec §4.6's
// Open Question — Go has no move constructors, so this is an explicit
// operation instead of an implicit one triggered by assignment). src's
// policy is severed rather than cleared, since the two share no
// backing storage after the move; LocalHasWork/LocalSize/LocalClear on
// src report empty rather than panicking on the nil policy.
func (q *Queue[Item]) MoveFrom(src *Queue[Item]) {
	log.Printf("workqueue: rank %d: moving work_queue", q.comm.Rank())
	q.policy = src.policy
	q.callbackRegistered = false
	src.policy = nil
	src.callbackRegistered = false
	if q.LocalHasWork() {
		q.registerProcessingCallback()
	}
}

// Close asserts that the local queue is empty and logs destruction.
// Unlike the original's destructor, Close does not barrier first: a
// collective barrier in a destructor deadlocks as soon as one rank
// tears its queue down before another rank reaches the same point
// (spec §9's redesign note). Callers that want the original's
// barrier-then-assert behavior should call q.comm.Barrier() themselves
// immediately before Close.
func (q *Queue[Item]) Close() error {
	log.Printf("workqueue: rank %d: destroying work_queue", q.comm.Rank())
	if q.LocalHasWork() {
		return errors.E(errors.Invalid, "workqueue: Close called with unprocessed local items; call LocalClear or LocalProcessAll first")
	}
	return nil
}
