// Package workqueue implements the FIFO/LIFO/priority work-queue
// policies and the drain-at-barrier container built on top of them,
// grounded on original_source/include/ygm/container/work_queue.hpp
// and .../detail/work_queue_policy.hpp.
package workqueue

import "container/heap"

// Policy is the ordering strategy of a Queue's local storage. It is
// the Go analogue of the original's policy structs, which parameterize
// work_queue on the underlying std::queue/std::stack/std::priority_queue.
type Policy[Item any] interface {
	Push(item Item)
	Top() Item
	Pop()
	Empty() bool
	Size() int
}

// FIFO is a Policy backed by a slice used as a ring-free queue: items
// come out in the order they were pushed.
type FIFO[Item any] struct {
	items []Item
	head  int
}

func NewFIFO[Item any]() *FIFO[Item] { return &FIFO[Item]{} }

func (q *FIFO[Item]) Push(item Item) { q.items = append(q.items, item) }

func (q *FIFO[Item]) Top() Item { return q.items[q.head] }

func (q *FIFO[Item]) Pop() {
	q.items[q.head] = *new(Item)
	q.head++
	if q.head == len(q.items) {
		q.items, q.head = q.items[:0], 0
	}
}

func (q *FIFO[Item]) Empty() bool { return q.head == len(q.items) }

func (q *FIFO[Item]) Size() int { return len(q.items) - q.head }

// LIFO is a Policy backed by a slice used as a stack: items come out
// most-recently-pushed first.
type LIFO[Item any] struct {
	items []Item
}

func NewLIFO[Item any]() *LIFO[Item] { return &LIFO[Item]{} }

func (q *LIFO[Item]) Push(item Item) { q.items = append(q.items, item) }

func (q *LIFO[Item]) Top() Item { return q.items[len(q.items)-1] }

func (q *LIFO[Item]) Pop() {
	last := len(q.items) - 1
	q.items[last] = *new(Item)
	q.items = q.items[:last]
}

func (q *LIFO[Item]) Empty() bool { return len(q.items) == 0 }

func (q *LIFO[Item]) Size() int { return len(q.items) }

// Priority is a Policy backed by container/heap: items come out in
// the order defined by less, mirroring std::priority_queue<Item,
// vector<Item>, Comp>.
type Priority[Item any] struct {
	h priorityHeap[Item]
}

// NewPriority builds a Priority policy with std::priority_queue<Item,
// vector<Item>, Comp>'s default-Comp convention: less is a strict
// "less than" predicate over Item, and the queue drains largest-first,
// exactly as std::priority_queue<Item, vector<Item>, std::less<Item>>
// does. Pass an inverted predicate, or use NewPriorityGreater, to get
// smallest-first draining instead.
func NewPriority[Item any](less func(a, b Item) bool) *Priority[Item] {
	return &Priority[Item]{h: priorityHeap[Item]{less: less}}
}

// NewPriorityGreater builds a Priority policy that drains
// smallest-first, mirroring std::priority_queue<Item, vector<Item>,
// std::greater<Item>>. It takes the same natural less-than predicate
// as NewPriority; only the extraction order is inverted.
func NewPriorityGreater[Item any](less func(a, b Item) bool) *Priority[Item] {
	return NewPriority(func(a, b Item) bool { return less(b, a) })
}

func (q *Priority[Item]) Push(item Item) { heap.Push(&q.h, item) }

func (q *Priority[Item]) Top() Item { return q.h.items[0] }

func (q *Priority[Item]) Pop() { heap.Pop(&q.h) }

func (q *Priority[Item]) Empty() bool { return len(q.h.items) == 0 }

func (q *Priority[Item]) Size() int { return len(q.h.items) }

type priorityHeap[Item any] struct {
	items []Item
	less  func(a, b Item) bool
}

func (h priorityHeap[Item]) Len() int { return len(h.items) }

// Less inverts the caller's predicate: container/heap.Pop always
// extracts what Less calls smallest, but std::priority_queue's default
// Comp=less extracts largest. Swapping the operands here makes a plain
// less produce that max-heap behavior.
func (h priorityHeap[Item]) Less(i, j int) bool { return h.less(h.items[j], h.items[i]) }
func (h priorityHeap[Item]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *priorityHeap[Item]) Push(x interface{}) { h.items = append(h.items, x.(Item)) }
func (h *priorityHeap[Item]) Pop() interface{} {
	last := len(h.items) - 1
	x := h.items[last]
	h.items[last] = *new(Item)
	h.items = h.items[:last]
	return x
}
