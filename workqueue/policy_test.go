package workqueue

import "testing"

func drain[Item any](p Policy[Item]) []Item {
	var out []Item
	for !p.Empty() {
		out = append(out, p.Top())
		p.Pop()
	}
	return out
}

func TestFIFOOrder(t *testing.T) {
	q := NewFIFO[int]()
	for _, v := range []int{1, 2, 3} {
		q.Push(v)
	}
	if q.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", q.Size())
	}
	got := drain[int](q)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if !q.Empty() {
		t.Error("expected empty queue after draining")
	}
}

func TestFIFOReusesBackingArrayAfterFullDrain(t *testing.T) {
	q := NewFIFO[int]()
	q.Push(1)
	q.Push(2)
	drain[int](q)
	q.Push(3)
	if got := q.Top(); got != 3 {
		t.Fatalf("Top() = %d, want 3", got)
	}
}

func TestLIFOOrder(t *testing.T) {
	q := NewLIFO[int]()
	for _, v := range []int{1, 2, 3} {
		q.Push(v)
	}
	got := drain[int](q)
	want := []int{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPriorityOrder(t *testing.T) {
	// std::priority_queue<Item, vector<Item>, std::less<Item>> default:
	// a natural less-than predicate drains largest-first.
	q := NewPriority[int](func(a, b int) bool { return a < b })
	for _, v := range []int{5, 1, 4, 2, 3} {
		q.Push(v)
	}
	got := drain[int](q)
	want := []int{5, 4, 3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPriorityRespectsCustomOrdering(t *testing.T) {
	// Passing a greater-than predicate to NewPriority inverts it back
	// to smallest-first, the std::greater<Item> convention.
	q := NewPriority[int](func(a, b int) bool { return a > b })
	for _, v := range []int{5, 1, 4, 2, 3} {
		q.Push(v)
	}
	if got := q.Top(); got != 1 {
		t.Fatalf("Top() = %d, want 1", got)
	}
}

func TestNewPriorityGreaterDrainsSmallestFirst(t *testing.T) {
	q := NewPriorityGreater[int](func(a, b int) bool { return a < b })
	for _, v := range []int{5, 1, 4, 2, 3} {
		q.Push(v)
	}
	got := drain[int](q)
	want := []int{1, 2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
