package adaptors

import (
	"testing"

	"github.com/ygm-project/ygm-go/weight"
)

func TestCollectFromSlice(t *testing.T) {
	items := []weight.Item[string]{
		{ID: "a", Weight: 1},
		{ID: "b", Weight: 2},
	}
	got := Collect(FromSlice(items))
	if len(got) != len(items) {
		t.Fatalf("Collect returned %d items, want %d", len(got), len(items))
	}
	for i := range items {
		if got[i] != items[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], items[i])
		}
	}
}

func TestFromWeightFunc(t *testing.T) {
	ids := []string{"x", "yy", "zzz"}
	seq := FromWeightFunc(ids, func(s string) float64 { return float64(len(s)) })
	got := Collect(seq)
	want := []weight.Item[string]{
		{ID: "x", Weight: 1},
		{ID: "yy", Weight: 2},
		{ID: "zzz", Weight: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFromDistributedSlicesCollectsOnlyItsOwnShard(t *testing.T) {
	shard := []weight.Item[string]{{ID: "shard-a", Weight: 5}, {ID: "shard-b", Weight: 7}}
	got := Collect(FromDistributedSlices(shard))
	if len(got) != len(shard) {
		t.Fatalf("Collect returned %d items, want %d", len(got), len(shard))
	}
	for i := range shard {
		if got[i] != shard[i] {
			t.Errorf("got[%d] = %+v, want %+v", i, got[i], shard[i])
		}
	}
}

func TestSequenceStopsOnFalse(t *testing.T) {
	items := []weight.Item[int]{{ID: 1, Weight: 1}, {ID: 2, Weight: 1}, {ID: 3, Weight: 1}}
	seq := FromSlice(items)
	var seen []int
	seq(func(id int, w float64) bool {
		seen = append(seen, id)
		return len(seen) < 2
	})
	if len(seen) != 2 {
		t.Fatalf("seen = %v, want 2 items", seen)
	}
}
