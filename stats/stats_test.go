package stats

import "testing"

func TestStats(t *testing.T) {
	coll := NewMap()
	var (
		x = coll.Int("x")
		_ = coll.Int("y")
	)
	if got, want := x.Get(), int64(0); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	x.Add(123)
	x.Add(123)
	if got, want := x.Get(), int64(123*2); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	snap := coll.Snapshot()
	if got, want := len(snap), 2; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := snap["x"], int64(123*2); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := snap["y"], int64(0); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := snap.String(), "x:246 y:0"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNilInt(t *testing.T) {
	var v *Int
	v.Add(1) // must not panic
	if got, want := v.Get(), int64(0); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}
