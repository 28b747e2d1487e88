// Package alias builds, from weighted items already balanced across
// ranks, a per-rank alias table supporting O(1) weighted random
// sampling (Vose's method, Keith Schwarz's numerically stable
// variant), and exposes a distributed sampler frontend on top of it.
package alias

import (
	"github.com/ygm-project/ygm-go/random"
	"github.com/ygm-project/ygm-go/weight"
)

// Entry is one bucket of a local alias table. With probability
// P/avgWeight the bucket produces A; otherwise it produces B. When an
// entry represents a single residual item, P equals avgWeight and B
// is the zero value of Item, which BuildLocal guarantees is never
// selected.
type Entry[Item any] struct {
	P    float64
	A, B Item
}

// BuildLocal implements the local half of spec §4.3: given a rank's
// already-balanced items, it partitions them into light (weight <
// avg) and heavy (weight >= avg) piles and pairs them off, always
// computing the heavy item's residual as (h+l)-avg rather than
// h-(avg-l), which is the numerically stable form (spec §4.3, §9).
// avgWeight is returned alongside the table because sampling needs it.
func BuildLocal[Item any](items []weight.Item[Item]) (table []Entry[Item], avgWeight float64) {
	if len(items) == 0 {
		return nil, 0
	}
	var total float64
	for _, it := range items {
		total += it.Weight
	}
	avg := total / float64(len(items))

	light := make([]weight.Item[Item], 0, len(items))
	heavy := make([]weight.Item[Item], 0, len(items))
	for _, it := range items {
		if it.Weight < avg {
			light = append(light, it)
		} else {
			heavy = append(heavy, it)
		}
	}

	table = make([]Entry[Item], 0, len(items))
	for len(light) > 0 && len(heavy) > 0 {
		l := light[len(light)-1]
		light = light[:len(light)-1]
		h := heavy[len(heavy)-1]
		heavy = heavy[:len(heavy)-1]

		table = append(table, Entry[Item]{P: l.Weight, A: l.ID, B: h.ID})
		h.Weight = (h.Weight + l.Weight) - avg
		if h.Weight < avg {
			light = append(light, h)
		} else {
			heavy = append(heavy, h)
		}
	}
	// Only one of heavy/light can still hold items; both flushes are
	// written out because floating-point drift can leave a residual
	// on either side (spec §4.3 step 3).
	for _, h := range heavy {
		table = append(table, Entry[Item]{P: avg, A: h.ID})
	}
	for _, l := range light {
		table = append(table, Entry[Item]{P: avg, A: l.ID})
	}
	return table, avg
}

// LocalSample draws one item from a table built by BuildLocal, using
// rng for both the bucket choice and (when the bucket is not
// unconditional) the coin flip between A and B.
func LocalSample[Item any](table []Entry[Item], avgWeight float64, rng *random.Engine) Item {
	e := table[rng.UniformInt(0, len(table)-1)]
	if e.P >= avgWeight {
		return e.A
	}
	f := rng.UniformFloat64(0, avgWeight)
	if f <= e.P {
		return e.A
	}
	return e.B
}
