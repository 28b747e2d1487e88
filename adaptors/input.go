// Package adaptors turns user-supplied collections into the
// (id, weight) sequences that alias.New consumes, so callers do not
// have to hand-build a []weight.Item themselves.
package adaptors

import "github.com/ygm-project/ygm-go/weight"

// Sequence is a push-iterator over weighted items: it calls yield once
// per item, in order, stopping early if yield returns false. This
// mirrors the range-over-func shape Go 1.23 standardized as
// iter.Seq2[Item, float64], written out by hand to stay compatible
// with older toolchains.
type Sequence[Item any] func(yield func(Item, float64) bool)

// Collect drains seq into a []weight.Item[Item], the shape the
// balancer and alias table builder expect.
func Collect[Item any](seq Sequence[Item]) []weight.Item[Item] {
	var out []weight.Item[Item]
	seq(func(id Item, w float64) bool {
		out = append(out, weight.Item[Item]{ID: id, Weight: w})
		return true
	})
	return out
}

// FromSlice adapts a []weight.Item[Item] already in that shape into a
// Sequence, for symmetry with the other constructors.
func FromSlice[Item any](items []weight.Item[Item]) Sequence[Item] {
	return func(yield func(Item, float64) bool) {
		for _, it := range items {
			if !yield(it.ID, it.Weight) {
				return
			}
		}
	}
}

// FromWeightFunc adapts a plain slice of ids plus a weight function,
// for callers whose weight is derived rather than stored alongside
// the id (e.g. a word's weight being its occurrence count, computed
// from a separate frequency table).
func FromWeightFunc[Item any](ids []Item, weight func(Item) float64) Sequence[Item] {
	return func(yield func(Item, float64) bool) {
		for _, id := range ids {
			if !yield(id, weight(id)) {
				return
			}
		}
	}
}

// FromDistributedSlices adapts a slice that is already the caller's
// local shard of a larger distributed collection: each rank calls
// this with only its own shard, mirroring how the balancer expects to
// receive "items scattered arbitrarily across ranks" rather than a
// single rank's full collection. It is FromSlice under a name that
// documents the calling convention; the distribution itself is the
// caller's responsibility, same as it is for weight.Balance.
func FromDistributedSlices[Item any](localShard []weight.Item[Item]) Sequence[Item] {
	return FromSlice(localShard)
}
