package weight

import (
	"math"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/ygm-project/ygm-go/comm"
)

// epsilon is the absolute weight-balance tolerance from spec §3/§4.2.
const epsilon = 1e-6

// Balance redistributes items scattered arbitrarily across ranks so
// that every rank ends up holding exactly W_total/R of the total
// weight, splitting items across rank boundaries as needed. It
// returns an error if the global weight is zero, if there are more
// ranks than items of positive weight, or if the post-balance drift
// exceeds epsilon (the latter indicates an algorithmic bug, not a
// user error, and is reported as errors.Integrity rather than
// errors.Invalid).
func Balance[T any](c *comm.Communicator, items []Item[T]) ([]Item[T], error) {
	localWeights := make([]float64, len(items))
	for i, it := range items {
		localWeights[i] = it.Weight
	}
	localWeight := floats.Sum(localWeights)

	globalWeight := c.Sum(localWeight)
	if globalWeight <= 0 {
		return nil, errors.E(errors.Invalid, "weight: global weight is zero (or negative)")
	}
	positive := 0
	for _, it := range items {
		if it.Weight > 0 {
			positive++
		}
	}
	if c.Sum(float64(positive)) < float64(c.Size()) {
		return nil, errors.E(errors.Invalid, "weight: more ranks than items of positive weight")
	}

	// Inclusive prefix sum: rank r knows the cumulative weight of
	// ranks [0, r].
	prefixInclusive := c.PrefixSum(localWeight)
	prefixExclusive := prefixInclusive - localWeight

	target := globalWeight / float64(c.Size())
	destRank := int(math.Floor(prefixExclusive / target))
	currWeight := math.Mod(prefixExclusive, target)

	var newLocalItems []Item[T]
	handle := comm.NewHandle(c, "weight.balancedBuffer", &newLocalItems)

	c.Barrier()

	// local_items may grow in place as an item spanning >= 3
	// destination regions re-appends its residual; iterate by index,
	// never by range, so growth mid-loop is observed (spec §9).
	pending := append([]Item[T]{}, items...)
	var itemsToSend []Item[T]
	for i := 0; i < len(pending); i++ {
		it := pending[i]
		if currWeight+it.Weight >= target {
			remaining := currWeight + it.Weight - target
			weightToSend := it.Weight - remaining
			currWeight += weightToSend
			itemsToSend = append(itemsToSend, Item[T]{ID: it.ID, Weight: weightToSend})

			if destRank < c.Size() {
				sendItems := itemsToSend
				dest := destRank
				c.Async(dest, func(peer *comm.Communicator) {
					buf := handle.Dereference(peer)
					*buf = append(*buf, sendItems...)
				})
			}

			if remaining >= target {
				// This single item still spans further destination
				// regions; keep slicing it in subsequent iterations
				// instead of recursing.
				pending = append(pending, Item[T]{ID: it.ID, Weight: remaining})
				currWeight = 0
			} else {
				currWeight = remaining
			}
			itemsToSend = nil
			if currWeight != 0 {
				itemsToSend = append(itemsToSend, Item[T]{ID: it.ID, Weight: currWeight})
			}
			destRank++
		} else {
			itemsToSend = append(itemsToSend, it)
			currWeight += it.Weight
		}
	}
	if len(itemsToSend) > 0 && destRank < c.Size() {
		sendItems := itemsToSend
		dest := destRank
		c.Async(dest, func(peer *comm.Communicator) {
			buf := handle.Dereference(peer)
			*buf = append(*buf, sendItems...)
		})
	}

	c.Barrier()

	if len(newLocalItems) == 0 {
		return nil, errors.E(errors.Invalid,
			"weight: rank ended up with zero items after balancing")
	}

	newWeights := make([]float64, len(newLocalItems))
	for i, it := range newLocalItems {
		newWeights[i] = it.Weight
	}
	newSum := floats.Sum(newWeights)
	if math.Abs(newSum-target) >= epsilon {
		return nil, errors.E(errors.Integrity, "weight: local weight drifted beyond epsilon after balancing")
	}
	if !c.IsSame(newSum, func(a, b float64) bool { return math.Abs(a-b) < epsilon }) {
		return nil, errors.E(errors.Integrity, "weight: ranks disagree on balanced weight beyond epsilon")
	}
	return newLocalItems, nil
}
