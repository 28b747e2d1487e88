package comm

import "context"

// gatherRound is one round of an all-gather: every rank contributes
// its local value and receives the full per-rank vector back. Sum,
// PrefixSum, LogicalOr, and IsSame are all expressed in terms of it,
// mirroring how MPI implementations typically layer named collectives
// over a common gather-and-broadcast primitive.
type gatherRound struct {
	values  []float64
	arrived int
	gen     int
}

func (c *Cluster) allGather(rank int, v float64) []float64 {
	c.gatherMu.Lock()
	if c.gather == nil {
		c.gather = &gatherRound{values: make([]float64, len(c.comms))}
	}
	g := c.gather
	gen := g.gen
	g.values[rank] = v
	g.arrived++
	if g.arrived == len(c.comms) {
		result := make([]float64, len(c.comms))
		copy(result, g.values)
		c.gatherResult = result
		g.arrived = 0
		g.gen++
		c.gatherC.Broadcast()
		c.gatherMu.Unlock()
		return result
	}
	for gen == g.gen {
		_ = c.gatherC.Wait(context.Background())
	}
	result := c.gatherResult
	c.gatherMu.Unlock()
	return result
}

// Sum is a collective reduction returning the sum of v across every
// rank, identically on every rank.
func (c *Communicator) Sum(v float64) float64 {
	total := 0.0
	for _, x := range c.cluster.allGather(c.rank, v) {
		total += x
	}
	return total
}

// PrefixSum is a collective returning the inclusive prefix sum of v
// up to and including this rank: rank r receives
// sum(v_0, ..., v_r).
func (c *Communicator) PrefixSum(v float64) float64 {
	vals := c.cluster.allGather(c.rank, v)
	sum := 0.0
	for r := 0; r <= c.rank; r++ {
		sum += vals[r]
	}
	return sum
}

// LogicalOr is a collective returning true if v is true on any rank.
func (c *Communicator) LogicalOr(v bool) bool {
	in := 0.0
	if v {
		in = 1.0
	}
	for _, x := range c.cluster.allGather(c.rank, in) {
		if x != 0 {
			return true
		}
	}
	return false
}

// IsSame is a collective returning true if eq(v, x) holds for every
// rank's value x, using this rank's v as the reference. It is used by
// the weight balancer to double-check that every rank's balanced
// weight is within epsilon of this rank's.
func (c *Communicator) IsSame(v float64, eq func(a, b float64) bool) bool {
	vals := c.cluster.allGather(c.rank, v)
	for _, x := range vals {
		if !eq(v, x) {
			return false
		}
	}
	return true
}
