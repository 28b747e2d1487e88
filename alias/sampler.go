package alias

import (
	"github.com/grailbio/base/log"

	"github.com/ygm-project/ygm-go/adaptors"
	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/random"
	"github.com/ygm-project/ygm-go/weight"
)

// Table is the distributed sampling frontend of spec §4.4: it holds
// one rank's slice of a global collection of weighted items, balanced
// so every rank carries an equal share of the total weight, and a
// local Vose alias table over that slice. AsyncSample picks a random
// destination rank and asks it to sample locally and deliver the
// result to a visitor, so that sampling probability of any item x
// equals its relative global weight (spec §4.4).
type Table[Item any] struct {
	comm *comm.Communicator
	self *comm.Handle[Table[Item]]

	rng *random.Engine

	table     []Entry[Item]
	avgWeight float64
}

// New constructs a Table collectively: c.Size() ranks must each call
// New with their own local sequence of (id, weight) pairs, in the
// same order. seq may be any adaptors.Sequence[Item] — a plain slice
// via adaptors.FromSlice, a derived-weight adaptor via
// adaptors.FromWeightFunc, or a caller's own generator — and is
// drained into a []weight.Item[Item] once, up front. Construction
// runs the same three-barrier sequence as the original implementation
// this contract is drawn from: one barrier before balancing, one
// between balancing and local table construction, and one after,
// immediately before the pre-balance items are discarded — see
// SPEC_FULL.md §9.
func New[Item any](c *comm.Communicator, seq adaptors.Sequence[Item], seed *uint64) (*Table[Item], error) {
	items := adaptors.Collect(seq)
	log.Printf("alias: rank %d: constructing alias.Table over %d local items", c.Rank(), len(items))

	c.Barrier()
	balanced, err := weight.Balance(c, items)
	if err != nil {
		return nil, err
	}
	c.Barrier()

	table, avg := BuildLocal(balanced)

	t := &Table[Item]{
		comm:      c,
		rng:       random.NewEngine(c, seed),
		table:     table,
		avgWeight: avg,
	}
	t.self = comm.NewHandle(c, "alias.Table", t)

	c.Barrier()
	log.Printf("alias: rank %d: local table has %d entries, avgWeight=%v", c.Rank(), len(table), avg)
	return t, nil
}

// AsyncSample chooses a random destination rank, asks it to sample
// one item from its local table, and invokes visitor with the
// sampled item on that destination rank. The call is fire-and-forget:
// it returns before the sample has necessarily been taken. All
// outstanding AsyncSample calls are guaranteed complete after the
// caller's next Barrier.
func (t *Table[Item]) AsyncSample(visitor func(item Item)) {
	dest := t.rng.UniformInt(0, t.comm.Size()-1)
	self := t.self
	t.comm.Async(dest, func(peer *comm.Communicator) {
		local := self.Dereference(peer)
		x := LocalSample(local.table, local.avgWeight, local.rng)
		visitor(x)
	})
}

// AsyncSampleWithHandle behaves like AsyncSample, but the visitor
// also receives a handle to the local table on the sampling
// destination, letting it re-enter the sampler or address the table
// again (spec §4.4's optional handle-arity form; see DESIGN.md's
// "Callback arity" open-question resolution).
func (t *Table[Item]) AsyncSampleWithHandle(visitor func(h *Table[Item], item Item)) {
	dest := t.rng.UniformInt(0, t.comm.Size()-1)
	self := t.self
	t.comm.Async(dest, func(peer *comm.Communicator) {
		local := self.Dereference(peer)
		x := LocalSample(local.table, local.avgWeight, local.rng)
		visitor(local, x)
	})
}

// LocalSize returns the number of entries in this rank's local alias
// table.
func (t *Table[Item]) LocalSize() int { return len(t.table) }
