package alias

import (
	"math"
	"sync"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/ygm-project/ygm-go/adaptors"
	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/weight"
)

func TestNewBuildsBalancedTablesAcrossRanks(t *testing.T) {
	const nranks = 4
	cluster := comm.NewCluster(nranks)

	items := make([][]weight.Item[int], nranks)
	items[0] = []weight.Item[int]{{ID: 0, Weight: 100}}
	for r := 1; r < nranks; r++ {
		items[r] = []weight.Item[int]{{ID: r, Weight: 1}}
	}

	tables := make([]*Table[int], nranks)
	err := cluster.Each(func(c *comm.Communicator) error {
		tbl, err := New(c, adaptors.FromSlice(items[c.Rank()]), nil)
		tables[c.Rank()] = tbl
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	for r, tbl := range tables {
		if tbl.LocalSize() == 0 {
			t.Errorf("rank %d: empty local table after balancing one heavy item across %d ranks", r, nranks)
		}
	}
}

func TestNewRejectsAllZeroWeight(t *testing.T) {
	const nranks = 3
	cluster := comm.NewCluster(nranks)
	err := cluster.Each(func(c *comm.Communicator) error {
		_, err := New(c, adaptors.FromSlice([]weight.Item[int]{{ID: c.Rank(), Weight: 0}}), nil)
		return err
	})
	if err == nil {
		t.Fatal("expected error constructing a Table over all-zero weight, got nil")
	}
}

// TestAsyncSampleFrequencyLaw exercises the sampling-frequency-law
// property: over many draws, the observed relative frequency of an
// item converges to its share of the global weight (spec §8 item 4).
// It scores convergence with gonum's chi-squared statistic against
// the two-item multinomial the weights imply, rather than a bare
// tolerance check, since a raw frequency comparison is too noisy at
// achievable sample sizes for a unit test.
func TestAsyncSampleFrequencyLaw(t *testing.T) {
	const nranks = 4
	cluster := comm.NewCluster(nranks)

	// Rank 0 holds one heavy item, everyone else holds one light item,
	// so weight-proportional sampling is easy to reason about:
	// P(heavy) = 97 / 100, P(light_r) = 1/100 each.
	items := make([][]weight.Item[string], nranks)
	items[0] = []weight.Item[string]{{ID: "heavy", Weight: 97}}
	for r := 1; r < nranks; r++ {
		items[r] = []weight.Item[string]{{ID: "light", Weight: 1}}
	}

	tables := make([]*Table[string], nranks)
	err := cluster.Each(func(c *comm.Communicator) error {
		tbl, err := New(c, adaptors.FromSlice(items[c.Rank()]), nil)
		tables[c.Rank()] = tbl
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	const samplesPerRank = 20000
	var mu sync.Mutex
	counts := map[string]int64{}
	err = cluster.Each(func(c *comm.Communicator) error {
		tbl := tables[c.Rank()]
		for i := 0; i < samplesPerRank; i++ {
			tbl.AsyncSample(func(item string) {
				mu.Lock()
				counts[item]++
				mu.Unlock()
			})
		}
		c.Barrier()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	total := float64(nranks * samplesPerRank)
	observed := []float64{float64(counts["heavy"]), float64(counts["light"])}
	expected := []float64{0.97 * total, 0.03 * total}

	chi2 := stat.ChiSquare(observed, expected)
	// 1 degree of freedom (2 categories, no fitted parameters); this
	// bound rejects only gross divergence, not sampling noise.
	const chi2Bound = 20.0
	if chi2 > chi2Bound {
		t.Errorf("chi-squared statistic %v exceeds bound %v; observed=%v expected=%v",
			chi2, chi2Bound, observed, expected)
	}

	got := observed[0] / total
	if math.Abs(got-0.97) > 0.01 {
		t.Errorf("observed heavy-item frequency %v, want within 0.01 of 0.97", got)
	}
}
