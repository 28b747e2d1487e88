package main

import (
	"fmt"
	"sync"

	"github.com/grailbio/base/log"

	"github.com/ygm-project/ygm-go/adaptors"
	"github.com/ygm-project/ygm-go/alias"
	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/weight"
)

// s2Sampling reproduces scenario S2: N samples/rank across R ranks
// must deliver exactly N*R callbacks in total.
func s2Sampling(args []string) {
	fs := newFlagSet("s2-sampling")
	ranks := fs.Int("ranks", 4, "number of simulated ranks")
	samplesPerRank := fs.Int("samples-per-rank", 100000, "AsyncSample calls issued per rank")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	items := make([][]weight.Item[int], *ranks)
	for r := 0; r < *ranks; r++ {
		items[r] = []weight.Item[int]{{ID: r, Weight: float64(r + 1)}}
	}

	cluster := comm.NewCluster(*ranks)
	tables := make([]*alias.Table[int], *ranks)
	err := cluster.Each(func(c *comm.Communicator) error {
		tbl, err := alias.New(c, adaptors.FromSlice(items[c.Rank()]), nil)
		tables[c.Rank()] = tbl
		return err
	})
	if err != nil {
		log.Fatal(err)
	}

	var mu sync.Mutex
	var delivered int64
	err = cluster.Each(func(c *comm.Communicator) error {
		tbl := tables[c.Rank()]
		for i := 0; i < *samplesPerRank; i++ {
			tbl.AsyncSample(func(item int) {
				mu.Lock()
				delivered++
				mu.Unlock()
			})
		}
		c.Barrier()
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	want := int64(*samplesPerRank) * int64(*ranks)
	if delivered != want {
		log.Fatalf("s2-sampling: delivered %d callbacks, want %d", delivered, want)
	}
	fmt.Printf("s2-sampling: ranks=%d samples-per-rank=%d delivered=%d OK\n", *ranks, *samplesPerRank, delivered)
	printClusterStats("s2-sampling", cluster)
}
