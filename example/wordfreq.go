// Package example is a minimal, self-contained demonstration of
// building a distributed alias table over a word-frequency corpus and
// drawing weighted samples from it. It is meant to be read, not run
// as a CLI; see cmd/ygmdemo for the runnable scenarios.
package example

import (
	"strings"
	"sync"

	"github.com/ygm-project/ygm-go/adaptors"
	"github.com/ygm-project/ygm-go/alias"
	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/weight"
)

// WordFrequencySample builds a corpus-wide alias table across the
// given cluster, one rank's shard of the corpus at a time, and has
// every rank draw numSamples weighted-random words from it
// (numSamples*cluster.Size() in total). The returned map counts how
// many times each word was sampled.
func WordFrequencySample(cluster *comm.Cluster, corpus string, numSamples int) (map[string]int64, error) {
	words := strings.Fields(corpus)
	counts := map[string]int64{}
	for _, w := range words {
		counts[w]++
	}

	nranks := cluster.Size()
	shards := make([][]weight.Item[string], nranks)
	i := 0
	for w, c := range counts {
		r := i % nranks
		shards[r] = append(shards[r], weight.Item[string]{ID: w, Weight: float64(c)})
		i++
	}

	tables := make([]*alias.Table[string], nranks)
	if err := cluster.Each(func(c *comm.Communicator) error {
		// Each rank only ever sees its own shard of the corpus's word
		// counts, so this is the distributed-shard adaptor, not a
		// caller with the full collection in hand.
		tbl, err := alias.New(c, adaptors.FromDistributedSlices(shards[c.Rank()]), nil)
		tables[c.Rank()] = tbl
		return err
	}); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	samples := map[string]int64{}
	err := cluster.Each(func(c *comm.Communicator) error {
		tbl := tables[c.Rank()]
		for n := 0; n < numSamples; n++ {
			tbl.AsyncSample(func(word string) {
				mu.Lock()
				samples[word]++
				mu.Unlock()
			})
		}
		c.Barrier()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}
