package example

import (
	"math"
	"testing"

	"github.com/ygm-project/ygm-go/comm"
)

func TestWordFrequencySampleConvergesToTrueFrequency(t *testing.T) {
	corpus := "the quick brown fox the lazy dog the fox runs"
	cluster := comm.NewCluster(3)

	const numSamplesPerRank = 30000
	samples, err := WordFrequencySample(cluster, corpus, numSamplesPerRank)
	if err != nil {
		t.Fatal(err)
	}

	total := float64(numSamplesPerRank * cluster.Size())
	// "the" occurs 3/10 times in the corpus.
	got := float64(samples["the"]) / total
	if math.Abs(got-0.3) > 0.02 {
		t.Errorf("observed frequency of %q = %v, want within 0.02 of 0.3", "the", got)
	}
}
