package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/grailbio/base/log"

	"github.com/ygm-project/ygm-go/adaptors"
	"github.com/ygm-project/ygm-go/alias"
	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/weight"
)

// defaultCorpus stands in for the "lorem ipsum" word-count input the
// scenario names when no --corpus file is given: it is long enough
// that "ipsum" and "sit" both land at mid-probability.
const defaultCorpus = `lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod
tempor incididunt ut labore et dolore magna aliqua ut enim ad minim veniam
quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo
consequat duis aute irure dolor in reprehenderit ipsum voluptate velit
esse cillum dolore eu fugiat nulla pariatur ipsum sit excepteur sint
occaecat cupidatat non proident sunt in culpa qui officia deserunt
mollit anim id est laborum ipsum sit ipsum sit`

// s3Corpus reproduces scenario S3: sample a word-count corpus and
// compare the observed relative frequency of two mid-probability
// words against their true frequency.
func s3Corpus(args []string) {
	fs := newFlagSet("s3-corpus")
	corpusPath := fs.String("corpus", "", "path to a whitespace-tokenized corpus file; defaults to a builtin sample")
	ranks := fs.Int("ranks", 4, "number of simulated ranks")
	samplesPerRank := fs.Int("samples-per-rank", 1000000, "samples issued per rank")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	counts := map[string]int{}
	var scan func(func(word string))
	if *corpusPath == "" {
		scan = func(yield func(string)) {
			for _, w := range strings.Fields(defaultCorpus) {
				yield(w)
			}
		}
	} else {
		f, err := os.Open(*corpusPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		sc.Split(bufio.ScanWords)
		scan = func(yield func(string)) {
			for sc.Scan() {
				yield(sc.Text())
			}
		}
	}
	scan(func(w string) { counts[w]++ })

	total := 0
	words := make([]string, 0, len(counts))
	for w, c := range counts {
		words = append(words, w)
		total += c
	}
	if len(words) == 0 {
		log.Fatal("s3-corpus: empty corpus")
	}

	items := make([][]weight.Item[string], *ranks)
	for i, w := range words {
		r := i % *ranks
		items[r] = append(items[r], weight.Item[string]{ID: w, Weight: float64(counts[w])})
	}

	cluster := comm.NewCluster(*ranks)
	tables := make([]*alias.Table[string], *ranks)
	err := cluster.Each(func(c *comm.Communicator) error {
		tbl, err := alias.New(c, adaptors.FromSlice(items[c.Rank()]), nil)
		tables[c.Rank()] = tbl
		return err
	})
	if err != nil {
		log.Fatal(err)
	}

	var mu sync.Mutex
	observed := map[string]int64{}
	err = cluster.Each(func(c *comm.Communicator) error {
		tbl := tables[c.Rank()]
		for i := 0; i < *samplesPerRank; i++ {
			tbl.AsyncSample(func(word string) {
				mu.Lock()
				observed[word]++
				mu.Unlock()
			})
		}
		c.Barrier()
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	totalSamples := float64(*samplesPerRank * *ranks)
	for _, w := range []string{"ipsum", "sit"} {
		trueFreq := float64(counts[w]) / float64(total)
		observedFreq := float64(observed[w]) / totalSamples
		fmt.Printf("s3-corpus: word=%q true=%.6f observed=%.6f diff=%.6f\n",
			w, trueFreq, observedFreq, observedFreq-trueFreq)
	}
	printClusterStats("s3-corpus", cluster)
}
