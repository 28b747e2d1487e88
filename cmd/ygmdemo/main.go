// Command ygmdemo exercises the sampling and work-queue subsystems end
// to end, one subcommand per scenario from the concrete-scenarios list
// this module's design notes are grounded on.
package main

import (
	"fmt"
	"os"

	"github.com/grailbio/base/log"
	"github.com/spf13/pflag"

	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/stats"
)

func usage() {
	fmt.Fprintf(os.Stderr, `ygmdemo exercises the distributed sampler and work queue.

Usage:

	ygmdemo <scenario> [arguments]

The scenarios are:

	s1-construction   build alias tables from a distributed map, check balance
	s2-sampling       sample N items/rank, count delivered callbacks
	s3-corpus         sample a word-count corpus, compare observed vs true frequency
	s4-fifo           FIFO work queue recursion
	s5-priority       priority work queue recursion
	s6-traversal      BFS traversal of a distributed array via the work queue
`)
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("ygmdemo: ")

	if len(os.Args) < 2 {
		usage()
	}
	scenario, args := os.Args[1], os.Args[2:]
	switch scenario {
	case "s1-construction":
		s1Construction(args)
	case "s2-sampling":
		s2Sampling(args)
	case "s3-corpus":
		s3Corpus(args)
	case "s4-fifo":
		s4FIFO(args)
	case "s5-priority":
		s5Priority(args)
	case "s6-traversal":
		s6Traversal(args)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintln(os.Stderr, "unknown scenario:", scenario)
		usage()
	}
}

// newFlagSet builds a pflag.FlagSet in the style of the corpus's other
// pflag consumer: sorted flags off, exit-on-error, scenario-prefixed
// usage.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.SortFlags = false
	return fs
}

// printClusterStats merges every rank's comm.Stats.Snapshot into one
// cluster-wide total and prints it as a scenario's closing summary
// line, so each Communicator's async_sent/async_processed counters
// have a real consumer.
func printClusterStats(label string, cluster *comm.Cluster) {
	totals := stats.Values{}
	for r := 0; r < cluster.Size(); r++ {
		for k, v := range cluster.Comm(r).Stats.Snapshot() {
			totals[k] += v
		}
	}
	fmt.Printf("%s: %s\n", label, totals.String())
}
