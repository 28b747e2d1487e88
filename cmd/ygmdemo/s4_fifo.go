package main

import (
	"fmt"

	"github.com/grailbio/base/log"

	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/workqueue"
)

// s4FIFO reproduces scenario S4: insert 0; the work lambda inserts
// item+1..item+8 whenever item%8==0, stopping at item==64; the drain
// must process items in order 0,1,...,64 exactly once.
func s4FIFO(args []string) {
	fs := newFlagSet("s4-fifo")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	c := comm.NewCluster(1).Comm(0)
	var order []int
	var q *workqueue.Queue[int]
	q = workqueue.New[int](c, workqueue.NewFIFO[int](), func(_ *workqueue.Queue[int], item int) {
		order = append(order, item)
		if item%8 == 0 && item < 64 {
			for d := 1; d <= 8 && item+d <= 64; d++ {
				q.LocalInsert(item + d)
			}
		}
	})
	q.LocalInsert(0)
	q.LocalProcessAll()

	for i, item := range order {
		if item != i {
			log.Fatalf("s4-fifo: order[%d] = %d, want %d", i, item, i)
		}
	}
	if err := q.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("s4-fifo: processed %d items in order 0..%d OK\n", len(order), len(order)-1)
	printClusterStats("s4-fifo", c.Cluster())
}
