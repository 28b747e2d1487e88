package main

import (
	"fmt"

	"github.com/grailbio/base/log"

	"github.com/ygm-project/ygm-go/comm"
	"github.com/ygm-project/ygm-go/workqueue"
)

// s5Priority reproduces scenario S5: insert 0 into a priority queue
// ordered smallest-first (NewPriorityGreater, the std::greater<Item>
// convention); the lambda re-inserts item+1 and item+cutoff+1 until
// cutoff is reached. Items must emerge in strictly increasing order.
func s5Priority(args []string) {
	fs := newFlagSet("s5-priority")
	cutoff := fs.Int("cutoff", 64, "stop re-inserting once an item reaches this value")
	if err := fs.Parse(args); err != nil {
		log.Fatal(err)
	}

	c := comm.NewCluster(1).Comm(0)
	var order []int
	var q *workqueue.Queue[int]
	q = workqueue.New[int](c, workqueue.NewPriorityGreater[int](func(a, b int) bool { return a < b }),
		func(_ *workqueue.Queue[int], item int) {
			order = append(order, item)
			if item < *cutoff {
				q.LocalInsert(item + 1)
				q.LocalInsert(item + *cutoff + 1)
			}
		})
	q.LocalInsert(0)
	q.LocalProcessAll()

	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			log.Fatalf("s5-priority: order not strictly increasing at index %d: %d <= %d", i, order[i], order[i-1])
		}
	}
	if err := q.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("s5-priority: processed %d items in strictly increasing order OK\n", len(order))
	printClusterStats("s5-priority", c.Cluster())
}
