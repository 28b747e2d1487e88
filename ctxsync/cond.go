// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ctxsync

import (
	"context"
	"sync"
)

// Cond is a sync.Cond-like condition variable whose Wait also
// unblocks on context cancellation. The comm package's Barrier
// rendezvous, NewHandle id allocation and all-gather collectives park
// goroutines on a Cond; they wait with context.Background(), so those
// waits are never canceled.
type Cond struct {
	l     sync.Locker
	waitc chan struct{}
}

// NewCond returns a Cond guarded by l. l is not held between calls;
// callers acquire and release it around Wait themselves.
func NewCond(l sync.Locker) *Cond {
	return &Cond{l: l}
}

// Broadcast wakes every goroutine currently in Wait. The caller must
// hold l.
func (c *Cond) Broadcast() {
	if c.waitc != nil {
		close(c.waitc)
		c.waitc = nil
	}
}

// Wait releases l, blocks until the next Broadcast or until ctx is
// done, then reacquires l before returning. It reports ctx.Err() if
// ctx ends the wait. The caller must hold l.
func (c *Cond) Wait(ctx context.Context) error {
	if c.waitc == nil {
		c.waitc = make(chan struct{})
	}
	waitc := c.waitc
	c.l.Unlock()
	var err error
	select {
	case <-waitc:
	case <-ctx.Done():
		err = ctx.Err()
	}
	c.l.Lock()
	return err
}
