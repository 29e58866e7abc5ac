package aclgad

import (
	"sync"
	"sync/atomic"
)

// RunBarrier lets the end-of-run code wait until every worker has finished
// its last event. One barrier per run, shared by pointer.
type RunBarrier struct {
	total     int32
	completed atomic.Int32
	mu        sync.Mutex
	cond      *sync.Cond
}

func NewRunBarrier(workers int) *RunBarrier {
	b := &RunBarrier{total: int32(workers)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Done marks one worker as finished. Extra calls are ignored.
func (b *RunBarrier) Done() {
	for {
		n := b.completed.Load()
		if n >= b.total {
			return
		}
		if b.completed.CompareAndSwap(n, n+1) {
			if n+1 == b.total {
				b.mu.Lock()
				b.cond.Broadcast()
				b.mu.Unlock()
			}
			return
		}
	}
}

func (b *RunBarrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.completed.Load() < b.total {
		b.cond.Wait()
	}
}

func (b *RunBarrier) Completed() int {
	return int(b.completed.Load())
}

func (b *RunBarrier) Total() int {
	return int(b.total)
}
