package audiocore

import (
	"sync/atomic"
	"time"
)

// CaptureQueue is a fixed-capacity, drop-oldest queue of audio blocks
// sitting between the driver callback and the processing goroutine.
// Push never blocks; overflow under a slow consumer is expected
// steady-state behavior, not a fault.
type CaptureQueue struct {
	blocks  chan *Block
	latest  atomic.Pointer[Block]
	dropped atomic.Int64
}

// NewCaptureQueue creates a queue holding at most capacity blocks.
func NewCaptureQueue(capacity int) *CaptureQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &CaptureQueue{
		blocks: make(chan *Block, capacity),
	}
}

// Push inserts a block, evicting exactly one oldest entry first when the
// queue is full. Safe to call from the driver callback: it never blocks
// and allocates nothing.
func (q *CaptureQueue) Push(b *Block) {
	q.latest.Store(b)

	select {
	case q.blocks <- b:
		return
	default:
	}

	// Full: discard the single oldest entry, then insert.
	select {
	case <-q.blocks:
		q.dropped.Add(1)
	default:
	}
	select {
	case q.blocks <- b:
	default:
		// Lost the race against a concurrent producer; count the block
		// itself as dropped rather than wait.
		q.dropped.Add(1)
	}
}

// Pop removes and returns the oldest block, waiting up to timeout for one
// to arrive. The second return value is false on timeout, which callers
// treat as "retry", not an error.
func (q *CaptureQueue) Pop(timeout time.Duration) (*Block, bool) {
	select {
	case b := <-q.blocks:
		return b, true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b := <-q.blocks:
		return b, true
	case <-timer.C:
		return nil, false
	}
}

// Latest returns the most recently pushed block without removing anything,
// or nil if nothing has been pushed yet.
func (q *CaptureQueue) Latest() *Block {
	return q.latest.Load()
}

// Len returns the number of queued blocks.
func (q *CaptureQueue) Len() int { return len(q.blocks) }

// Cap returns the fixed capacity.
func (q *CaptureQueue) Cap() int { return cap(q.blocks) }

// Dropped returns the number of blocks evicted or lost due to overflow.
func (q *CaptureQueue) Dropped() int64 { return q.dropped.Load() }

// Drain discards all queued blocks and returns how many were discarded.
func (q *CaptureQueue) Drain() int {
	n := 0
	for {
		select {
		case <-q.blocks:
			n++
		default:
			q.latest.Store(nil)
			return n
		}
	}
}
