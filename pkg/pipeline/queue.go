// Package pipeline connects the tailer and parser running in the background
// to the store, registry and projection owned by the viewer.
package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// Queue is a bounded hand-off between the ingester and the consumer. Push
// never blocks: when the queue is full the oldest queued entry is dropped.
type Queue struct {
	mu      sync.Mutex // serializes Push's evict-then-send against TryPop
	ch      chan ufwlog.Entry
	dropped atomic.Uint64
}

// NewQueue creates a queue holding up to capacity entries.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan ufwlog.Entry, capacity)}
}

// Push enqueues e, discarding the oldest entry when the queue is full. An
// entry is only dropped when the queue really is full at that moment.
func (q *Queue) Push(e ufwlog.Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case q.ch <- e:
		return
	default:
	}
	<-q.ch
	q.dropped.Add(1)
	q.ch <- e
}

// TryPop returns the oldest queued entry without blocking.
func (q *Queue) TryPop() (ufwlog.Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case e := <-q.ch:
		return e, true
	default:
		return ufwlog.Entry{}, false
	}
}

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Dropped returns how many entries were discarded because the queue was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
