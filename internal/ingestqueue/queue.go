// Package ingestqueue provides a bounded FIFO that decouples a venue
// socket's receive loop from its decoder. It is shared by every venue
// client so the drop policy and shutdown semantics live in one place.
package ingestqueue

import (
	"context"
	"sync"

	"github.com/rohitdayanand/polykalshi-bridge/internal/logger"
)

// Item pairs a raw frame with per-message metadata (receive time, venue tag)
// a consumer may need without parsing the frame.
type Item[T any] struct {
	Frame    T
	Metadata map[string]any
}

// Queue is a bounded, single-consumer FIFO. Put is non-blocking: once the
// queue is full, new items are dropped (the oldest-enqueued items are kept)
// and the drop is logged and counted. The zero value is not usable;
// construct with New.
type Queue[T any] struct {
	log      logger.LoggerInterface
	name     string
	capacity int

	mu       sync.Mutex
	items    []Item[T]
	notEmpty chan struct{}

	closed    bool
	dropCount uint64
}

// New creates a Queue with the given capacity (defaulting to 1000 if
// capacity <= 0) and name (used in log fields and metrics).
func New[T any](name string, capacity int, log logger.LoggerInterface) *Queue[T] {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Queue[T]{
		log:      log,
		name:     name,
		capacity: capacity,
		items:    make([]Item[T], 0, capacity),
		notEmpty: make(chan struct{}, 1),
	}
}

// Put enqueues frame with metadata. If the queue is at capacity, the new
// item is dropped and logged rather than displacing anything already
// queued: Put never blocks the caller's receive loop.
func (q *Queue[T]) Put(ctx context.Context, frame T, metadata map[string]any) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if len(q.items) >= q.capacity {
		q.dropCount++
		if q.log != nil {
			q.log.Warn(ctx, "ingest queue full, dropping frame", "queue", q.name, "capacity", q.capacity)
		}
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, Item[T]{Frame: frame, Metadata: metadata})
	q.mu.Unlock()

	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

// Get blocks until an item is available, the queue is closed and drained, or
// ctx is done. ok is false only when the queue is closed and empty.
func (q *Queue[T]) Get(ctx context.Context) (item Item[T], ok bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item = q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, true
		}
		if q.closed {
			q.mu.Unlock()
			return Item[T]{}, false
		}
		q.mu.Unlock()

		select {
		case <-q.notEmpty:
		case <-ctx.Done():
			return Item[T]{}, false
		}
	}
}

// Close stops accepting new items. Items already queued remain available to
// Get until drained, after which Get returns ok=false.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.notEmpty <- struct{}{}:
	default:
	}
}

// Len reports the number of items currently queued.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// DropCount reports how many items have been dropped for capacity overflow.
func (q *Queue[T]) DropCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropCount
}
