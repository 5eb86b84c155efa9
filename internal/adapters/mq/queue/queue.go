// Package queue buffers normalized plays between the feed poller and a
// game's commentary loop.
//
// Each live game owns one queue; the poller enqueues without blocking and
// the game runner drains through a channel, so a slow game never stalls the
// polling cycle.
package queue

import (
	"context"
	"sync"

	"github.com/jasper9/nbastats.fun/internal/domain/model"
	"github.com/jasper9/nbastats.fun/pkg/metrics"
)

const defaultCapacity = 2048

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a play to the queue.
	// Returns false if the queue is full or closed and the play was dropped.
	Enqueue(ctx context.Context, p model.Play) bool

	// Dequeue returns a channel that receives plays as they become
	// available. The channel drains then closes after Close.
	Dequeue(ctx context.Context) <-chan model.Play

	// Len returns the current number of buffered plays.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new plays can be
	// enqueued.
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	gameID   string
	plays    chan model.Play
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue for one game's play stream.
func NewInMemoryQueue(gameID string, opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		gameID:   gameID,
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.plays = make(chan model.Play, q.capacity)

	metrics.UpdateQueueSize(gameID, 0)
	return q
}

// Enqueue adds a play to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, p model.Play) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.plays <- p:
		metrics.UpdateQueueSize(q.gameID, len(q.plays))
		return true
	case <-ctx.Done():
		return false
	default:
		metrics.RecordPlayDropped("queue_full")
		return false
	}
}

// Dequeue returns a channel that receives plays as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Play {
	out := make(chan model.Play)
	go func() {
		defer close(out)
		for p := range q.plays {
			select {
			case out <- p:
				metrics.UpdateQueueSize(q.gameID, len(q.plays))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of buffered plays.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.plays)
}

// Close shuts down the queue and drops its size gauge.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.plays)
	q.closed = true
	metrics.ReleaseQueue(q.gameID)
	return nil
}
