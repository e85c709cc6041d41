// Package queue defines the contract for enqueuing and consuming skill
// submissions.
package queue

import (
	"context"
	"sync"

	"github.com/okian/skillcat/internal/domain/model"
	"github.com/okian/skillcat/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 10000
	defaultBufferSize    = 10000
)

// Submission is the payload type flowing through the queue.
type Submission = model.Submission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a submission to the queue.
	// Returns ErrFull, ErrClosed or the context error when it was not enqueued.
	Enqueue(ctx context.Context, s Submission) error

	// Dequeue returns a channel that will receive submissions as they become
	// available. The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Submission

	// Len returns the current number of queued submissions.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new submissions can be enqueued and the dequeue
	// channel will be closed once drained.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items      chan Submission
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}
	if q.bufferSize < q.capacity {
		q.bufferSize = q.capacity
	}

	q.items = make(chan Submission, q.bufferSize)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a submission to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Submission) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return err
	}
	if len(q.items) >= q.capacity {
		metrics.RecordQueueEnqueueError("capacity_exceeded")
		return ErrFull
	}

	select {
	case q.items <- s:
		metrics.UpdateQueueSize(len(q.items))
		return nil
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive submissions as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Submission {
	out := make(chan Submission)
	go func() {
		defer close(out)
		for s := range q.items {
			select {
			case out <- s:
				metrics.UpdateQueueSize(len(q.items))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued submissions.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
