// Package queue defines the contract for dispatching transcript chunks to
// workers.
//
// The pipeline enqueues every chunk up front and closes the queue; workers
// drain it through a channel. An in-memory bounded queue is all one
// process needs.
package queue

import (
	"context"
	"sync"

	"github.com/seqpond/augpipe/internal/domain/model"
	"github.com/seqpond/augpipe/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Chunk is one unit of work: a fixed-size, order-preserving slice of the
// transcript iteration, tagged with its position in it.
type Chunk struct {
	Index   int
	Bundles []model.EvidenceBundle
}

// Partition splits bundles into chunks of at most size, preserving order.
// Concatenating the chunks reproduces the input exactly once each.
func Partition(bundles []model.EvidenceBundle, size int) []Chunk {
	if size < 1 {
		size = 1
	}
	var chunks []Chunk
	for start := 0; start < len(bundles); start += size {
		end := start + size
		if end > len(bundles) {
			end = len(bundles)
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Bundles: bundles[start:end]})
	}
	return chunks
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a chunk to the queue.
	// Returns false if the queue is full or closed and the chunk was not enqueued.
	Enqueue(ctx context.Context, c Chunk) bool

	// Dequeue returns a channel that will receive chunks as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Chunk

	// Len returns the current number of queued chunks.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue. After closing, no new chunks
	// can be enqueued.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	chunks   chan Chunk
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	q.chunks = make(chan Chunk, q.capacity)

	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a chunk to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Chunk) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.chunks <- c:
		metrics.UpdateQueueSize(len(q.chunks))
		return true
	case <-ctx.Done():
		return false
	default:
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive chunks as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Chunk {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		for c := range q.chunks {
			select {
			case out <- c:
				metrics.UpdateQueueSize(len(q.chunks))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued chunks.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.chunks)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	close(q.chunks)
	q.closed = true

	return nil
}
