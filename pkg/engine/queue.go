// ABOUTME: Unbounded FIFO queue connecting the engine handle and worker
// ABOUTME: Wraps eapache/queue with a mutex, a wake channel and close semantics
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eapache/queue"
)

// ErrQueueClosed is returned by Pop once the queue is closed and drained
var ErrQueueClosed = errors.New("queue closed")

// Queue is an unbounded, ordered, goroutine-safe FIFO. Items pushed before
// Close can still be popped after it.
type Queue[T any] struct {
	mu     sync.Mutex
	items  *queue.Queue
	closed bool

	notify chan struct{}
	done   chan struct{}
}

// NewQueue creates an empty queue
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		items:  queue.New(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push appends v; it reports false once the queue is closed
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items.Add(v)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// TryPop removes the head without waiting
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Length() == 0 {
		var zero T
		return zero, false
	}
	return q.items.Remove().(T), true
}

// PopTimeout waits up to d for an item. It returns false on timeout, or at
// once when the queue is closed and drained.
func (q *Queue[T]) PopTimeout(d time.Duration) (T, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		if v, ok := q.TryPop(); ok {
			return v, true
		}
		if q.Closed() {
			var zero T
			return zero, false
		}
		select {
		case <-q.notify:
		case <-q.done:
		case <-timer.C:
			return q.TryPop()
		}
	}
}

// Pop waits for an item until ctx ends or the queue is closed and drained
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	for {
		if v, ok := q.TryPop(); ok {
			return v, nil
		}
		var zero T
		if q.Closed() {
			return zero, ErrQueueClosed
		}
		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Close stops further pushes and wakes waiters
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// Closed reports whether Close has been called
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
