// File: internal/concurrency/taskqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Unbounded multi-producer, single-consumer FIFO.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// TaskQueue is an unbounded FIFO fed by any number of goroutines and drained
// by one consumer. Once closed, Push rejects new items and the remaining
// items are returned by Close for the owner to fail.
type TaskQueue[T any] struct {
	mu     sync.Mutex
	q      *queue.Queue
	closed bool
}

// NewTaskQueue creates an empty queue.
func NewTaskQueue[T any]() *TaskQueue[T] {
	return &TaskQueue[T]{q: queue.New()}
}

// Push appends v. It returns false if the queue has been closed.
func (tq *TaskQueue[T]) Push(v T) bool {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	if tq.closed {
		return false
	}
	tq.q.Add(v)
	return true
}

// Drain removes up to limit items (all items when limit <= 0) and appends them to dst.
func (tq *TaskQueue[T]) Drain(dst []T, limit int) []T {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	n := tq.q.Length()
	if limit > 0 && n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		dst = append(dst, tq.q.Remove().(T))
	}
	return dst
}

// Len returns the number of queued items.
func (tq *TaskQueue[T]) Len() int {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	return tq.q.Length()
}

// Close rejects further pushes and returns whatever was still queued.
func (tq *TaskQueue[T]) Close() []T {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	tq.closed = true
	rest := make([]T, 0, tq.q.Length())
	for tq.q.Length() > 0 {
		rest = append(rest, tq.q.Remove().(T))
	}
	return rest
}
