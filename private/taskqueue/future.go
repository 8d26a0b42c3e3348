// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package taskqueue

import (
	"context"
)

// Future is the completion handle of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Submit queues fn for execution on one of the workers of q and returns a
// handle for its result. fn receives the local state of the worker running it.
//
// Submit blocks only while the backlog of q is full. If the task cannot be
// queued, because ctx is done or q is closed, the returned Future is already
// completed with that error.
func Submit[L, T any](ctx context.Context, q *Queue[L], fn func(local L) T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	err := q.enqueue(ctx, task[L]{
		run: func(local L) {
			f.complete(fn(local), nil)
		},
		fail: func(err error) {
			var zero T
			f.complete(zero, err)
		},
	})
	if err != nil {
		var zero T
		f.complete(zero, err)
	}
	return f
}

func (f *Future[T]) complete(value T, err error) {
	f.value, f.err = value, err
	close(f.done)
}

// Done returns a channel that is closed once the task has completed.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait waits for the task to complete and returns its value. The error is
// non-nil only when the queue failed to run the task or when ctx is done
// before completion. Giving up on a Future does not stop the task.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, Error.Wrap(ctx.Err())
	}
}
