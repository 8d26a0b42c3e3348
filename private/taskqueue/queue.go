// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package taskqueue implements a bounded queue of CPU bound tasks executed
// by a fixed set of worker goroutines, each of which owns private local state.
package taskqueue

import (
	"context"
	"runtime"
	"sync"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	// Error is the default taskqueue errs class.
	Error = errs.Class("taskqueue")

	// ErrClosed is returned for tasks that were submitted to, or still queued
	// in, a closed queue.
	ErrClosed = errs.Class("queue closed")

	// ErrPanic is returned for tasks that panicked while running.
	ErrPanic = errs.Class("task panicked")

	mon = monkit.Package()
)

// backlogPerWorker is the default number of queued tasks per worker.
const backlogPerWorker = 64

// Options configures a Queue.
type Options[L any] struct {
	// Workers is the number of worker goroutines. Defaults to GOMAXPROCS.
	Workers int
	// Backlog is the number of tasks that can wait for a worker before
	// submission blocks. Defaults to 64 per worker.
	Backlog int

	// NewLocal creates the local state of a worker. It is called lazily,
	// on the worker goroutine, before the first task that worker runs.
	NewLocal func(worker int) L
	// CloseLocal releases the local state of a worker. It is called on the
	// worker goroutine when the worker exits or discards its state.
	CloseLocal func(worker int, local L)
}

// Queue runs submitted tasks on a fixed set of workers.
//
// Every worker owns exactly one local state value and hands it to the tasks
// it runs. A local state value is never visible to two workers, so tasks can
// use it without synchronization.
type Queue[L any] struct {
	opts  Options[L]
	tasks chan task[L]

	mu         sync.RWMutex
	closed     bool
	closing    chan struct{}
	submitters sync.WaitGroup
	workers    sync.WaitGroup
	closeOnce  sync.Once
}

type task[L any] struct {
	run  func(local L)
	fail func(err error)
}

// New creates a queue and starts its workers.
func New[L any](opts Options[L]) *Queue[L] {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Backlog <= 0 {
		opts.Backlog = opts.Workers * backlogPerWorker
	}

	q := &Queue[L]{
		opts:    opts,
		tasks:   make(chan task[L], opts.Backlog),
		closing: make(chan struct{}),
	}

	q.workers.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go q.work(i)
	}
	return q
}

// Workers returns the number of worker goroutines.
func (q *Queue[L]) Workers() int { return q.opts.Workers }

// enqueue hands t to a worker. It blocks while the backlog is full.
func (q *Queue[L]) enqueue(ctx context.Context, t task[L]) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrClosed.New("submit")
	}
	q.submitters.Add(1)
	q.mu.RUnlock()
	defer q.submitters.Done()

	select {
	case q.tasks <- t:
		return nil
	default:
	}

	mon.Counter("taskqueue_backlog_full").Inc(1)

	select {
	case q.tasks <- t:
		return nil
	case <-q.closing:
		return ErrClosed.New("submit")
	case <-ctx.Done():
		return Error.Wrap(ctx.Err())
	}
}

// Close stops accepting tasks, fails the tasks that have not started yet and
// waits for the running ones to finish. Local state of every worker is
// released before Close returns.
func (q *Queue[L]) Close() error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.closing)
		q.mu.Unlock()

		// after this no one sends on q.tasks anymore.
		q.submitters.Wait()
		close(q.tasks)
	})
	q.workers.Wait()
	return nil
}

func (q *Queue[L]) isClosing() bool {
	select {
	case <-q.closing:
		return true
	default:
		return false
	}
}

// work is the loop of a single worker.
func (q *Queue[L]) work(worker int) {
	defer q.workers.Done()

	var local L
	hasLocal := false
	release := func() {
		if hasLocal && q.opts.CloseLocal != nil {
			q.opts.CloseLocal(worker, local)
		}
		var zero L
		local, hasLocal = zero, false
	}
	defer release()

	for t := range q.tasks {
		if q.isClosing() {
			t.fail(ErrClosed.New("task was not started"))
			continue
		}

		if !hasLocal {
			if q.opts.NewLocal != nil {
				local = q.opts.NewLocal(worker)
			}
			hasLocal = true
		}

		if !q.run(t, local) {
			// the panic may have left the local state half updated.
			release()
		}
	}
}

// run executes t and reports whether it finished without panicking.
func (q *Queue[L]) run(t task[L], local L) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			mon.Event("taskqueue_task_panic")
			t.fail(ErrPanic.New("%v", rec))
			ok = false
		}
	}()
	t.run(local)
	return true
}
