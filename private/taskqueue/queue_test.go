// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package taskqueue

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/common/testcontext"
)

type counterLocal struct {
	worker int
	runs   int
}

func newCounterQueue(workers, backlog int, closed *atomic.Int64) *Queue[*counterLocal] {
	return New(Options[*counterLocal]{
		Workers: workers,
		Backlog: backlog,
		NewLocal: func(worker int) *counterLocal {
			return &counterLocal{worker: worker}
		},
		CloseLocal: func(worker int, local *counterLocal) {
			if closed != nil {
				closed.Add(1)
			}
		},
	})
}

func TestQueue_Basic(t *testing.T) {
	ctx := testcontext.New(t)

	q := newCounterQueue(2, 4, nil)
	defer func() { require.NoError(t, q.Close()) }()

	require.Equal(t, 2, q.Workers())

	f := Submit(ctx, q, func(local *counterLocal) int { return 42 })
	v, err := f.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	select {
	case <-f.Done():
	default:
		t.Fatal("future should be done")
	}
}

// TestQueue_LocalPerWorker checks that local state is never shared between
// workers and is created once per worker.
func TestQueue_LocalPerWorker(t *testing.T) {
	ctx := testcontext.New(t)

	const (
		workers = 4
		tasks   = 1000
	)

	var closed atomic.Int64
	q := newCounterQueue(workers, 16, &closed)

	var mu sync.Mutex
	seen := map[*counterLocal]int{}

	futures := make([]*Future[int], 0, tasks)
	for i := 0; i < tasks; i++ {
		futures = append(futures, Submit(ctx, q, func(local *counterLocal) int {
			// no synchronization on local: it belongs to this worker only.
			local.runs++

			mu.Lock()
			defer mu.Unlock()
			if worker, ok := seen[local]; ok && worker != local.worker {
				panic("local state moved between workers")
			}
			seen[local] = local.worker
			return local.worker
		}))
	}

	for _, f := range futures {
		worker, err := f.Wait(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, worker, 0)
		require.Less(t, worker, workers)
	}

	require.NoError(t, q.Close())

	total := 0
	for local := range seen {
		total += local.runs
	}
	require.Equal(t, tasks, total)
	require.LessOrEqual(t, len(seen), workers)
	require.Equal(t, int64(len(seen)), closed.Load())
}

func TestQueue_Panic(t *testing.T) {
	ctx := testcontext.New(t)

	var closed atomic.Int64
	q := newCounterQueue(1, 1, &closed)
	defer func() { require.NoError(t, q.Close()) }()

	first, err := Submit(ctx, q, func(local *counterLocal) *counterLocal { return local }).Wait(ctx)
	require.NoError(t, err)

	_, err = Submit(ctx, q, func(local *counterLocal) int { panic("boom") }).Wait(ctx)
	require.Error(t, err)
	require.True(t, ErrPanic.Has(err))

	// the worker survives, but starts over with fresh local state.
	second, err := Submit(ctx, q, func(local *counterLocal) *counterLocal { return local }).Wait(ctx)
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.Equal(t, int64(1), closed.Load())
}

func TestQueue_Closed(t *testing.T) {
	ctx := testcontext.New(t)

	q := newCounterQueue(1, 8, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	running := Submit(ctx, q, func(local *counterLocal) int {
		close(started)
		<-release
		return 1
	})
	<-started

	queued := Submit(ctx, q, func(local *counterLocal) int { return 2 })

	closeDone := make(chan error, 1)
	go func() { closeDone <- q.Close() }()

	// wait for close to start rejecting.
	for !q.isClosing() {
		runtime.Gosched()
	}

	rejected := Submit(ctx, q, func(local *counterLocal) int { return 3 })
	_, err := rejected.Wait(ctx)
	require.True(t, ErrClosed.Has(err))

	close(release)
	require.NoError(t, <-closeDone)

	v, err := running.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	_, err = queued.Wait(ctx)
	require.True(t, ErrClosed.Has(err))
}

func TestQueue_SubmitCanceled(t *testing.T) {
	ctx := testcontext.New(t)

	q := newCounterQueue(1, 1, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	blocker := Submit(ctx, q, func(local *counterLocal) int {
		close(started)
		<-release
		return 0
	})
	<-started
	// fill the backlog.
	filler := Submit(ctx, q, func(local *counterLocal) int { return 0 })

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	_, err := Submit(canceled, q, func(local *counterLocal) int { return 0 }).Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	_, err = blocker.Wait(ctx)
	require.NoError(t, err)
	_, err = filler.Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, q.Close())
}

func TestFuture_WaitCanceled(t *testing.T) {
	ctx := testcontext.New(t)

	q := newCounterQueue(1, 1, nil)

	release := make(chan struct{})
	f := Submit(ctx, q, func(local *counterLocal) int {
		<-release
		return 7
	})

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := f.Wait(canceled)
	require.ErrorIs(t, err, context.Canceled)

	// the task still runs to completion.
	close(release)
	v, err := f.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.NoError(t, q.Close())
}

func BenchmarkQueue_Parallel(b *testing.B) {
	ctx := context.Background()

	q := newCounterQueue(0, 0, nil)
	defer func() { _ = q.Close() }()

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = Submit(ctx, q, func(local *counterLocal) int { return local.worker }).Wait(ctx)
		}
	})
}
