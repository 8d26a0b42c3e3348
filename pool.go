// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package ecpool

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/ecpool/private/taskqueue"
)

// Config defines configuration for a Pool.
type Config struct {
	// Queue runs the operations. Defaults to DefaultQueue().
	Queue *Queue

	// Log receives coder build and queue failure messages. Defaults to a
	// no-op logger.
	Log *zap.Logger
}

// Pool executes erasure coding operations on the workers of a Queue using
// ErasureCode instances built by a Builder.
//
// Each worker builds an instance the first time it runs an operation for a
// given Builder.CoderID and reuses it afterwards. Pool is safe for concurrent
// use; concurrent operations complete in no particular order.
type Pool struct {
	builder Builder
	queue   *Queue
	log     *zap.Logger
}

// NewPool creates a pool executing operations with instances built by builder.
func NewPool(builder Builder, config Config) *Pool {
	if config.Queue == nil {
		config.Queue = DefaultQueue()
	}
	if config.Log == nil {
		config.Log = zap.NewNop()
	}
	return &Pool{
		builder: builder,
		queue:   config.Queue,
		log:     config.Log,
	}
}

// Builder returns the builder of the pool.
func (pool *Pool) Builder() Builder { return pool.builder }

// Encode encodes data into fragments on one of the workers. The result
// contains the data fragments followed by the parity fragments.
//
// data must not be modified until the result is done.
func (pool *Pool) Encode(ctx context.Context, data []byte) *Result[[][]byte] {
	return submit(ctx, pool, "encode", func(code ErasureCode) ([][]byte, error) {
		return code.Encode(data)
	})
}

// Decode decodes the original data from fragments on one of the workers.
//
// Whether the correctness of the result is verified depends on the
// ErasureCode implementation. fragments must not be modified until the result
// is done.
func (pool *Pool) Decode(ctx context.Context, fragments [][]byte) *Result[[]byte] {
	return submit(ctx, pool, "decode", func(code ErasureCode) ([]byte, error) {
		return code.Decode(fragments)
	})
}

// Reconstruct rebuilds the fragment at index from the other fragments on one
// of the workers.
//
// fragments must not be modified until the result is done.
func (pool *Pool) Reconstruct(ctx context.Context, index int, fragments [][]byte) *Result[[]byte] {
	return submit(ctx, pool, "reconstruct", func(code ErasureCode) ([]byte, error) {
		return Reconstruct(code, index, fragments)
	})
}

// outcome is what an operation produced on the worker.
type outcome[T any] struct {
	value T
	err   error
}

func submit[T any](ctx context.Context, pool *Pool, op string, fn func(ErasureCode) (T, error)) *Result[T] {
	mon.Counter("operations", monkit.NewSeriesTag("op", op)).Inc(1)

	// the builder is immutable, so the worker can use it without copying.
	builder, log := pool.builder, pool.log

	future := taskqueue.Submit(ctx, pool.queue.queue, func(cache *coderCache) outcome[T] {
		code, err := cache.coder(builder, log)
		if err != nil {
			return outcome[T]{err: err}
		}
		value, err := fn(code)
		return outcome[T]{value: value, err: err}
	})

	return &Result[T]{
		future: future,
		op:     op,
		log:    log,
	}
}
