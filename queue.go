// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package ecpool

import (
	"io"
	"sync"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/ecpool/private/taskqueue"
	"storj.io/eventkit"
)

// QueueConfig defines configuration for a Queue.
type QueueConfig struct {
	// Workers is the number of worker goroutines. Defaults to GOMAXPROCS.
	Workers int

	// Backlog is the number of operations that can wait for a worker before
	// submitting blocks. Defaults to 64 operations per worker.
	Backlog int

	// Log receives worker lifecycle messages. Defaults to a no-op logger.
	Log *zap.Logger
}

// Queue is a set of workers running erasure coding operations.
//
// Every worker keeps its own cache of ErasureCode instances indexed by
// Builder.CoderID. Caches are never shared between workers, so an instance
// is only ever used by the worker that built it. Multiple pools can share
// one queue.
type Queue struct {
	queue *taskqueue.Queue[*coderCache]
}

var defaultQueue = sync.OnceValue(func() *Queue {
	return NewQueue(QueueConfig{})
})

// DefaultQueue returns the process wide queue used by pools that were not
// configured with one. It is started on first use and never closed.
func DefaultQueue() *Queue { return defaultQueue() }

// NewQueue creates a queue and starts its workers.
func NewQueue(config QueueConfig) *Queue {
	log := config.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Queue{
		queue: taskqueue.New(taskqueue.Options[*coderCache]{
			Workers: config.Workers,
			Backlog: config.Backlog,
			NewLocal: func(worker int) *coderCache {
				return &coderCache{
					worker: worker,
					coders: make(map[string]ErasureCode),
				}
			},
			CloseLocal: func(worker int, cache *coderCache) {
				if err := cache.close(); err != nil {
					log.Warn("failed to close coders", zap.Int("worker", worker), zap.Error(err))
				}
			},
		}),
	}
}

// Workers returns the number of workers of the queue.
func (queue *Queue) Workers() int { return queue.queue.Workers() }

// Close stops the workers. Operations that have not started yet fail with
// ErrOther, running operations complete. Cached coders implementing
// io.Closer are closed.
func (queue *Queue) Close() error {
	return Error.Wrap(queue.queue.Close())
}

// coderCache is the state owned by a single worker.
type coderCache struct {
	worker int
	coders map[string]ErasureCode
}

// coder returns the cached instance for builder, building it on first use.
func (cache *coderCache) coder(builder Builder, log *zap.Logger) (ErasureCode, error) {
	id := builder.CoderID()
	if code, ok := cache.coders[id]; ok {
		mon.Meter("coder_cache_hit").Mark(1)
		return code, nil
	}
	mon.Meter("coder_cache_miss").Mark(1)

	start := time.Now()
	code, err := builder.BuildCoder()
	if err != nil {
		log.Debug("failed to build coder", zap.String("coder_id", id), zap.Int("worker", cache.worker), zap.Error(err))
		return nil, err
	}
	duration := time.Since(start)

	cache.coders[id] = code

	mon.Counter("coder_builds").Inc(1)
	mon.IntVal("coder_cache_size").Observe(int64(len(cache.coders)))
	evs.Event("coder-built",
		eventkit.String("coder-id", id),
		eventkit.Int64("worker", int64(cache.worker)),
		eventkit.Duration("build-duration", duration),
	)
	log.Debug("built coder", zap.String("coder_id", id), zap.Int("worker", cache.worker), zap.Duration("duration", duration))

	return code, nil
}

func (cache *coderCache) close() error {
	var group errs.Group
	for id, code := range cache.coders {
		if closer, ok := code.(io.Closer); ok {
			group.Add(closer.Close())
		}
		delete(cache.coders, id)
	}
	return group.Err()
}
