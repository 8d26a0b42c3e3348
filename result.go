// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package ecpool

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/ecpool/private/taskqueue"
)

// Result is the pending result of an operation submitted to a Pool.
type Result[T any] struct {
	future *taskqueue.Future[outcome[T]]
	op     string
	log    *zap.Logger
}

// Done returns a channel that is closed when the operation has completed,
// which allows racing it against timers or other events.
func (result *Result[T]) Done() <-chan struct{} { return result.future.Done() }

// Wait waits for the operation to complete and returns its result.
//
// Errors of the ErasureCode are returned as they are. When the queue fails to
// run the operation, or ctx is done first, the error is of class ErrOther. The
// operation is not stopped when ctx is done.
func (result *Result[T]) Wait(ctx context.Context) (_ T, err error) {
	defer mon.Task()(&ctx)(&err)

	out, err := result.future.Wait(ctx)
	if err != nil {
		mon.Meter("queue_failure", monkit.NewSeriesTag("op", result.op)).Mark(1)
		if taskqueue.ErrClosed.Has(err) || taskqueue.ErrPanic.Has(err) {
			result.log.Warn("operation failed in task queue", zap.String("op", result.op), zap.Error(err))
		}
		var zero T
		return zero, ErrOther.Wrap(err)
	}
	return out.value, out.err
}
