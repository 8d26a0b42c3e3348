// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package ecpool runs erasure coding operations on a fixed set of worker
// goroutines.
//
// A Pool pairs a Builder with a Queue. Every worker of the queue builds its
// own ErasureCode instance per Builder.CoderID on first use and keeps it, so
// instances that are expensive to create or not safe for concurrent use are
// never shared. Operations return a Result that can be waited on.
//
// Failures are classified into ErrCorruptedFragments, ErrInvalidInput and
// ErrOther, see KindOf.
package ecpool

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/eventkit"
)

var (
	mon = monkit.Package()
	evs = eventkit.Package()
)

// Error is default error class for ecpool.
var Error = errs.Class("ecpool")
