// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package ecpool

import (
	"github.com/zeebo/errs"
)

// Every failure of an erasure coding operation belongs to exactly one of the
// following classes.
var (
	// ErrCorruptedFragments is the class of errors returned when the
	// fragments have the right shape but fail integrity verification or
	// cannot be reconciled.
	ErrCorruptedFragments = errs.Class("corrupted fragments")

	// ErrInvalidInput is the class of errors returned when the caller
	// supplied insufficient or malformed input. Those errors are fixable by
	// the caller.
	ErrInvalidInput = errs.Class("invalid input")

	// ErrOther is the class of every other failure, including engine
	// failures and failures of the task queue.
	ErrOther = errs.Class("other")
)

// Kind is the category of an erasure coding failure.
type Kind int

const (
	// KindNone is the kind of a nil error.
	KindNone Kind = iota
	// KindCorruptedFragments is the kind of ErrCorruptedFragments errors.
	KindCorruptedFragments
	// KindInvalidInput is the kind of ErrInvalidInput errors.
	KindInvalidInput
	// KindOther is the kind of any other error.
	KindOther
)

// String implements fmt.Stringer.
func (kind Kind) String() string {
	switch kind {
	case KindNone:
		return "none"
	case KindCorruptedFragments:
		return "corrupted fragments"
	case KindInvalidInput:
		return "invalid input"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err. Errors that were not classified by any of
// the ecpool classes are of KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case ErrCorruptedFragments.Has(err):
		return KindCorruptedFragments
	case ErrInvalidInput.Has(err):
		return KindInvalidInput
	default:
		return KindOther
	}
}
