// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package ecpool

import (
	"math"
)

// ErasureCode encodes data into fragments and decodes it back using some
// erasure coding algorithm.
//
// An ErasureCode instance may keep internal state between calls and is not
// safe for concurrent use.
type ErasureCode interface {
	// DataFragments returns the number of data fragments used when
	// encoding/decoding data.
	DataFragments() int
	// ParityFragments returns the number of parity fragments used when
	// encoding/decoding data.
	ParityFragments() int

	// Encode encodes data into DataFragments() data fragments followed by
	// ParityFragments() parity fragments.
	Encode(data []byte) ([][]byte, error)

	// Decode decodes the original data from the given fragments.
	//
	// Whether the correctness of the result is verified depends on the
	// implementation.
	Decode(fragments [][]byte) ([]byte, error)
}

// Reconstructor is implemented by erasure codes that can rebuild a single
// fragment more efficiently than by decoding and re-encoding. The result must
// be the same as the one of DefaultReconstruct.
type Reconstructor interface {
	Reconstruct(index int, fragments [][]byte) ([]byte, error)
}

// Builder builds instances of an ErasureCode.
//
// A Builder holds configuration only: it must be cheap to copy and safe to
// use from multiple goroutines.
type Builder interface {
	// BuildCoder builds a new independent ErasureCode instance.
	BuildCoder() (ErasureCode, error)

	// CoderID returns the identifier of the kind of instances being built.
	//
	// If two instances use different parameters for encoding/decoding, their
	// identifiers must be different.
	CoderID() string
}

// Fragments returns the total number of data and parity fragments of code.
// It panics when the sum overflows, which CheckFragments rules out for
// validated configurations.
func Fragments(code ErasureCode) int {
	data, parity := code.DataFragments(), code.ParityFragments()
	if data > math.MaxInt-parity {
		panic("ecpool: fragment count overflow")
	}
	return data + parity
}

// CheckFragments validates a pair of data and parity fragment counts.
func CheckFragments(data, parity int) error {
	switch {
	case data <= 0:
		return ErrInvalidInput.New("data fragments must be positive: %d", data)
	case parity <= 0:
		return ErrInvalidInput.New("parity fragments must be positive: %d", parity)
	case data > math.MaxInt-parity:
		return ErrInvalidInput.New("too many fragments: data=%d, parity=%d", data, parity)
	}
	return nil
}

// Reconstruct rebuilds the fragment at index from the other fragments. It
// uses the native implementation of code when there is one and
// DefaultReconstruct otherwise.
func Reconstruct(code ErasureCode, index int, fragments [][]byte) ([]byte, error) {
	if r, ok := code.(Reconstructor); ok {
		return r.Reconstruct(index, fragments)
	}
	return DefaultReconstruct(code, index, fragments)
}

// DefaultReconstruct rebuilds the fragment at index by decoding the original
// data and encoding it again.
func DefaultReconstruct(code ErasureCode, index int, fragments [][]byte) ([]byte, error) {
	if total := Fragments(code); index < 0 || index >= total {
		return nil, ErrOther.New("too large index: index=%d, fragments=%d", index, total)
	}

	data, err := code.Decode(fragments)
	if err != nil {
		return nil, err
	}
	encoded, err := code.Encode(data)
	if err != nil {
		return nil, err
	}
	if len(encoded) <= index {
		return nil, ErrOther.New("encode returned %d fragments, wanted %d", len(encoded), Fragments(code))
	}
	return encoded[index], nil
}
