// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package replica implements an ecpool.ErasureCode that simply replicates the
// input data.
//
// It is provided for examples and testing only and is not intended for
// production use.
package replica

import (
	"fmt"

	"storj.io/ecpool"
)

// Coder is an ecpool.ErasureCode that replicates the input data. It is its own
// ecpool.Builder.
//
// The first data fragment and every parity fragment hold a copy of the data,
// the remaining data fragments are empty. Decoded data is not verified.
type Coder struct {
	dataFragments   int
	parityFragments int
}

var (
	_ ecpool.ErasureCode = Coder{}
	_ ecpool.Builder     = Coder{}
)

// New returns a Coder using the given number of data and parity fragments.
func New(dataFragments, parityFragments int) (Coder, error) {
	if err := ecpool.CheckFragments(dataFragments, parityFragments); err != nil {
		return Coder{}, err
	}
	return Coder{
		dataFragments:   dataFragments,
		parityFragments: parityFragments,
	}, nil
}

// DataFragments implements ecpool.ErasureCode.
func (coder Coder) DataFragments() int { return coder.dataFragments }

// ParityFragments implements ecpool.ErasureCode.
func (coder Coder) ParityFragments() int { return coder.parityFragments }

// Encode implements ecpool.ErasureCode.
func (coder Coder) Encode(data []byte) ([][]byte, error) {
	fragments := make([][]byte, 0, ecpool.Fragments(coder))
	fragments = append(fragments, append([]byte{}, data...))
	for i := 1; i < coder.dataFragments; i++ {
		fragments = append(fragments, []byte{})
	}
	for i := 0; i < coder.parityFragments; i++ {
		fragments = append(fragments, append([]byte{}, data...))
	}
	return fragments, nil
}

// Decode implements ecpool.ErasureCode. It returns the first non-empty fragment.
func (coder Coder) Decode(fragments [][]byte) ([]byte, error) {
	if len(fragments) < coder.dataFragments {
		return nil, ecpool.ErrInvalidInput.New("fragments=%d, data_fragments=%d", len(fragments), coder.dataFragments)
	}
	for _, fragment := range fragments {
		if len(fragment) > 0 {
			return append([]byte{}, fragment...), nil
		}
	}
	return nil, ecpool.ErrCorruptedFragments.New("no replica fragment is found")
}

// BuildCoder implements ecpool.Builder.
func (coder Coder) BuildCoder() (ecpool.ErasureCode, error) {
	return coder, nil
}

// CoderID implements ecpool.Builder.
func (coder Coder) CoderID() string {
	return fmt.Sprintf("replica:%d:%d", coder.dataFragments, coder.parityFragments)
}
