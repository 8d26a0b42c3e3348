// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package reedsolomon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/ecpool"
	"storj.io/picobuf"
)

func TestShareSize(t *testing.T) {
	for _, tt := range []struct {
		size  uint64
		k     int
		share uint64
	}{
		{1, 1, 1},
		{1, 3, 1},
		{3, 3, 1},
		{4, 3, 2},
		{math.MaxUint64, 1, math.MaxUint64},
		{math.MaxUint64, 3, math.MaxUint64 / 3},
		{math.MaxUint64, 2, math.MaxUint64/2 + 1},
	} {
		require.Equal(t, tt.share, shareSize(tt.size, tt.k), "%d/%d", tt.size, tt.k)
	}
}

// TestCoder_HugeSize checks that a header claiming a payload size close to
// the uint64 limit is rejected instead of passing the share size check.
func TestCoder_HugeSize(t *testing.T) {
	for _, checksum := range []Checksum{ChecksumNone, ChecksumCRC32, ChecksumBlake3} {
		t.Run(checksum.String(), func(t *testing.T) {
			builder, err := NewBuilder(3, 2, WithChecksum(checksum))
			require.NoError(t, err)
			coder, err := builder.Build()
			require.NoError(t, err)
			defer func() { require.NoError(t, coder.Close()) }()

			fragments := make([][]byte, 3)
			for i := range fragments {
				fragments[i], err = picobuf.Marshal(&fragment{
					Index:    uint32(i),
					Size:     math.MaxUint64,
					Checksum: uint32(checksum),
					Sum:      checksum.sum(nil),
				})
				require.NoError(t, err)
			}

			_, err = coder.Decode(fragments)
			require.Error(t, err)
			require.Equal(t, ecpool.KindCorruptedFragments, ecpool.KindOf(err))

			_, err = coder.Reconstruct(4, fragments)
			require.Error(t, err)
			require.Equal(t, ecpool.KindCorruptedFragments, ecpool.KindOf(err))
		})
	}
}

func TestCoder_SizeMajority(t *testing.T) {
	builder, err := NewBuilder(2, 2)
	require.NoError(t, err)
	coder, err := builder.Build()
	require.NoError(t, err)
	defer func() { require.NoError(t, coder.Close()) }()

	encode := func(index int, size uint64, data []byte) []byte {
		raw, err := picobuf.Marshal(&fragment{Index: uint32(index), Size: size, Data: data})
		require.NoError(t, err)
		return raw
	}

	// one fragment per size: the first one parsed wins.
	shares, size, err := coder.unwrap([][]byte{
		encode(0, 4, []byte{1, 2}),
		encode(1, 2, []byte{3}),
	})
	require.Error(t, err)
	require.Equal(t, ecpool.KindCorruptedFragments, ecpool.KindOf(err))
	require.Nil(t, shares)
	require.Zero(t, size)

	// the size most fragments agree on wins.
	shares, size, err = coder.unwrap([][]byte{
		encode(0, 2, []byte{1}),
		encode(1, 4, []byte{1, 2}),
		encode(2, 4, []byte{3, 4}),
	})
	require.NoError(t, err)
	require.Equal(t, 4, size)
	require.Len(t, shares, 2)
	require.Equal(t, 1, shares[0].Number)
	require.Equal(t, 2, shares[1].Number)
}
