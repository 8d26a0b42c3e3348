// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package reedsolomon_test

import (
	"bytes"
	"testing"

	"storj.io/ecpool"
	"storj.io/ecpool/reedsolomon"
)

// hugeSizeFragment is the header of an empty share claiming a payload of
// math.MaxUint64 bytes, followed by the given checksum fields.
func hugeSizeFragment(index byte, checksum ...byte) []byte {
	raw := []byte{0x08, index, 0x10, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	return append(raw, checksum...)
}

// FuzzCoder_Decode checks that arbitrary fragments never crash the coders
// and that every failure is classified.
func FuzzCoder_Decode(f *testing.F) {
	var coders []*reedsolomon.Coder
	for _, opts := range [][]reedsolomon.Option{
		{reedsolomon.WithChecksum(reedsolomon.ChecksumCRC32), reedsolomon.WithCompression(reedsolomon.CompressionZstd)},
		{reedsolomon.WithChecksum(reedsolomon.ChecksumNone), reedsolomon.WithCompression(reedsolomon.CompressionLZ4)},
		{reedsolomon.WithChecksum(reedsolomon.ChecksumNone)},
	} {
		builder, err := reedsolomon.NewBuilder(3, 2, opts...)
		if err != nil {
			f.Fatal(err)
		}
		coder, err := builder.Build()
		if err != nil {
			f.Fatal(err)
		}
		f.Cleanup(func() { _ = coder.Close() })
		coders = append(coders, coder)

		encoded, err := coder.Encode([]byte("the quick brown fox jumps over the lazy dog"))
		if err != nil {
			f.Fatal(err)
		}
		f.Add(encoded[0], encoded[1], encoded[2], encoded[3])
		f.Add(encoded[4], encoded[4], encoded[2], []byte{})
		f.Add([]byte{0x08, 0x01}, []byte{0xff}, encoded[3], encoded[1])
	}

	// crc32 of no data is zero.
	crc32 := []byte{0x18, 0x01, 0x22, 0x04, 0x00, 0x00, 0x00, 0x00}
	f.Add(hugeSizeFragment(0), hugeSizeFragment(1), hugeSizeFragment(2), []byte{})
	f.Add(hugeSizeFragment(0, crc32...), hugeSizeFragment(1, crc32...), hugeSizeFragment(2, crc32...), []byte{})

	f.Fuzz(func(t *testing.T, a, b, c, d []byte) {
		input := [][]byte{a, b, c, d}
		saved := make([][]byte, len(input))
		for i := range input {
			saved[i] = bytes.Clone(input[i])
		}

		for _, coder := range coders {
			_, err := coder.Decode(input)
			if kind := ecpool.KindOf(err); kind == ecpool.KindOther {
				t.Fatalf("unclassified decode failure: %+v", err)
			}

			_, err = coder.Reconstruct(4, input)
			if kind := ecpool.KindOf(err); kind == ecpool.KindOther {
				t.Fatalf("unclassified reconstruct failure: %+v", err)
			}
		}

		for i := range input {
			if !bytes.Equal(saved[i], input[i]) {
				t.Fatalf("fragment %d was modified", i)
			}
		}
	})
}
