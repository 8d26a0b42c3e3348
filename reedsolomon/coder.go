// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package reedsolomon

import (
	"encoding/binary"
	"errors"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/errs"

	"storj.io/ecpool"
	"storj.io/infectious"
	"storj.io/picobuf"
)

// maxDecompressedSize limits the memory used by decompression.
const maxDecompressedSize = 256 << 20

// Coder is a Reed-Solomon ecpool.ErasureCode.
//
// Decoded data is verified by the fragment checksums when a checksum is
// configured. Without checksums, corruption is only detected, and corrected,
// when more fragments than DataFragments are given.
//
// Coder keeps encoding tables and compression state and is not safe for
// concurrent use. It must be closed to release the compression state.
type Coder struct {
	builder Builder
	fec     *infectious.FEC
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	lz4     *lz4.Compressor
	closed  bool
}

var (
	_ ecpool.ErasureCode   = (*Coder)(nil)
	_ ecpool.Reconstructor = (*Coder)(nil)
)

func newCoder(builder Builder) (_ *Coder, err error) {
	fec, err := infectious.NewFEC(builder.dataFragments, builder.dataFragments+builder.parityFragments)
	if err != nil {
		return nil, ecpool.ErrOther.Wrap(err)
	}

	coder := &Coder{
		builder: builder,
		fec:     fec,
	}
	switch builder.compression {
	case CompressionLZ4:
		coder.lz4 = &lz4.Compressor{}
	case CompressionZstd:
		coder.encoder, err = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, ecpool.ErrOther.Wrap(err)
		}
		coder.decoder, err = zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxDecompressedSize),
		)
		if err != nil {
			return nil, ecpool.ErrOther.Wrap(errs.Combine(err, coder.encoder.Close()))
		}
	}
	return coder, nil
}

// DataFragments implements ecpool.ErasureCode.
func (coder *Coder) DataFragments() int { return coder.fec.Required() }

// ParityFragments implements ecpool.ErasureCode.
func (coder *Coder) ParityFragments() int { return coder.fec.Total() - coder.fec.Required() }

// Close releases the compression state.
func (coder *Coder) Close() error {
	coder.closed = true
	coder.lz4 = nil

	var err error
	if coder.encoder != nil {
		err = coder.encoder.Close()
		coder.encoder = nil
	}
	if coder.decoder != nil {
		coder.decoder.Close()
		coder.decoder = nil
	}
	return ecpool.ErrOther.Wrap(err)
}

// Encode implements ecpool.ErasureCode. Empty data is rejected.
func (coder *Coder) Encode(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ecpool.ErrInvalidInput.New("empty data")
	}

	payload, err := coder.compress(data)
	if err != nil {
		return nil, err
	}

	k := coder.fec.Required()
	stripe := make([]byte, int(shareSize(uint64(len(payload)), k))*k)
	copy(stripe, payload)

	fragments := make([][]byte, coder.fec.Total())
	var group errs.Group
	err = coder.fec.Encode(stripe, func(share infectious.Share) {
		raw, err := coder.wrap(share.Number, len(payload), share.Data)
		group.Add(err)
		fragments[share.Number] = raw
	})
	group.Add(err)
	if err := group.Err(); err != nil {
		return nil, ecpool.ErrOther.Wrap(err)
	}
	return fragments, nil
}

// Decode implements ecpool.ErasureCode.
func (coder *Coder) Decode(fragments [][]byte) ([]byte, error) {
	stripe, size, err := coder.restore(fragments)
	if err != nil {
		return nil, err
	}
	return coder.decompress(stripe[:size])
}

// Reconstruct implements ecpool.Reconstructor. It rebuilds the fragment
// without re-encoding the other fragments. The payload is still decompressed,
// so Reconstruct fails exactly when Decode does.
func (coder *Coder) Reconstruct(index int, fragments [][]byte) ([]byte, error) {
	if total := coder.fec.Total(); index < 0 || index >= total {
		return nil, ecpool.ErrOther.New("too large index: index=%d, fragments=%d", index, total)
	}

	stripe, size, err := coder.restore(fragments)
	if err != nil {
		return nil, err
	}
	if coder.builder.compression != CompressionNone {
		if _, err := coder.decompress(stripe[:size]); err != nil {
			return nil, err
		}
	}

	share := make([]byte, len(stripe)/coder.fec.Required())
	if err := coder.fec.EncodeSingle(stripe, share, index); err != nil {
		return nil, ecpool.ErrOther.Wrap(err)
	}
	return coder.wrap(index, size, share)
}

// restore returns the padded stripe coded from the fragments and the size of
// the payload inside it.
func (coder *Coder) restore(fragments [][]byte) (stripe []byte, size int, err error) {
	if coder.closed {
		return nil, 0, ecpool.ErrOther.New("coder is closed")
	}
	k := coder.fec.Required()
	if len(fragments) < k {
		return nil, 0, ecpool.ErrInvalidInput.New("fragments=%d, data_fragments=%d", len(fragments), k)
	}

	shares, size, err := coder.unwrap(fragments)
	if err != nil {
		return nil, 0, err
	}
	width := len(shares[0].Data)

	if coder.builder.checksum == ChecksumNone {
		stripe, err = coder.fec.Decode(make([]byte, 0, width*k), shares)
		switch {
		case errors.Is(err, infectious.TooManyErrors):
			return nil, 0, ecpool.ErrCorruptedFragments.Wrap(err)
		case errors.Is(err, infectious.NotEnoughShares):
			return nil, 0, ecpool.ErrInvalidInput.Wrap(err)
		case err != nil:
			return nil, 0, ecpool.ErrOther.Wrap(err)
		}
		if size > len(stripe) {
			return nil, 0, ecpool.ErrCorruptedFragments.New("payload size %d exceeds stripe size %d", size, len(stripe))
		}
		return stripe, size, nil
	}

	// the shares are verified, so no error correction is needed.
	stripe = make([]byte, width*k)
	err = coder.fec.Rebuild(shares, func(share infectious.Share) {
		copy(stripe[share.Number*width:], share.Data)
	})
	if err != nil {
		return nil, 0, ecpool.ErrOther.Wrap(err)
	}
	if size > len(stripe) {
		return nil, 0, ecpool.ErrCorruptedFragments.New("payload size %d exceeds stripe size %d", size, len(stripe))
	}
	return stripe, size, nil
}

// wrap encodes a share into a fragment.
func (coder *Coder) wrap(index, size int, data []byte) ([]byte, error) {
	raw, err := picobuf.Marshal(&fragment{
		Index:    uint32(index),
		Size:     uint64(size),
		Checksum: uint32(coder.builder.checksum),
		Sum:      coder.builder.checksum.sum(data),
		Data:     data,
	})
	if err != nil {
		return nil, ecpool.ErrOther.Wrap(err)
	}
	return raw, nil
}

// unwrap parses and verifies fragments. Fragments that are unreadable, fail
// verification or disagree with the majority about the payload size are
// skipped. Duplicate fragments are ignored.
func (coder *Coder) unwrap(fragments [][]byte) (shares []infectious.Share, size int, err error) {
	k, total := coder.fec.Required(), coder.fec.Total()

	var rejected errs.Group
	parsed := make([]fragment, 0, len(fragments))
	sizes := make(map[uint64]int)
	for i, raw := range fragments {
		var f fragment
		if err := picobuf.Unmarshal(raw, &f); err != nil {
			rejected.Add(errs.New("fragment %d: bad header: %v", i, err))
			continue
		}
		if int64(f.Index) >= int64(total) {
			rejected.Add(errs.New("fragment %d: index %d out of range", i, f.Index))
			continue
		}
		if Checksum(f.Checksum) != coder.builder.checksum {
			rejected.Add(errs.New("fragment %d: checksum %v, expected %v", i, Checksum(f.Checksum), coder.builder.checksum))
			continue
		}
		if !coder.builder.checksum.verify(f.Data, f.Sum) {
			rejected.Add(errs.New("fragment %d: bad checksum", i))
			continue
		}
		if f.Size == 0 || uint64(len(f.Data)) != shareSize(f.Size, k) {
			rejected.Add(errs.New("fragment %d: size %d does not match share size %d", i, f.Size, len(f.Data)))
			continue
		}
		parsed = append(parsed, f)
		sizes[f.Size]++
	}

	// the payload size is the one most fragments agree on, ties go to the
	// size that was parsed first.
	var best uint64
	if len(parsed) > 0 {
		best = parsed[0].Size
	}
	for _, f := range parsed {
		if sizes[f.Size] > sizes[best] {
			best = f.Size
		}
	}

	seen := make([]bool, total)
	for _, f := range parsed {
		if f.Size != best {
			rejected.Add(errs.New("fragment %d: size %d, expected %d", f.Index, f.Size, best))
			continue
		}
		if seen[f.Index] {
			continue
		}
		seen[f.Index] = true
		// infectious corrects shares in place, the caller's memory must not change.
		shares = append(shares, infectious.Share{
			Number: int(f.Index),
			Data:   append([]byte(nil), f.Data...),
		})
	}

	if len(shares) < k {
		if len(rejected) > 0 {
			return nil, 0, ecpool.ErrCorruptedFragments.New("usable fragments=%d, data_fragments=%d: %v",
				len(shares), k, rejected.Err())
		}
		return nil, 0, ecpool.ErrInvalidInput.New("distinct fragments=%d, data_fragments=%d", len(shares), k)
	}
	return shares, int(best), nil
}

// shareSize returns the size of a single share of a payload of size bytes
// split into k shares.
func shareSize(size uint64, k int) uint64 {
	share := size / uint64(k)
	if size%uint64(k) != 0 {
		share++
	}
	return share
}

// lz4 payloads start with a block kind and the uncompressed size.
const (
	lz4Stored     = 0
	lz4Compressed = 1
)

func (coder *Coder) compress(data []byte) ([]byte, error) {
	if coder.closed {
		return nil, ecpool.ErrOther.New("coder is closed")
	}

	switch coder.builder.compression {
	case CompressionZstd:
		return coder.encoder.EncodeAll(data, nil), nil
	case CompressionLZ4:
		payload := make([]byte, 1+binary.MaxVarintLen64+lz4.CompressBlockBound(len(data)))
		header := 1 + binary.PutUvarint(payload[1:], uint64(len(data)))

		written, err := coder.lz4.CompressBlock(data, payload[header:])
		if err != nil {
			return nil, ecpool.ErrOther.Wrap(err)
		}
		// incompressible data is stored as it is.
		if written == 0 || written >= len(data) {
			payload[0] = lz4Stored
			return append(payload[:header], data...), nil
		}
		payload[0] = lz4Compressed
		return payload[:header+written], nil
	default:
		return data, nil
	}
}

func (coder *Coder) decompress(payload []byte) ([]byte, error) {
	if coder.closed {
		return nil, ecpool.ErrOther.New("coder is closed")
	}

	// the payload was verified or error corrected, so failures below mean it
	// was produced by a different configuration or corrupted before encoding.
	switch coder.builder.compression {
	case CompressionZstd:
		data, err := coder.decoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, ecpool.ErrCorruptedFragments.Wrap(err)
		}
		return data, nil
	case CompressionLZ4:
		if len(payload) < 2 {
			return nil, ecpool.ErrCorruptedFragments.New("lz4 payload too short: %d", len(payload))
		}
		size, n := binary.Uvarint(payload[1:])
		if n <= 0 || size > maxDecompressedSize {
			return nil, ecpool.ErrCorruptedFragments.New("invalid lz4 payload size")
		}
		body := payload[1+n:]

		switch payload[0] {
		case lz4Stored:
			if uint64(len(body)) != size {
				return nil, ecpool.ErrCorruptedFragments.New("stored payload has %d bytes, expected %d", len(body), size)
			}
			return body, nil
		case lz4Compressed:
			// a single lz4 byte expands to at most 255 bytes.
			if size > uint64(len(body))*255 {
				return nil, ecpool.ErrCorruptedFragments.New("lz4 payload of %d bytes cannot hold %d bytes", len(body), size)
			}
			data := make([]byte, size)
			read, err := lz4.UncompressBlock(body, data)
			if err != nil {
				return nil, ecpool.ErrCorruptedFragments.Wrap(err)
			}
			if uint64(read) != size {
				return nil, ecpool.ErrCorruptedFragments.New("lz4 payload has %d bytes, expected %d", read, size)
			}
			return data, nil
		default:
			return nil, ecpool.ErrCorruptedFragments.New("unknown lz4 block kind %d", payload[0])
		}
	default:
		return payload, nil
	}
}
