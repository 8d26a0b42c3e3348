// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package reedsolomon

import (
	"bytes"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/zeebo/blake3"

	"storj.io/ecpool"
)

// Checksum identifies the algorithm used to checksum every fragment.
// The values are stored in fragment headers and must not change.
type Checksum uint32

const (
	// ChecksumNone disables fragment checksums. Decoding then relies on the
	// error correction of the Reed-Solomon code, which needs more than the
	// minimum number of fragments to detect corruption.
	ChecksumNone Checksum = 0
	// ChecksumCRC32 uses CRC-32 (IEEE).
	ChecksumCRC32 Checksum = 1
	// ChecksumMD5 uses MD5.
	ChecksumMD5 Checksum = 2
	// ChecksumBlake3 uses a 256 bit BLAKE3 digest.
	ChecksumBlake3 Checksum = 3
)

// String returns the name of the checksum algorithm.
func (checksum Checksum) String() string {
	switch checksum {
	case ChecksumNone:
		return "none"
	case ChecksumCRC32:
		return "crc32"
	case ChecksumMD5:
		return "md5"
	case ChecksumBlake3:
		return "blake3"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(checksum))
	}
}

// ParseChecksum parses a checksum algorithm from its name.
func ParseChecksum(name string) (Checksum, error) {
	switch name {
	case "none", "":
		return ChecksumNone, nil
	case "crc32":
		return ChecksumCRC32, nil
	case "md5":
		return ChecksumMD5, nil
	case "blake3":
		return ChecksumBlake3, nil
	default:
		return 0, ecpool.ErrInvalidInput.New("unknown checksum: %q", name)
	}
}

func (checksum Checksum) valid() bool {
	return checksum <= ChecksumBlake3
}

// sum returns the checksum of data, nil for ChecksumNone.
func (checksum Checksum) sum(data []byte) []byte {
	switch checksum {
	case ChecksumCRC32:
		return binary.BigEndian.AppendUint32(nil, crc32.ChecksumIEEE(data))
	case ChecksumMD5:
		sum := md5.Sum(data)
		return sum[:]
	case ChecksumBlake3:
		sum := blake3.Sum256(data)
		return sum[:]
	default:
		return nil
	}
}

func (checksum Checksum) verify(data, sum []byte) bool {
	return bytes.Equal(checksum.sum(data), sum)
}

// Compression identifies how data is compressed before it is erasure coded.
type Compression uint32

const (
	// CompressionNone stores data as it is.
	CompressionNone Compression = 0
	// CompressionZstd compresses data with zstd.
	CompressionZstd Compression = 1
	// CompressionLZ4 compresses data with block mode LZ4. It is faster than
	// zstd but compresses less.
	CompressionLZ4 Compression = 2
)

// String returns the name of the compression.
func (compression Compression) String() string {
	switch compression {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(compression))
	}
}

// ParseCompression parses a compression from its name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, ecpool.ErrInvalidInput.New("unknown compression: %q", name)
	}
}

func (compression Compression) valid() bool {
	return compression <= CompressionLZ4
}
