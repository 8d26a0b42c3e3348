// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package reedsolomon implements an ecpool.ErasureCode based on the
// Reed-Solomon implementation of storj.io/infectious.
//
// Every fragment carries a small header with its position, the size of the
// coded payload and an optional checksum, so fragments can be given to Decode
// in any order and without their original positions.
package reedsolomon

import (
	"fmt"

	"storj.io/ecpool"
)

// MaxFragments is the maximum total number of fragments supported by the
// underlying GF(2^8) code.
const MaxFragments = 256

// Option configures a Builder.
type Option func(*Builder)

// WithChecksum sets the checksum algorithm of the fragments.
//
// The default value is ChecksumNone.
func WithChecksum(checksum Checksum) Option {
	return func(builder *Builder) { builder.checksum = checksum }
}

// WithCompression sets the compression applied before encoding.
//
// The default value is CompressionNone.
func WithCompression(compression Compression) Option {
	return func(builder *Builder) { builder.compression = compression }
}

// Builder builds Coder instances. It implements ecpool.Builder.
type Builder struct {
	dataFragments   int
	parityFragments int
	checksum        Checksum
	compression     Compression
}

var _ ecpool.Builder = Builder{}

// NewBuilder returns a Builder for codes with the given number of data and
// parity fragments.
func NewBuilder(dataFragments, parityFragments int, opts ...Option) (Builder, error) {
	if err := ecpool.CheckFragments(dataFragments, parityFragments); err != nil {
		return Builder{}, err
	}
	if dataFragments+parityFragments > MaxFragments {
		return Builder{}, ecpool.ErrInvalidInput.New("too many fragments: data=%d, parity=%d, max=%d",
			dataFragments, parityFragments, MaxFragments)
	}

	builder := Builder{
		dataFragments:   dataFragments,
		parityFragments: parityFragments,
	}
	for _, opt := range opts {
		opt(&builder)
	}

	if !builder.checksum.valid() {
		return Builder{}, ecpool.ErrInvalidInput.New("unsupported checksum: %v", builder.checksum)
	}
	if !builder.compression.valid() {
		return Builder{}, ecpool.ErrInvalidInput.New("unsupported compression: %v", builder.compression)
	}
	return builder, nil
}

// DataFragments returns the number of data fragments.
func (builder Builder) DataFragments() int { return builder.dataFragments }

// ParityFragments returns the number of parity fragments.
func (builder Builder) ParityFragments() int { return builder.parityFragments }

// Checksum returns the checksum algorithm.
func (builder Builder) Checksum() Checksum { return builder.checksum }

// Compression returns the compression.
func (builder Builder) Compression() Compression { return builder.compression }

// Build builds a new Coder.
func (builder Builder) Build() (*Coder, error) {
	return newCoder(builder)
}

// BuildCoder implements ecpool.Builder.
func (builder Builder) BuildCoder() (ecpool.ErasureCode, error) {
	coder, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return coder, nil
}

// CoderID implements ecpool.Builder.
func (builder Builder) CoderID() string {
	return fmt.Sprintf("reedsolomon:%v:%v:%d:%d",
		builder.checksum, builder.compression, builder.dataFragments, builder.parityFragments)
}

// New builds a Coder with the default settings.
//
// This is equivalent to NewBuilder(dataFragments, parityFragments) followed
// by Build.
func New(dataFragments, parityFragments int) (*Coder, error) {
	builder, err := NewBuilder(dataFragments, parityFragments)
	if err != nil {
		return nil, err
	}
	return builder.Build()
}
