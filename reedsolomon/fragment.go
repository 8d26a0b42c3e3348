// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package reedsolomon

import (
	"storj.io/picobuf"
)

// fragment is the protobuf encoded form of a single erasure share.
//
//	message Fragment {
//	    uint32 index    = 1;
//	    uint64 size     = 2; // size of the coded payload, without padding
//	    uint32 checksum = 3; // Checksum algorithm
//	    bytes  sum      = 4;
//	    bytes  data     = 5;
//	}
type fragment struct {
	Index    uint32
	Size     uint64
	Checksum uint32
	Sum      []byte
	Data     []byte
}

// Encode implements picobuf.Message.
func (m *fragment) Encode(c *picobuf.Encoder) bool {
	if m == nil {
		return false
	}
	c.Uint32(1, &m.Index)
	c.Uint64(2, &m.Size)
	c.Uint32(3, &m.Checksum)
	c.Bytes(4, &m.Sum)
	c.Bytes(5, &m.Data)
	return true
}

// Decode implements picobuf.Message.
func (m *fragment) Decode(c *picobuf.Decoder) {
	if m == nil {
		return
	}
	c.Loop(func(c *picobuf.Decoder) {
		c.Uint32(1, &m.Index)
		c.Uint64(2, &m.Size)
		c.Uint32(3, &m.Checksum)
		c.Bytes(4, &m.Sum)
		c.Bytes(5, &m.Data)
	})
}
