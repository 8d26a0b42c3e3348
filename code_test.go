// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package ecpool

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/assert"
)

// fakeCode is a minimal ErasureCode splitting nothing: every fragment is a
// copy of the data.
type fakeCode struct {
	data, parity int
	short        bool
}

func (code fakeCode) DataFragments() int   { return code.data }
func (code fakeCode) ParityFragments() int { return code.parity }

func (code fakeCode) Encode(data []byte) ([][]byte, error) {
	n := code.data + code.parity
	if code.short {
		n = 1
	}
	fragments := make([][]byte, n)
	for i := range fragments {
		fragments[i] = append([]byte{}, data...)
	}
	return fragments, nil
}

func (code fakeCode) Decode(fragments [][]byte) ([]byte, error) {
	if len(fragments) < code.data {
		return nil, ErrInvalidInput.New("not enough")
	}
	return fragments[0], nil
}

func TestKindOf(t *testing.T) {
	plain := errors.New("plain")

	for _, tt := range []struct {
		err  error
		kind Kind
	}{
		{nil, KindNone},
		{ErrCorruptedFragments.New("bad"), KindCorruptedFragments},
		{ErrInvalidInput.New("bad"), KindInvalidInput},
		{ErrOther.New("bad"), KindOther},
		{ErrOther.Wrap(plain), KindOther},
		{plain, KindOther},
		{Error.Wrap(ErrInvalidInput.New("wrapped")), KindInvalidInput},
	} {
		assert.Equal(t, tt.kind, KindOf(tt.err))
	}

	assert.Equal(t, "corrupted fragments", KindCorruptedFragments.String())
	assert.Equal(t, "invalid input", KindInvalidInput.String())
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "none", KindNone.String())

	require.ErrorIs(t, ErrOther.Wrap(plain), plain)
}

func TestFragments(t *testing.T) {
	require.Equal(t, 6, Fragments(fakeCode{data: 4, parity: 2}))

	require.Panics(t, func() {
		Fragments(fakeCode{data: math.MaxInt, parity: 1})
	})
}

func TestCheckFragments(t *testing.T) {
	require.NoError(t, CheckFragments(1, 1))
	require.NoError(t, CheckFragments(math.MaxInt-1, 1))

	for _, pair := range [][2]int{{0, 1}, {1, 0}, {-3, 2}, {math.MaxInt, 1}, {1, math.MaxInt}} {
		err := CheckFragments(pair[0], pair[1])
		require.Error(t, err)
		require.Equal(t, KindInvalidInput, KindOf(err))
	}
}

func TestDefaultReconstruct(t *testing.T) {
	code := fakeCode{data: 2, parity: 1}

	fragment, err := DefaultReconstruct(code, 2, [][]byte{[]byte("a"), []byte("a")})
	require.NoError(t, err)
	require.Equal(t, []byte("a"), fragment)

	_, err = DefaultReconstruct(code, 3, [][]byte{[]byte("a"), []byte("a")})
	require.Equal(t, KindOther, KindOf(err))

	_, err = DefaultReconstruct(code, -1, [][]byte{[]byte("a"), []byte("a")})
	require.Equal(t, KindOther, KindOf(err))

	_, err = DefaultReconstruct(code, 0, [][]byte{[]byte("a")})
	require.Equal(t, KindInvalidInput, KindOf(err))

	_, err = DefaultReconstruct(fakeCode{data: 2, parity: 1, short: true}, 2, [][]byte{[]byte("a"), []byte("a")})
	require.Equal(t, KindOther, KindOf(err))
}
