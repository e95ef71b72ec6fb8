// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package bytehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexRoundTrip(t *testing.T) {
	raw := []byte{
		0x0a, 0x1b, 0x2c, 0x3d, 0x4e, 0x5f, 0x67, 0x89, 0x01, 0x23,
		0x45, 0x67, 0x89, 0xab, 0xcd, 0xef, 0xab, 0xcd, 0xef, 0x12,
	}
	want := "0a1b2c3d4e5f67890123456789abcdefabcdef12"

	h := New(raw)
	assert.Equal(t, want, h.Hex())
	assert.Equal(t, 2*len(raw), len(h.Hex()))

	parsed, err := ParseHexLen(want, len(raw))
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.Equal(t, h.Hex(), parsed.Hex())
}

func TestParseHexRejectsBadInput(t *testing.T) {
	_, err := ParseHexLen("abc", 20)
	assert.Error(t, err, "wrong length should fail")

	_, err = ParseHexLen("zz", 1)
	assert.Error(t, err, "non-hex should fail")

	_, err = ParseHex("abc")
	assert.Error(t, err, "odd length should fail")
}

func TestTruncate(t *testing.T) {
	h, err := ParseHex("0a1b2c3d4e5f")
	require.NoError(t, err)

	got := h.Truncate(3)
	assert.Equal(t, "0a1b2c", got.Hex())
	assert.Equal(t, 3, got.Len())
}

func TestTruncatePanicsOverLength(t *testing.T) {
	h, err := ParseHex("0a1b")
	require.NoError(t, err)

	assert.Panics(t, func() {
		h.Truncate(10)
	})
}

func TestOrdering(t *testing.T) {
	a, _ := ParseHex("0000")
	b, _ := ParseHex("0001")
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestUsableAsMapKey(t *testing.T) {
	a, _ := ParseHex("aabb")
	m := map[Hash]int{a: 1}
	v, ok := m[a]
	require.True(t, ok)
	assert.Equal(t, 1, v)
}
