// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package bytehash implements the system's opaque fixed-width byte hash.
//
// A Hash is an immutable run of raw bytes (not hex text). Its length is
// whatever it was constructed with; there is no separate type per length.
// Representing it as a Go string rather than a []byte gives it the two
// properties spec.md demands for free: value equality and use as a map
// key, both needed by the chunked table (internal/chunktable) and by its
// caller internal/source.CachingClient.
package bytehash

import (
	"encoding/hex"
	"fmt"
)

// Hash is a fixed-width run of raw bytes. The zero value is the empty hash.
type Hash string

// New constructs a Hash from raw bytes.
func New(b []byte) Hash {
	return Hash(b)
}

// ParseHex decodes a lowercase or uppercase hex string into a Hash. The
// resulting Hash has length len(s)/2. An odd-length or non-hex string is
// an error.
func ParseHex(s string) (Hash, error) {
	if len(s)%2 != 0 {
		return "", fmt.Errorf("bytehash: hex string has odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("bytehash: invalid hex: %w", err)
	}
	return Hash(b), nil
}

// ParseHexLen decodes s, requiring it to be exactly 2*n characters (n
// bytes). This is the constructor to use when the caller knows the
// expected width N, matching spec.md's `from_hex(s) -> Hash<N> | error`.
func ParseHexLen(s string, n int) (Hash, error) {
	if len(s) != 2*n {
		return "", fmt.Errorf("bytehash: expected %d hex characters for a %d-byte hash, got %d", 2*n, n, len(s))
	}
	return ParseHex(s)
}

// Hex renders the hash as lowercase hex, 2*Len() characters long.
func (h Hash) Hex() string {
	return hex.EncodeToString([]byte(h))
}

// Len returns the width of the hash in bytes.
func (h Hash) Len() int {
	return len(h)
}

// Bytes returns a copy of the hash's raw bytes.
func (h Hash) Bytes() []byte {
	return []byte(h)
}

// Truncate returns the first n bytes of h as a new Hash. It panics if n
// exceeds h.Len(), mirroring the spec's M <= N constraint on truncation.
func (h Hash) Truncate(n int) Hash {
	if n > len(h) {
		panic(fmt.Sprintf("bytehash: cannot truncate %d-byte hash to %d bytes", len(h), n))
	}
	return h[:n]
}

// Less reports whether h sorts before other under the hash's total
// lexicographic-byte ordering (Go string comparison is already byte-wise).
func (h Hash) Less(other Hash) bool {
	return h < other
}
