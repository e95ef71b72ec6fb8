// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pathutil provides shared path-segment sanitization helpers used
// when deriving filesystem names from release metadata.
package pathutil

import "strings"

// reservedChars are the ASCII filesystem-reserved characters this system
// rewrites. Unicode outside this set is preserved verbatim; see DESIGN.md
// for why byte length (not rune count) is the measurement this repo uses
// for the companion length guard.
const reservedChars = `<>:"/\|?*`

// Sanitize replaces filesystem-reserved ASCII characters with "-".
// It is idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	if !strings.ContainsAny(s, reservedChars) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(reservedChars, r) {
			b.WriteByte('-')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExceedsLength reports whether s is longer than limit bytes, and by how
// much. Measured in bytes to match filesystem path-length limits directly
// rather than Unicode code points (see DESIGN.md, Open Question: sanitization
// universe).
func ExceedsLength(s string, limit int) (excess int, exceeds bool) {
	n := len(s)
	if n <= limit {
		return 0, false
	}
	return n - limit, true
}
