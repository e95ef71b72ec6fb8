// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package pathutil

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "My Album", "My Album"},
		{"strips illegal chars", `Tracker<>:"/\|?*Name`, "Tracker---------Name"},
		{"unicode preserved", "トラッカー", "トラッカー"},
		{"accented preserved", "Amélie", "Amélie"},
		{"empty string", "", ""},
		{"all illegal chars", `<>:"/\|?*`, "---------"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{"My Album", `Tracker<>:"/\|?*Name`, "トラッカー", ""}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestExceedsLength(t *testing.T) {
	excess, exceeds := ExceedsLength("short", 180)
	if exceeds {
		t.Errorf("expected no excess, got %d", excess)
	}

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	excess, exceeds = ExceedsLength(string(long), 180)
	if !exceeds || excess != 20 {
		t.Errorf("ExceedsLength = (%d, %v), want (20, true)", excess, exceeds)
	}
}
