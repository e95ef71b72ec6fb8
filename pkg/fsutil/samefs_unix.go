// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build !windows

package fsutil

import (
	"fmt"
	"syscall"
)

func sameFilesystem(path1, path2 string) (bool, error) {
	var st1, st2 syscall.Stat_t
	if err := syscall.Stat(path1, &st1); err != nil {
		return false, fmt.Errorf("stat %s: %w", path1, err)
	}
	if err := syscall.Stat(path2, &st2); err != nil {
		return false, fmt.Errorf("stat %s: %w", path2, err)
	}
	return st1.Dev == st2.Dev, nil
}

// DeviceOf returns the device ID backing path, for callers that want to
// bucket a set of paths by filesystem without repeated pairwise stats.
func DeviceOf(path string) (uint64, error) {
	var st syscall.Stat_t
	if err := syscall.Stat(path, &st); err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return uint64(st.Dev), nil //nolint:unconvert // Dev is int64 on some platforms.
}
