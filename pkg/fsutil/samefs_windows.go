// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

//go:build windows

package fsutil

import (
	"fmt"
	"syscall"
)

func sameFilesystem(path1, path2 string) (bool, error) {
	v1, err := volumeSerial(path1)
	if err != nil {
		return false, err
	}
	v2, err := volumeSerial(path2)
	if err != nil {
		return false, err
	}
	return v1 == v2, nil
}

func volumeSerial(path string) (uint32, error) {
	pathp, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	h, err := syscall.CreateFile(pathp, 0, syscall.FILE_SHARE_READ|syscall.FILE_SHARE_WRITE|syscall.FILE_SHARE_DELETE,
		nil, syscall.OPEN_EXISTING, syscall.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer syscall.CloseHandle(h)

	var info syscall.ByHandleFileInformation
	if err := syscall.GetFileInformationByHandle(h, &info); err != nil {
		return 0, fmt.Errorf("get file info %s: %w", path, err)
	}
	return info.VolumeSerialNumber, nil
}
