// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package torrentcache gzip-compresses downloaded .torrent bytes before
// writing them to the cache directory: multi-disc FLAC sources mean a
// batch run can accumulate one cached file per release, and the
// bencoded payload compresses well.
//
// Grounded on the teacher's use of klauspost/compress for its own
// on-disk artifacts; the gzip writer/reader pair is the same shape used
// there, now fronting C12's downloaded-torrent-bytes cache instead.
package torrentcache

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Store gzip-compresses data and writes it to path, creating its parent
// directory if needed.
func Store(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("torrentcache: mkdir for %s: %w", path, err)
	}

	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("torrentcache: new gzip writer: %w", err)
	}
	if _, err := gw.Write(data); err != nil {
		return fmt.Errorf("torrentcache: compress %s: %w", path, err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("torrentcache: finalize %s: %w", path, err)
	}

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load reads and decompresses path. It returns os.ErrNotExist (wrapped)
// when the cache entry does not exist, so callers can treat it the same
// way they treat a cache miss.
func Load(path string) ([]byte, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("torrentcache: open gzip %s: %w", path, err)
	}
	defer gr.Close()

	data, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("torrentcache: decompress %s: %w", path, err)
	}
	return data, nil
}
