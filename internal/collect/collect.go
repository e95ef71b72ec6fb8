// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package collect walks a resolved source's content directory to find
// the FLAC tracks it contains (recursively, for multi-disc releases)
// and the top-level companion image files sitting alongside them.
//
// Grounded on original_source/src/fs/collector.rs and flac_file.rs: the
// same sub_dir/file_name split (sub_dir relative to the source root,
// file_name with ".flac" stripped) and the same non-recursive scan for
// companion images.
package collect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/relicaudio/relic/internal/naming"
)

// FlacEntry is one discovered FLAC track: its full path plus the
// sub_dir/stem split naming.FlacFile needs for output placement.
type FlacEntry struct {
	Path string
	File naming.FlacFile
}

// Flacs recursively finds every .flac file under sourceDir, sorted by
// path for deterministic job ordering.
func Flacs(sourceDir string) ([]FlacEntry, error) {
	var entries []FlacEntry

	err := filepath.WalkDir(sourceDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".flac") {
			return nil
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return fmt.Errorf("collect: relativize %s: %w", path, err)
		}
		subDir := filepath.Dir(rel)
		if subDir == "." {
			subDir = ""
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		entries = append(entries, FlacEntry{
			Path: path,
			File: naming.FlacFile{SubDir: subDir, Stem: stem},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect: walk %s: %w", sourceDir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Additional finds top-level (non-recursive) files under sourceDir
// whose extension (lower-cased, no dot) is in extensions.
func Additional(sourceDir string, extensions []string) ([]string, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	dirEntries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("collect: read %s: %w", sourceDir, err)
	}

	var files []string
	for _, d := range dirEntries {
		if d.IsDir() {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(d.Name()), "."))
		if allowed[ext] {
			files = append(files, filepath.Join(sourceDir, d.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// DedupByContent drops files whose content is byte-identical to one
// already seen, keeping the first occurrence (files is expected to
// already be sorted, so "first" is deterministic). Multi-disc releases
// routinely carry the same cover art under several disc subdirectories;
// without this, sidefiles would place redundant copies of an identical
// file once per disc. Fingerprinting is two-stage: xxhash64 groups
// same-size files cheaply, a full byte comparison only runs within a
// hash collision to rule out false positives.
func DedupByContent(files []string) ([]string, error) {
	type seenFile struct {
		size int64
		data []byte
	}
	seen := make(map[uint64][]seenFile, len(files))

	result := make([]string, 0, len(files))
	for _, path := range files {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("collect: stat %s: %w", path, err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("collect: read %s: %w", path, err)
		}
		sum := xxhash.Sum64(data)

		duplicate := false
		for _, candidate := range seen[sum] {
			if candidate.size == fi.Size() && bytes.Equal(candidate.data, data) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		seen[sum] = append(seen[sum], seenFile{size: fi.Size(), data: data})
		result = append(result, path)
	}
	return result, nil
}

// FlacPaths extracts just the file paths from entries, the shape
// internal/verify's Collect expects.
func FlacPaths(entries []FlacEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}
