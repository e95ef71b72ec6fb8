// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package collect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFlacsFindsNestedTracksWithSubDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "01 Track.flac"))
	touch(t, filepath.Join(dir, "disc2", "01 Track.flac"))
	touch(t, filepath.Join(dir, "cover.jpg"))

	entries, err := Flacs(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "", entries[0].File.SubDir)
	assert.Equal(t, "01 Track", entries[0].File.Stem)
	assert.Equal(t, "disc2", entries[1].File.SubDir)
}

func TestAdditionalIsNonRecursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "cover.jpg"))
	touch(t, filepath.Join(dir, "scans", "back.jpg"))

	files, err := Additional(dir, []string{"jpg", "png"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "cover.jpg"), files[0])
}

func TestDedupByContentDropsByteIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "disc1", "folder.jpg")
	b := filepath.Join(dir, "disc2", "folder.jpg")
	c := filepath.Join(dir, "disc1", "back.jpg")

	require.NoError(t, os.MkdirAll(filepath.Dir(a), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))
	require.NoError(t, os.WriteFile(a, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same bytes"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("different"), 0o644))

	result, err := DedupByContent([]string{a, b, c})
	require.NoError(t, err)
	assert.Equal(t, []string{a, c}, result)
}

func TestDedupByContentKeepsDistinctSameSizeFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "one.txt")
	b := filepath.Join(dir, "two.txt")
	require.NoError(t, os.WriteFile(a, []byte("aaaa"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("bbbb"), 0o644))

	result, err := DedupByContent([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, result)
}

func TestFlacPathsExtractsPaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.flac"))
	entries, err := Flacs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.flac")}, FlacPaths(entries))
}
