// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package sidefiles

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestEligible(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, Eligible("cover.jpg", cfg))
	assert.True(t, Eligible("cover.PNG", cfg))
	assert.False(t, Eligible("notes.txt", cfg))
}

func TestPlanFileSmallImageLinksOrCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.png")
	writePNG(t, src, 8, 8)

	plan, err := PlanFile(src, filepath.Join(dir, "out", "cover.png"), DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, []Action{ActionHardlink, ActionCopy}, plan.Action)
	assert.Equal(t, "png", plan.DstExt)
}

func TestPlanFileOversizedImageRecompresses(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.png")
	writePNG(t, src, 8, 8)

	cfg := DefaultConfig()
	cfg.SizeThreshold = 1 // force "oversized"

	plan, err := PlanFile(src, filepath.Join(dir, "cover.png"), cfg)
	require.NoError(t, err)
	assert.Equal(t, ActionRecompress, plan.Action)
}

func TestPlanFileConvertsPNGToJPEGWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.png")
	writePNG(t, src, 8, 8)

	cfg := DefaultConfig()
	cfg.SizeThreshold = 1
	cfg.ConvertPNGToJPEG = true

	plan, err := PlanFile(src, filepath.Join(dir, "cover.png"), cfg)
	require.NoError(t, err)
	assert.Equal(t, ActionRecompress, plan.Action)
	assert.Equal(t, "jpg", plan.DstExt)
	assert.Equal(t, filepath.Join(dir, "cover.jpg"), plan.Dst)
}

func TestPlanFileOversizedNonImageWarnsButIncludes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "log.txt")
	require.NoError(t, os.WriteFile(src, make([]byte, 10), 0o644))

	cfg := DefaultConfig()
	cfg.SizeThreshold = 1

	plan, err := PlanFile(src, filepath.Join(dir, "out", "log.txt"), cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, plan.Warning)
	assert.Contains(t, []Action{ActionHardlink, ActionCopy}, plan.Action)
}

func TestDimensions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.png")
	writePNG(t, src, 20, 10)

	w, h, format, err := Dimensions(src)
	require.NoError(t, err)
	assert.Equal(t, 20, w)
	assert.Equal(t, 10, h)
	assert.Equal(t, "png", format)
}

func TestApplyCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cover.png")
	writePNG(t, src, 4, 4)
	dst := filepath.Join(dir, "copy.png")

	err := Apply(context.Background(), Plan{Src: src, Dst: dst, Action: ActionCopy})
	require.NoError(t, err)
	_, err = os.Stat(dst)
	require.NoError(t, err)
}
