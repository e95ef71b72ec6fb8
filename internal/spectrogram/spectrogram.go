// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package spectrogram builds the sox invocations that render a FLAC
// track's full-length and zoomed spectrogram images for quality
// review.
//
// Grounded directly on original_source/src/spectrogram/spectrogram_job.rs
// and job_factory.rs: the same two sox argument lists (full and zoom),
// the same "<stem>.full.png" / "<stem>.zoom.png" output naming, and one
// job per (track, size) pair.
package spectrogram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/procexec"
)

// Size is which of the two spectrogram renderings a Target produces.
type Size string

const (
	SizeFull Size = "full"
	SizeZoom Size = "zoom"
)

// Program is the external tool every spectrogram render shells out to.
const Program = "sox"

// Target is everything one sox invocation needs to render a single
// spectrogram image.
type Target struct {
	SourcePath string
	OutputPath string
	ImageTitle string
	Size       Size
}

// Plan returns the full and zoom Targets for one FLAC track, placing
// outputs under outputDir/f.SubDir using f.Stem as the image title and
// file base name.
func Plan(flacPath string, f naming.FlacFile, outputDir string) []Target {
	dir := filepath.Join(outputDir, f.SubDir)
	return []Target{
		{
			SourcePath: flacPath,
			OutputPath: filepath.Join(dir, f.Stem+".zoom.png"),
			ImageTitle: f.Stem,
			Size:       SizeZoom,
		},
		{
			SourcePath: flacPath,
			OutputPath: filepath.Join(dir, f.Stem+".full.png"),
			ImageTitle: f.Stem,
			Size:       SizeFull,
		},
	}
}

func attrib() procexec.Attribution {
	return procexec.Attribution{Action: "generate spectrogram", Domain: "IMDL"}
}

// Command builds the sox command for t. Zoom renders 2 seconds
// starting at 1:00 in high resolution; full renders the entire track
// at lower resolution — the same two presets the original tool uses.
func Command(t Target) procexec.Command {
	args := []string{t.SourcePath, "-n", "remix", "1", "spectrogram"}
	switch t.Size {
	case SizeZoom:
		args = append(args,
			"-x", "500", "-y", "1025", "-z", "120", "-w", "Kaiser",
			"-S", "1:00", "-d", "0:02",
		)
	default:
		args = append(args, "-x", "3000", "-y", "513", "-z", "120", "-w", "Kaiser")
	}
	args = append(args, "-t", t.ImageTitle, "-c", "red_oxide", "-o", t.OutputPath)

	return procexec.Command{Program: Program, Args: args, Attribution: attrib()}
}

// Run creates t's output directory and executes its sox command.
func Run(ctx context.Context, t Target) error {
	if err := os.MkdirAll(filepath.Dir(t.OutputPath), 0o755); err != nil {
		return fmt.Errorf("spectrogram: create output directory for %s: %w", t.OutputPath, err)
	}
	_, err := procexec.Run(ctx, Command(t), nil)
	return err
}
