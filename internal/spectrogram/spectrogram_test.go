// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package spectrogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicaudio/relic/internal/naming"
)

func TestPlanBuildsZoomThenFullWithExpectedNames(t *testing.T) {
	targets := Plan("/music/01 Track.flac", naming.FlacFile{Stem: "01 Track"}, "/out/SPECTROGRAMS")
	require.Len(t, targets, 2)
	assert.Equal(t, SizeZoom, targets[0].Size)
	assert.Equal(t, "/out/SPECTROGRAMS/01 Track.zoom.png", targets[0].OutputPath)
	assert.Equal(t, SizeFull, targets[1].Size)
	assert.Equal(t, "/out/SPECTROGRAMS/01 Track.full.png", targets[1].OutputPath)
}

func TestPlanJoinsSubDirForMultiDiscReleases(t *testing.T) {
	targets := Plan("/music/disc1/01.flac", naming.FlacFile{SubDir: "disc1", Stem: "01"}, "/out/SPECTROGRAMS")
	assert.Equal(t, "/out/SPECTROGRAMS/disc1/01.zoom.png", targets[0].OutputPath)
}

func TestCommandZoomUsesShortWindow(t *testing.T) {
	cmd := Command(Target{SourcePath: "in.flac", OutputPath: "out.png", ImageTitle: "Track", Size: SizeZoom})
	assert.Equal(t, Program, cmd.Program)
	assert.Contains(t, cmd.Args, "1:00")
	assert.Contains(t, cmd.Args, "0:02")
}

func TestCommandFullOmitsWindowFlags(t *testing.T) {
	cmd := Command(Target{SourcePath: "in.flac", OutputPath: "out.png", ImageTitle: "Track", Size: SizeFull})
	assert.NotContains(t, cmd.Args, "-S")
	assert.Contains(t, cmd.Args, "3000")
}
