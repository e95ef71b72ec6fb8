// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package transcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicaudio/relic/internal/flacinfo"
	"github.com/relicaudio/relic/internal/naming"
)

func cdQuality() flacinfo.Info {
	return flacinfo.Info{Stream: flacinfo.StreamInfo{SampleRate: 44100, BitsPerSample: 16}}
}

func hiRes() flacinfo.Info {
	return flacinfo.Info{Stream: flacinfo.StreamInfo{SampleRate: 96000, BitsPerSample: 24}}
}

func TestBuildFLACNoResampleIsDecodeEncodePipeline(t *testing.T) {
	plan, err := Build(cdQuality(), "in.flac", "out.flac", naming.TargetFLAC)
	require.NoError(t, err)
	require.Len(t, plan.Commands, 2)
	assert.Equal(t, ProgramLosslessCodec, plan.Commands[0].Program)
	assert.Equal(t, ProgramLosslessCodec, plan.Commands[1].Program)
	assert.False(t, plan.NeedsTags)
}

func TestBuildFLACWithResampleIsSingleCommand(t *testing.T) {
	plan, err := Build(hiRes(), "in.flac", "out.flac", naming.TargetFLAC)
	require.NoError(t, err)
	require.Len(t, plan.Commands, 1)
	assert.Equal(t, ProgramAudioProcessor, plan.Commands[0].Program)
	assert.Contains(t, plan.Commands[0].Args, "48000")
}

func TestBuild320NoResampleUsesLosslessDecode(t *testing.T) {
	plan, err := Build(cdQuality(), "in.flac", "out.mp3", naming.Target320)
	require.NoError(t, err)
	require.Len(t, plan.Commands, 2)
	assert.Equal(t, ProgramLosslessCodec, plan.Commands[0].Program)
	assert.Equal(t, ProgramMP3Encoder, plan.Commands[1].Program)
	assert.Contains(t, plan.Commands[1].Args, "-b")
	assert.Contains(t, plan.Commands[1].Args, "320")
	assert.True(t, plan.NeedsTags)
}

func TestBuildV0WithResampleUsesAudioProcessorDecode(t *testing.T) {
	plan, err := Build(hiRes(), "in.flac", "out.mp3", naming.TargetV0)
	require.NoError(t, err)
	require.Len(t, plan.Commands, 2)
	assert.Equal(t, ProgramAudioProcessor, plan.Commands[0].Program)
	assert.Contains(t, plan.Commands[1].Args, "-V")
	assert.Contains(t, plan.Commands[1].Args, "--vbr-new")
}

func TestBuildFLACRejectsUnsupportedSampleRate(t *testing.T) {
	odd := flacinfo.Info{Path: "odd.flac", Stream: flacinfo.StreamInfo{SampleRate: 22050, BitsPerSample: 24}}
	_, err := Build(odd, "in.flac", "out.flac", naming.TargetFLAC)
	require.Error(t, err)
}

func TestTrackAndDiscVinylFix(t *testing.T) {
	disc, track, tag := trackAndDisc("B3")
	assert.Equal(t, "2", disc)
	assert.Equal(t, "3", track)
	assert.Equal(t, "3", tag)
}

func TestTrackAndDiscOrdinaryPassesThrough(t *testing.T) {
	disc, _, tag := trackAndDisc("07")
	assert.Empty(t, disc)
	assert.Equal(t, "07", tag)
}

func TestTrackAndDiscEmpty(t *testing.T) {
	disc, track, tag := trackAndDisc("")
	assert.Empty(t, disc)
	assert.Empty(t, track)
	assert.Empty(t, tag)
}
