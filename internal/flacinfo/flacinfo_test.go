// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package flacinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsResample(t *testing.T) {
	cases := []struct {
		name string
		info Info
		want bool
	}{
		{"cd quality", Info{Stream: StreamInfo{SampleRate: 44100, BitsPerSample: 16}}, false},
		{"hi-res rate", Info{Stream: StreamInfo{SampleRate: 96000, BitsPerSample: 16}}, true},
		{"hi-res depth", Info{Stream: StreamInfo{SampleRate: 44100, BitsPerSample: 24}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.info.NeedsResample())
		})
	}
}

func TestResampleTargetFamilies(t *testing.T) {
	got, err := Info{Stream: StreamInfo{SampleRate: 88200}}.ResampleTarget()
	require.NoError(t, err)
	assert.Equal(t, uint32(44100), got)

	got, err = Info{Stream: StreamInfo{SampleRate: 96000}}.ResampleTarget()
	require.NoError(t, err)
	assert.Equal(t, uint32(48000), got)
}

func TestResampleTargetUnsupported(t *testing.T) {
	_, err := Info{Path: "odd.flac", Stream: StreamInfo{SampleRate: 22050}}.ResampleTarget()
	require.Error(t, err)
	var target *ErrUnsupportedSampleRate
	require.ErrorAs(t, err, &target)
	assert.Equal(t, uint32(22050), target.Rate)
}

func TestDurationSecondsUnknownWhenSampleCountZero(t *testing.T) {
	_, ok := Info{Stream: StreamInfo{SampleRate: 44100}}.DurationSeconds()
	assert.False(t, ok)
}

func TestDurationSecondsRounds(t *testing.T) {
	seconds, ok := Info{Stream: StreamInfo{SampleRate: 44100, SampleCount: 44100 * 180}}.DurationSeconds()
	require.True(t, ok)
	assert.EqualValues(t, 180, seconds)
}

func TestAverageBitRate(t *testing.T) {
	info := Info{Stream: StreamInfo{
		SampleRate:    44100,
		SampleCount:   44100 * 100,
		BitsPerSample: 16,
		Channels:      2,
	}}
	bps, ok := info.AverageBitRate()
	require.True(t, ok)
	assert.EqualValues(t, 1411200, bps)
}

func TestVinylFixMatches(t *testing.T) {
	disc, track, ok := VinylFix("B3")
	require.True(t, ok)
	assert.Equal(t, 2, disc)
	assert.Equal(t, 3, track)
}

func TestVinylFixRejectsOrdinaryTrackNumbers(t *testing.T) {
	_, _, ok := VinylFix("07")
	assert.False(t, ok)
}

func TestMissingTags(t *testing.T) {
	info := Info{Tags: map[string]string{"artist": "x", "title": "y"}}
	assert.ElementsMatch(t, []string{"album", "tracknumber"}, info.MissingTags(false))
}

func TestMissingTagsRequiresComposerForClassical(t *testing.T) {
	info := Info{Tags: map[string]string{"artist": "x", "album": "y", "title": "z", "tracknumber": "1"}}
	assert.Equal(t, []string{"composer"}, info.MissingTags(true))
	assert.Empty(t, info.MissingTags(false))
}

func TestNormalizeTagName(t *testing.T) {
	assert.Equal(t, "tracknumber", normalizeTagName("TRACKNUMBER"))
	assert.Equal(t, "artist", normalizeTagName("Artist"))
}
