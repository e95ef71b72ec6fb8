// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package flacinfo inspects FLAC files: stream properties, derived
// audio-quality predicates, and tag verification including the "vinyl
// track fix" disc/track rewrite.
//
// Grounded on github.com/pchchv/flac (this repo's chosen FLAC decoder;
// see DESIGN.md), reading only metadata blocks — never decoding audio
// frames, since every derived fact this system needs (sample rate, bit
// depth, channel count, sample count, tags) lives in StreamInfo and
// VorbisComment.
package flacinfo

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pchchv/flac"
	"github.com/pchchv/flac/meta"
)

// StreamInfo is the subset of a FLAC file's mandatory metadata block
// this system reasons about.
type StreamInfo struct {
	SampleRate    uint32
	BitsPerSample uint8
	Channels      uint8
	SampleCount   uint64
}

// Info is everything Inspect extracts from one FLAC file.
type Info struct {
	Path   string
	Stream StreamInfo
	Tags   map[string]string // lower-cased vorbis field names to values
}

// Inspect opens path, parses its signature, StreamInfo block, and
// VorbisComment block (if present), and returns the combined Info.
func Inspect(path string) (Info, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("flacinfo: parse %s: %w", path, err)
	}
	defer stream.Close()

	info := Info{
		Path: path,
		Stream: StreamInfo{
			SampleRate:    stream.Info.SampleRate,
			BitsPerSample: stream.Info.BitsPerSample,
			Channels:      stream.Info.NChannels,
			SampleCount:   stream.Info.NSamples,
		},
		Tags: map[string]string{},
	}

	for _, block := range stream.Blocks {
		vc, ok := block.Body.(*meta.VorbisComment)
		if !ok {
			continue
		}
		for _, tag := range vc.Tags {
			info.Tags[normalizeTagName(tag[0])] = tag[1]
		}
	}

	return info, nil
}

func normalizeTagName(name string) string {
	b := []byte(name)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// NeedsResample reports whether a FLAC stream exceeds CD-quality bounds
// and must be downsampled before a lossy transcode.
func (i Info) NeedsResample() bool {
	return i.Stream.SampleRate > 48000 || i.Stream.BitsPerSample > 16
}

// ErrUnsupportedSampleRate is wrapped into the returned error when a
// sample rate is neither a multiple of 44100 nor of 48000.
type ErrUnsupportedSampleRate struct {
	Path string
	Rate uint32
}

func (e *ErrUnsupportedSampleRate) Error() string {
	return fmt.Sprintf("flacinfo: %s: unsupported sample rate %d Hz", e.Path, e.Rate)
}

// ResampleTarget picks the resample target rate: 44100 for any multiple
// of the CD-audio family, 48000 for the studio family, or an error
// identifying the unsupported rate otherwise.
func (i Info) ResampleTarget() (uint32, error) {
	switch {
	case i.Stream.SampleRate%44100 == 0:
		return 44100, nil
	case i.Stream.SampleRate%48000 == 0:
		return 48000, nil
	default:
		return 0, &ErrUnsupportedSampleRate{Path: i.Path, Rate: i.Stream.SampleRate}
	}
}

// DurationSeconds rounds samples/sample_rate. ok is false when the
// sample count is unknown (zero).
func (i Info) DurationSeconds() (seconds uint64, ok bool) {
	if i.Stream.SampleCount == 0 || i.Stream.SampleRate == 0 {
		return 0, false
	}
	return roundDiv(i.Stream.SampleCount, uint64(i.Stream.SampleRate)), true
}

// AverageBitRate computes total_bits/duration_seconds, rounded, with
// total_bits derived from the decoded PCM stream (sample count * bit
// depth * channels), not the compressed file's on-disk size. ok is
// false when duration is unknown.
func (i Info) AverageBitRate() (bps uint64, ok bool) {
	duration, ok := i.DurationSeconds()
	if !ok || duration == 0 {
		return 0, false
	}
	totalBits := i.Stream.SampleCount * uint64(i.Stream.BitsPerSample) * uint64(i.Stream.Channels)
	return roundDiv(totalBits, duration), true
}

func roundDiv(a, b uint64) uint64 {
	return (a + b/2) / b
}

var vinylTrackPattern = regexp.MustCompile(`^([A-Z])(\d+)$`)

// VinylFix rewrites a track-number tag formatted as a vinyl side letter
// plus track number (e.g. "B3") into separate disc and track values.
// disc is 1-indexed (A=1..Z=26). ok is false when the tag does not match
// the vinyl pattern, in which case the original track number should be
// used unchanged.
func VinylFix(trackNumber string) (disc int, track int, ok bool) {
	m := vinylTrackPattern.FindStringSubmatch(trackNumber)
	if m == nil {
		return 0, 0, false
	}
	disc = int(m[1][0]-'A') + 1
	track, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return disc, track, true
}

// mandatoryTags are always required; composer is added conditionally
// when the release group is tagged "classical".
var mandatoryTags = []string{"artist", "album", "title", "tracknumber"}

// MissingTags enumerates mandatory tag names absent from i.Tags.
// classical adds "composer" to the requirement set.
func (i Info) MissingTags(classical bool) []string {
	required := mandatoryTags
	if classical {
		required = append(append([]string{}, mandatoryTags...), "composer")
	}
	var missing []string
	for _, tag := range required {
		if _, ok := i.Tags[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	return missing
}
