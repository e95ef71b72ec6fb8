// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package transcode

import (
	"fmt"
	"strconv"

	"github.com/oshokin/id3v2/v2"

	"github.com/relicaudio/relic/internal/flacinfo"
)

// WriteMP3Tags reads vorbis-style tags from a source FLAC's inspected
// Info and writes their id3v2 equivalents onto the MP3 at mp3Path,
// applying the vinyl track fix to the track-number field first.
//
// Grounded on the zvuk-grabber tag processor's id3v2.Open(Parse:false) +
// addMP3Tags + Save shape, generalized from streaming-service metadata
// to FLAC vorbis comments.
func WriteMP3Tags(info flacinfo.Info, mp3Path string) error {
	tag, err := id3v2.Open(mp3Path, id3v2.Options{Parse: false})
	if err != nil {
		return fmt.Errorf("transcode: open %s for tagging: %w", mp3Path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetArtist(info.Tags["artist"])
	tag.SetAlbum(info.Tags["album"])
	tag.SetTitle(info.Tags["title"])
	if year := info.Tags["date"]; year != "" {
		tag.SetYear(year)
	}
	if genre := info.Tags["genre"]; genre != "" {
		tag.SetGenre(genre)
	}
	if composer := info.Tags["composer"]; composer != "" {
		tag.AddTextFrame(tag.CommonID("Composer"), tag.DefaultEncoding(), composer)
	}

	disc, track, trackTag := trackAndDisc(info.Tags["tracknumber"])
	if trackTag != "" {
		tag.AddTextFrame(tag.CommonID("Track number/Position in set"), tag.DefaultEncoding(), trackTag)
	}
	if disc != "" {
		tag.AddTextFrame(tag.CommonID("Part of a set"), tag.DefaultEncoding(), disc)
	}

	return tag.Save()
}

// trackAndDisc applies the vinyl track fix to a raw TRACKNUMBER value:
// "B3" becomes disc "2", track "3"; anything else passes the track value
// through unchanged with no disc tag.
func trackAndDisc(raw string) (disc, track, trackTag string) {
	if raw == "" {
		return "", "", ""
	}
	if d, tr, ok := flacinfo.VinylFix(raw); ok {
		return strconv.Itoa(d), strconv.Itoa(tr), strconv.Itoa(tr)
	}
	return "", "", raw
}
