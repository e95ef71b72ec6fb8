// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package naming derives deterministic filesystem names (spectrogram
// directories, transcode directories and files, torrent files) from
// release metadata, and flags output paths too long for common
// filesystems.
//
// Built as small, pure, heavily-tested string transforms with no I/O.
package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/relicaudio/relic/pkg/pathutil"
)

// Metadata is the subset of a Source's derived fields that name
// construction needs.
type Metadata struct {
	Artist        string
	Album         string
	RemasterTitle string
	Year          int
	Media         string
}

// Target names the three transcode output formats a source may produce.
type Target string

const (
	TargetFLAC Target = "FLAC"
	Target320  Target = "320"
	TargetV0   Target = "V0"
)

// MaxPathLength is the default threshold (spec.md §4.4) above which a
// constructed output path is flagged as too long for common filesystems.
const MaxPathLength = 180

// SourceName builds "{artist} - {album}[ ({remaster_title})] [{year}]",
// omitting the parenthetical when RemasterTitle is empty.
func SourceName(m Metadata) string {
	var b strings.Builder
	b.WriteString(m.Artist)
	b.WriteString(" - ")
	b.WriteString(m.Album)
	if m.RemasterTitle != "" {
		fmt.Fprintf(&b, " (%s)", m.RemasterTitle)
	}
	fmt.Fprintf(&b, " [%d]", m.Year)
	return pathutil.Sanitize(b.String())
}

// SpectrogramDir builds "{source_name} [{media} SPECTROGRAMS]".
func SpectrogramDir(m Metadata) string {
	return pathutil.Sanitize(fmt.Sprintf("%s [%s SPECTROGRAMS]", SourceName(m), m.Media))
}

// TranscodeDir builds "{source_name} [{media} {target}]".
func TranscodeDir(m Metadata, target Target) string {
	return pathutil.Sanitize(fmt.Sprintf("%s [%s %s]", SourceName(m), m.Media, target))
}

// FlacFile is the per-track location information the transcode pipeline
// needs to place its output: the subdirectory (relative to the source
// root, empty for single-disc releases) and the file stem.
type FlacFile struct {
	SubDir string
	Stem   string
}

// TargetExt returns the file extension a Target's encoder produces.
func TargetExt(target Target) string {
	if target == TargetFLAC {
		return "flac"
	}
	return "mp3"
}

// TranscodeFile builds transcode_dir/flac.sub_dir/(flac.stem + "." + ext).
func TranscodeFile(m Metadata, target Target, f FlacFile) string {
	name := pathutil.Sanitize(f.Stem) + "." + TargetExt(target)
	if f.SubDir == "" {
		return filepath.Join(TranscodeDir(m, target), name)
	}
	return filepath.Join(TranscodeDir(m, target), pathutil.Sanitize(f.SubDir), name)
}

// TorrentFile builds output/(transcode_dir + ".torrent").
func TorrentFile(output string, m Metadata, target Target) string {
	return filepath.Join(output, TranscodeDir(m, target)+".torrent")
}

// CheckLength reports whether path exceeds MaxPathLength bytes.
func CheckLength(path string) (excess int, exceeds bool) {
	return pathutil.ExceedsLength(path, MaxPathLength)
}

// ShortenAlbum proposes an advisory shortening of an overly long album
// name by stripping a trailing parenthetical, provided at least 5
// non-blank characters remain. It returns ok=false when no trailing
// parenthetical exists or the remainder would be too short to be useful.
func ShortenAlbum(album string) (shortened string, ok bool) {
	trimmed := strings.TrimRightFunc(album, unicode.IsSpace)
	if !strings.HasSuffix(trimmed, ")") {
		return "", false
	}
	open := strings.LastIndex(trimmed, "(")
	if open < 0 {
		return "", false
	}
	remainder := strings.TrimRightFunc(trimmed[:open], unicode.IsSpace)
	if nonBlankCount(remainder) < 5 {
		return "", false
	}
	return remainder, true
}

func nonBlankCount(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
