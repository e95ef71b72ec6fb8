// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package source resolves a user-provided input (numeric id, indexer
// URL, or local .torrent path) into a fully assembled release: its
// indexer torrent/group records, derived metadata, content directory,
// and the set of encodings that already exist for the release.
//
// Grounded on other_examples' classical-tagger torrent domain model
// (artist-count-driven naming, directory derivation) and on the
// teacher's gazellemusic types (Torrent/Group shape), now served by
// internal/indexer instead of a read-only cross-seed matcher.
package source

import (
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/relicaudio/relic/internal/indexer"
	"github.com/relicaudio/relic/internal/naming"
)

// Format is the lossless encoding of a resolved source.
type Format string

const (
	FormatFLAC   Format = "FLAC"
	FormatFLAC24 Format = "FLAC 24bit"
)

// ExistingFormat is one of the encodings spec.md's Existing-formats set
// ranges over: the lossless originals plus the two lossy targets.
type ExistingFormat string

const (
	ExistingFLAC24 ExistingFormat = "FLAC24"
	ExistingFLAC   ExistingFormat = "FLAC"
	Existing320    ExistingFormat = "320"
	ExistingV0     ExistingFormat = "V0"
)

// Source is the resolver's immutable output: everything downstream
// components (verification, transcoding, upload) need about one
// release.
type Source struct {
	Torrent   indexer.Torrent
	Group     indexer.Group
	Format    Format
	Metadata  naming.Metadata
	Directory string
	Existing  map[ExistingFormat]bool
}

// deriveArtist implements spec.md §3's artist count rule: 0 credited
// artists → "Unknown Artist", 1 → that artist's name, 2+ → "Various
// Artists".
func deriveArtist(group indexer.Group) string {
	if group.MusicInfo == nil || len(group.MusicInfo.Artists) == 0 {
		return "Unknown Artist"
	}
	if len(group.MusicInfo.Artists) == 1 {
		return group.MusicInfo.Artists[0].Name
	}
	return "Various Artists"
}

// deriveMetadata builds the naming.Metadata a Source uses for every
// path derived from it.
func deriveMetadata(t indexer.Torrent, g indexer.Group) naming.Metadata {
	return naming.Metadata{
		Artist:        deriveArtist(g),
		Album:         g.Name,
		RemasterTitle: t.RemasterTitle,
		Year:          resolveYear(t, g),
		Media:         t.Media,
	}
}

func resolveYear(t indexer.Torrent, g indexer.Group) int {
	if t.Remastered && t.RemasterYear != 0 {
		return t.RemasterYear
	}
	return g.Year
}

// deriveDirectory joins a content root with the torrent's file_path,
// HTML-entity-decoding it first (the indexer escapes path components in
// its JSON responses).
func deriveDirectory(contentRoot string, t indexer.Torrent) string {
	return filepath.Join(contentRoot, html.UnescapeString(t.FilePath))
}

// FileEntry is one parsed entry from a torrent's file_list field.
type FileEntry struct {
	Name string
	Size int64
}

var fileListEntry = regexp.MustCompile(`([^|][^{]*)\{\{\{(\d+)\}\}\}`)

// ParseFileList parses the delimited file_list grammar: one-or-more
// "<name>{{{<size>}}}" entries joined by "|||".
func ParseFileList(fileList string) []FileEntry {
	matches := fileListEntry.FindAllStringSubmatch(fileList, -1)
	entries := make([]FileEntry, 0, len(matches))
	for _, m := range matches {
		size := int64(0)
		for _, c := range m[2] {
			size = size*10 + int64(c-'0')
		}
		entries = append(entries, FileEntry{Name: m[1], Size: size})
	}
	return entries
}

// FlacEntries filters a parsed file list down to entries whose name
// ends in the case-sensitive literal suffix ".flac".
func FlacEntries(fileList string) []FileEntry {
	all := ParseFileList(fileList)
	flacs := all[:0]
	for _, e := range all {
		if strings.HasSuffix(e.Name, ".flac") {
			flacs = append(flacs, e)
		}
	}
	return flacs
}

// classify maps a sibling torrent record to the ExistingFormat bucket
// it occupies, or "" if it doesn't correspond to one of the four
// tracked encodings.
func classify(t indexer.Torrent) ExistingFormat {
	switch {
	case t.Format == "FLAC" && strings.Contains(t.Encoding, "24bit"):
		return ExistingFLAC24
	case t.Format == "FLAC":
		return ExistingFLAC
	case t.Format == "MP3" && strings.Contains(t.Encoding, "320"):
		return Existing320
	case t.Format == "MP3" && strings.Contains(t.Encoding, "V0"):
		return ExistingV0
	default:
		return ""
	}
}

var catalogueDigitRun = regexp.MustCompile(`\d+`)

// normalizeCatalogue strips leading zeros from each digit run in a
// catalogue number, so "007" and "7" (or "CAT-007" and "CAT-7") compare
// equal per spec.md §3's zero-pad-insensitive rule.
func normalizeCatalogue(s string) string {
	return catalogueDigitRun.ReplaceAllStringFunc(s, func(d string) string {
		trimmed := strings.TrimLeft(d, "0")
		if trimmed == "" {
			return "0"
		}
		return trimmed
	})
}

// computeExisting scans a group's sibling torrents and returns every
// ExistingFormat already published for the same (remaster_title,
// remaster_record_label, media, catalogue#) combination as target.
func computeExisting(target indexer.Torrent, siblings []indexer.Torrent) map[ExistingFormat]bool {
	existing := make(map[ExistingFormat]bool, 4)
	targetCat := normalizeCatalogue(target.RemasterCatalogueNumber)
	for _, sibling := range siblings {
		if sibling.RemasterTitle != target.RemasterTitle ||
			sibling.RemasterRecordLabel != target.RemasterRecordLabel ||
			sibling.Media != target.Media ||
			normalizeCatalogue(sibling.RemasterCatalogueNumber) != targetCat {
			continue
		}
		if bucket := classify(sibling); bucket != "" {
			existing[bucket] = true
		}
	}
	return existing
}
