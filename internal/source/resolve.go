// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package source

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/relicaudio/relic/internal/indexer"
	"github.com/relicaudio/relic/internal/torrentfile"
)

// InputKind tags the shape of a user-supplied source identifier.
type InputKind int

const (
	InputTorrentID InputKind = iota
	InputURL
	InputTorrentFile
)

// Input is the parsed form of whatever a user passed as a source
// identifier: a bare numeric id, an indexer URL, or a local .torrent
// file path.
type Input struct {
	Kind      InputKind
	TorrentID int64
	GroupID   int64 // only set when the URL shape carried a group id
	Path      string
}

var (
	urlWithGroup    = regexp.MustCompile(`torrents\.php\?id=(\d+)&torrentid=(\d+)`)
	urlTorrentOnly  = regexp.MustCompile(`torrents\.php\?torrentid=(\d+)`)
)

// ParseInput classifies s per spec.md §4.9's input taxonomy.
func ParseInput(s string) (Input, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Input{Kind: InputTorrentID, TorrentID: id}, nil
	}

	if m := urlWithGroup.FindStringSubmatch(s); m != nil {
		groupID, _ := strconv.ParseInt(m[1], 10, 64)
		torrentID, _ := strconv.ParseInt(m[2], 10, 64)
		return Input{Kind: InputURL, GroupID: groupID, TorrentID: torrentID}, nil
	}
	if m := urlTorrentOnly.FindStringSubmatch(s); m != nil {
		torrentID, _ := strconv.ParseInt(m[1], 10, 64)
		return Input{Kind: InputURL, TorrentID: torrentID}, nil
	}

	if strings.HasSuffix(s, ".torrent") {
		if _, err := os.Stat(s); err == nil {
			return Input{Kind: InputTorrentFile, Path: s}, nil
		}
		return Input{}, fmt.Errorf("source: %s looks like a .torrent path but does not exist", s)
	}

	return Input{}, fmt.Errorf("source: %q is not a torrent id, indexer URL, or existing .torrent file", s)
}

// Client is the subset of indexer.Client the resolver needs, so tests
// can substitute a fake.
type Client interface {
	GetTorrent(ctx context.Context, id int64) (indexer.GetTorrentResponse, error)
	GetTorrentGroup(ctx context.Context, id int64) (indexer.GetTorrentGroupResponse, error)
}

// ErrGroupMismatch reports that the group the indexer returned disagrees
// with the torrent's own group id, or with the group id carried by a URL
// input (including the URL found in a .torrent file's comment).
var ErrGroupMismatch = fmt.Errorf("source: group id mismatch between torrent and group responses")

// ErrWrongIndexer reports that a .torrent file's embedded source tag
// does not match the indexer this resolver is configured for.
type ErrWrongIndexer struct {
	Want, Got string
}

func (e *ErrWrongIndexer) Error() string {
	return fmt.Sprintf("source: torrent file source %q does not match configured indexer %q", e.Got, e.Want)
}

// resolveInput turns a .torrent file input into a URL input by
// inspecting its JSON summary: verifying the source tag, then
// extracting the comment field (the indexer permalink) and recursing.
func resolveInput(ctx context.Context, in Input, indexerName string) (Input, error) {
	if in.Kind != InputTorrentFile {
		return in, nil
	}

	summary, err := torrentfile.Show(ctx, in.Path)
	if err != nil {
		return Input{}, fmt.Errorf("source: show %s: %w", in.Path, err)
	}
	if !strings.EqualFold(summary.Source, indexerName) {
		return Input{}, &ErrWrongIndexer{Want: indexerName, Got: summary.Source}
	}

	return ParseInput(summary.Comment)
}

// contentRoot is supplied by the caller (the configured content
// directory) rather than derived — it is an environment fact, not
// something the indexer reports.
func Resolve(ctx context.Context, client Client, indexerName, contentRoot string, in Input) (Source, error) {
	resolved, err := resolveInput(ctx, in, indexerName)
	if err != nil {
		return Source{}, err
	}

	torrentID := resolved.TorrentID
	torrentResp, err := client.GetTorrent(ctx, torrentID)
	if err != nil {
		return Source{}, fmt.Errorf("source: get_torrent %d: %w", torrentID, err)
	}

	groupResp, err := client.GetTorrentGroup(ctx, torrentResp.Torrent.GroupID)
	if err != nil {
		return Source{}, fmt.Errorf("source: get_torrent_group %d: %w", torrentResp.Torrent.GroupID, err)
	}

	if resolved.GroupID != 0 && resolved.GroupID != groupResp.Group.ID {
		return Source{}, ErrGroupMismatch
	}
	if torrentResp.Torrent.GroupID != groupResp.Group.ID {
		return Source{}, ErrGroupMismatch
	}

	format := FormatFLAC
	if strings.Contains(torrentResp.Torrent.Encoding, "24bit") {
		format = FormatFLAC24
	}

	return Source{
		Torrent:   torrentResp.Torrent,
		Group:     groupResp.Group,
		Format:    format,
		Metadata:  deriveMetadata(torrentResp.Torrent, groupResp.Group),
		Directory: deriveDirectory(contentRoot, torrentResp.Torrent),
		Existing:  computeExisting(torrentResp.Torrent, groupResp.Torrents),
	}, nil
}
