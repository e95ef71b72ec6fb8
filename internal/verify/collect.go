// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/relicaudio/relic/internal/flacinfo"
	"github.com/relicaudio/relic/internal/indexer"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/internal/torrentfile"
)

// Config parameterizes one verification pass.
type Config struct {
	ExcludedTags  []string
	Targets       []naming.Target
	SkipHashCheck bool
}

// HashCheck supplies the two external dependencies the hash-check step
// needs: a way to obtain the source's own torrent bytes (cached to disk
// on first fetch) and the directory those bytes should verify against.
type HashCheck struct {
	TorrentPath string // cached .torrent path; fetched into this path if absent
	ContentDir  string
	Fetch       func(ctx context.Context) ([]byte, error)
}

// Status is the outcome of one verification pass.
type Status struct {
	Verified    bool
	Issues      []Issue
	CompletedAt time.Time
}

// Now is a seam so CompletedAt can be made deterministic in tests.
var Now = time.Now

// Collect runs every check in spec.md §4.10's fixed order and returns
// the accumulated issue list. A Source is verified iff the list is
// empty.
func Collect(ctx context.Context, src source.Source, flacPaths []string, cfg Config, hash *HashCheck) (Status, error) {
	var issues []Issue

	issues = append(issues, apiChecks(src, cfg)...)
	flacIssues, err := flacChecks(src, flacPaths)
	if err != nil {
		return Status{}, err
	}
	issues = append(issues, flacIssues...)

	if !cfg.SkipHashCheck && hash != nil {
		if issue := hashCheck(ctx, *hash); issue != nil {
			issues = append(issues, *issue)
		}
	}

	return Status{Verified: len(issues) == 0, Issues: issues, CompletedAt: Now()}, nil
}

func apiChecks(src source.Source, cfg Config) []Issue {
	var issues []Issue

	if src.Group.CategoryName != "Music" {
		issues = append(issues, Issue{Kind: KindCategory})
	}
	if src.Torrent.Scene {
		issues = append(issues, Issue{Kind: KindScene})
	}
	if src.Torrent.LossyMasterApproved {
		issues = append(issues, Issue{Kind: KindLossyMaster})
	}
	if src.Torrent.LossyWebApproved {
		issues = append(issues, Issue{Kind: KindLossyWeb})
	}
	if src.Torrent.Trumpable {
		issues = append(issues, Issue{Kind: KindTrumpable})
	}
	if !src.Torrent.Remastered {
		issues = append(issues, Issue{Kind: KindUnconfirmed})
	}

	var excluded []string
	for _, tag := range src.Group.Tags {
		for _, configured := range cfg.ExcludedTags {
			if strings.EqualFold(tag, configured) {
				excluded = append(excluded, tag)
			}
		}
	}
	if len(excluded) > 0 {
		issues = append(issues, Issue{Kind: KindExcluded, Tags: excluded})
	}

	var remaining []source.ExistingFormat
	for _, target := range cfg.Targets {
		bucket := TargetExistingFormat(target)
		if !src.Existing[bucket] {
			remaining = append(remaining, bucket)
		}
	}
	if len(cfg.Targets) > 0 && len(remaining) == 0 {
		var all []source.ExistingFormat
		for _, target := range cfg.Targets {
			all = append(all, TargetExistingFormat(target))
		}
		issues = append(issues, Issue{Kind: KindExisting, Formats: all})
	}

	return issues
}

// isClassical reports whether a release group is tagged "classical",
// which adds "composer" to flacinfo's mandatory tag set.
func isClassical(src source.Source) bool {
	for _, tag := range src.Group.Tags {
		if strings.EqualFold(tag, "classical") {
			return true
		}
	}
	return false
}

func flacChecks(src source.Source, flacPaths []string) ([]Issue, error) {
	var issues []Issue

	fi, statErr := os.Stat(src.Directory)
	if statErr != nil || !fi.IsDir() {
		return []Issue{{Kind: KindMissingDirectory, Path: src.Directory}}, nil
	}

	if len(flacPaths) == 0 {
		return []Issue{{Kind: KindNoFlacs}}, nil
	}

	expected := len(source.FlacEntries(src.Torrent.FileList))
	if expected != len(flacPaths) {
		issues = append(issues, Issue{Kind: KindFlacCount, Expected: expected, Actual: len(flacPaths)})
	}

	classical := isClassical(src)
	for _, path := range flacPaths {
		if excess, exceeds := naming.CheckLength(path); exceeds {
			issues = append(issues, Issue{Kind: KindLength, Path: path, Excess: excess})
		}

		info, err := flacinfo.Inspect(path)
		if err != nil {
			issues = append(issues, Issue{Kind: KindFlacError, Path: path, Details: err.Error()})
			continue
		}

		if missing := info.MissingTags(classical); len(missing) > 0 {
			issues = append(issues, Issue{Kind: KindMissingTags, Path: path, Tags: missing})
		}
		if _, err := info.ResampleTarget(); err != nil {
			issues = append(issues, Issue{Kind: KindSampleRate, Path: path, Details: err.Error()})
		}
		if info.Stream.Channels > 2 {
			issues = append(issues, Issue{Kind: KindChannels, Path: path, Details: fmt.Sprintf("%d channels", info.Stream.Channels)})
		}
	}

	return issues, nil
}

func hashCheck(ctx context.Context, hash HashCheck) *Issue {
	if _, err := os.Stat(hash.TorrentPath); err != nil {
		bytes, err := hash.Fetch(ctx)
		if err != nil {
			return &Issue{Kind: KindError, Domain: "torrent download", Details: err.Error()}
		}
		if err := indexer.SniffTorrentBytes(bytes); err != nil {
			return &Issue{Kind: KindError, Domain: "torrent download", Details: err.Error()}
		}
		if err := os.MkdirAll(filepath.Dir(hash.TorrentPath), 0o755); err != nil {
			return &Issue{Kind: KindError, Domain: "torrent cache", Details: err.Error()}
		}
		if err := os.WriteFile(hash.TorrentPath, bytes, 0o644); err != nil {
			return &Issue{Kind: KindError, Domain: "torrent cache", Details: err.Error()}
		}
	}

	if err := torrentfile.Verify(ctx, hash.TorrentPath, hash.ContentDir); err != nil {
		return &Issue{Kind: KindImdl, Details: err.Error()}
	}
	return nil
}
