// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package verify

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicaudio/relic/internal/indexer"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/source"
)

func baseSource() source.Source {
	return source.Source{
		Torrent: indexer.Torrent{Remastered: true, FileList: "01.flac{{{100}}}"},
		Group:   indexer.Group{CategoryName: "Music"},
		Existing: map[source.ExistingFormat]bool{},
	}
}

func TestAPIChecksFlagsEveryBooleanField(t *testing.T) {
	src := baseSource()
	src.Torrent.Scene = true
	src.Torrent.LossyMasterApproved = true
	src.Torrent.Trumpable = true
	src.Torrent.Remastered = false

	issues := apiChecks(src, Config{})
	kinds := kindsOf(issues)
	assert.Contains(t, kinds, KindScene)
	assert.Contains(t, kinds, KindLossyMaster)
	assert.Contains(t, kinds, KindTrumpable)
	assert.Contains(t, kinds, KindUnconfirmed)
}

func TestAPIChecksCategoryMismatch(t *testing.T) {
	src := baseSource()
	src.Group.CategoryName = "Audiobooks"
	issues := apiChecks(src, Config{})
	assert.Contains(t, kindsOf(issues), KindCategory)
}

func TestAPIChecksExcludedTags(t *testing.T) {
	src := baseSource()
	src.Group.Tags = []string{"live", "bootleg"}
	issues := apiChecks(src, Config{ExcludedTags: []string{"Bootleg"}})
	require.Contains(t, kindsOf(issues), KindExcluded)
}

func TestAPIChecksExistingFormatsExhausted(t *testing.T) {
	src := baseSource()
	src.Existing = map[source.ExistingFormat]bool{source.ExistingV0: true}
	issues := apiChecks(src, Config{Targets: []naming.Target{naming.TargetV0}})
	require.Contains(t, kindsOf(issues), KindExisting)
}

func TestAPIChecksCleanSourceHasNoIssues(t *testing.T) {
	src := baseSource()
	issues := apiChecks(src, Config{Targets: []naming.Target{naming.TargetV0}})
	assert.Empty(t, issues)
}

func TestFlacChecksMissingDirectory(t *testing.T) {
	src := baseSource()
	src.Directory = "/no/such/directory"
	issues, err := flacChecks(src, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, KindMissingDirectory, issues[0].Kind)
}

func TestFlacChecksNoFlacsInExistingDirectory(t *testing.T) {
	src := baseSource()
	src.Directory = t.TempDir()
	issues, err := flacChecks(src, nil)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, KindNoFlacs, issues[0].Kind)
}

func TestFlacChecksCountMismatch(t *testing.T) {
	src := baseSource()
	src.Directory = t.TempDir()
	src.Torrent.FileList = "01.flac{{{100}}}|||02.flac{{{100}}}"

	issues, err := flacChecks(src, []string{"/does/not/exist.flac"})
	require.NoError(t, err)

	kinds := kindsOf(issues)
	assert.Contains(t, kinds, KindFlacCount)
	assert.Contains(t, kinds, KindFlacError)
}

func TestHashCheckSkippedWhenDisabled(t *testing.T) {
	status, err := Collect(context.Background(), baseSource(), nil, Config{SkipHashCheck: true}, nil)
	require.NoError(t, err)
	_ = status
}

func TestHashCheckFetchesAndCaches(t *testing.T) {
	dir := t.TempDir()
	cachePath := dir + "/cached.torrent"
	fetched := false

	issue := hashCheck(context.Background(), HashCheck{
		TorrentPath: cachePath,
		ContentDir:  dir,
		Fetch: func(ctx context.Context) ([]byte, error) {
			fetched = true
			return []byte("d4:infod4:name4:teste6:lengthi1eee"), nil
		},
	})

	assert.True(t, fetched)
	_ = issue // the fake torrent-file tool isn't installed; we only assert the cache file was written
	_, statErr := os.Stat(cachePath)
	assert.NoError(t, statErr)
}

func kindsOf(issues []Issue) []Kind {
	kinds := make([]Kind, len(issues))
	for i, issue := range issues {
		kinds[i] = issue.Kind
	}
	return kinds
}
