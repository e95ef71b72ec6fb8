// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package queue

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsEmptyQueue(t *testing.T) {
	q, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Zero(t, q.Len())
}

func TestSaveAndLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.yaml")

	q := New()
	require.True(t, q.insert(QueueItem{Name: "Artist - Album", Hash: "ABCDEF", Indexer: "example"}))
	require.NoError(t, q.Save(path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	item, ok := reloaded.Get("abcdef")
	require.True(t, ok)
	assert.Equal(t, "Artist - Album", item.Name)
}

func TestInsertRejectsDuplicateHash(t *testing.T) {
	q := New()
	assert.True(t, q.insert(QueueItem{Name: "first", Hash: "AAAA"}))
	assert.False(t, q.insert(QueueItem{Name: "second", Hash: "aaaa"}))
	assert.Equal(t, 1, q.Len())
}

func TestInsertNewTorrentFilesSkipsUnparseableEntries(t *testing.T) {
	q := New()
	paths := []string{"one.torrent", "two.torrent", "three.torrent"}

	show := func(path string) (TorrentSummary, error) {
		switch path {
		case "one.torrent":
			return TorrentSummary{Name: "A", InfoHash: "1111", Source: "EXAMPLE", Comment: "https://example/torrents.php?id=1&torrentid=2"}, nil
		case "two.torrent":
			return TorrentSummary{Name: "B", InfoHash: "2222", Source: ""}, nil // no indexer
		default:
			return TorrentSummary{Name: "C", InfoHash: "3333", Source: "EXAMPLE", Comment: "not a url"}, nil
		}
	}
	parseID := func(comment string) (int64, bool) {
		if comment == "https://example/torrents.php?id=1&torrentid=2" {
			return 2, true
		}
		return 0, false
	}

	inserted, err := q.InsertNewTorrentFiles(paths, show, parseID)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, q.Len())
}

func TestGetUnprocessedFiltersAndSorts(t *testing.T) {
	q := New()
	q.insert(QueueItem{Name: "Z Album", Hash: "1", Indexer: "example"})
	q.insert(QueueItem{Name: "A Album", Hash: "2", Indexer: "example"})
	q.insert(QueueItem{Name: "Skipped", Hash: "3", Indexer: "example", Skipped: "excluded tag"})
	q.insert(QueueItem{Name: "Uploaded", Hash: "4", Indexer: "example", Uploaded: &StageStatus{Success: true}})
	q.insert(QueueItem{Name: "Other Indexer", Hash: "5", Indexer: "other"})

	got := q.GetUnprocessed("EXAMPLE", true)
	require.Len(t, got, 2)
	assert.Equal(t, "A Album", got[0].Name)
	assert.Equal(t, "Z Album", got[1].Name)
}

func TestGetUnprocessedExcludesTranscodedUnlessSkippingUpload(t *testing.T) {
	q := New()
	q.insert(QueueItem{Name: "Transcoded", Hash: "1", Indexer: "example", Transcoded: &StageStatus{Success: true}})

	assert.Empty(t, q.GetUnprocessed("example", false))
	assert.Len(t, q.GetUnprocessed("example", true), 1)
}

func TestStageSetters(t *testing.T) {
	q := New()
	q.insert(QueueItem{Name: "Item", Hash: "ABCD"})

	q.SetVerified("abcd", StageStatus{Success: true})
	q.SetSpectrogram("abcd", StageStatus{Success: true})
	q.SetTranscoded("abcd", StageStatus{Success: true})
	q.SetUploaded("abcd", StageStatus{Success: false, Error: "rejected"})

	item, ok := q.Get("abcd")
	require.True(t, ok)
	require.NotNil(t, item.Verified)
	require.NotNil(t, item.Spectrogram)
	require.NotNil(t, item.Transcoded)
	require.NotNil(t, item.Uploaded)
	assert.False(t, item.Uploaded.Success)
	assert.Equal(t, "rejected", item.Uploaded.Error)
}

func TestSetSkippedAndFailed(t *testing.T) {
	q := New()
	q.insert(QueueItem{Name: "Item", Hash: "ABCD"})

	q.SetSkipped("abcd", "duplicate")
	item, _ := q.Get("abcd")
	assert.Equal(t, "duplicate", item.Skipped)

	q.SetFailed("abcd", "transcode error")
	item, _ = q.Get("abcd")
	assert.Equal(t, "transcode error", item.Failed)
}
