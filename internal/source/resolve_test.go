// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicaudio/relic/internal/indexer"
)

func TestParseInputNumericID(t *testing.T) {
	in, err := ParseInput("12345")
	require.NoError(t, err)
	assert.Equal(t, InputTorrentID, in.Kind)
	assert.EqualValues(t, 12345, in.TorrentID)
}

func TestParseInputURLWithGroup(t *testing.T) {
	in, err := ParseInput("https://indexer.example/torrents.php?id=10&torrentid=20#torrent20")
	require.NoError(t, err)
	assert.Equal(t, InputURL, in.Kind)
	assert.EqualValues(t, 10, in.GroupID)
	assert.EqualValues(t, 20, in.TorrentID)
}

func TestParseInputURLTorrentOnly(t *testing.T) {
	in, err := ParseInput("https://indexer.example/torrents.php?torrentid=20")
	require.NoError(t, err)
	assert.Equal(t, InputURL, in.Kind)
	assert.Zero(t, in.GroupID)
	assert.EqualValues(t, 20, in.TorrentID)
}

func TestParseInputExistingTorrentFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "release.torrent")
	require.NoError(t, os.WriteFile(path, []byte("d"), 0o644))

	in, err := ParseInput(path)
	require.NoError(t, err)
	assert.Equal(t, InputTorrentFile, in.Kind)
	assert.Equal(t, path, in.Path)
}

func TestParseInputMissingTorrentFileErrors(t *testing.T) {
	_, err := ParseInput("/no/such/file.torrent")
	assert.Error(t, err)
}

func TestParseInputRejectsGarbage(t *testing.T) {
	_, err := ParseInput("not a valid input at all")
	assert.Error(t, err)
}

type fakeClient struct {
	torrent indexer.GetTorrentResponse
	group   indexer.GetTorrentGroupResponse
}

func (f *fakeClient) GetTorrent(ctx context.Context, id int64) (indexer.GetTorrentResponse, error) {
	return f.torrent, nil
}

func (f *fakeClient) GetTorrentGroup(ctx context.Context, id int64) (indexer.GetTorrentGroupResponse, error) {
	return f.group, nil
}

func TestResolveAssemblesSource(t *testing.T) {
	client := &fakeClient{
		torrent: indexer.GetTorrentResponse{
			Torrent: indexer.Torrent{ID: 20, GroupID: 10, Media: "CD", Encoding: "Lossless", FilePath: "Artist - Album"},
			Group:   indexer.Group{ID: 10, Name: "Album", Year: 2000},
		},
		group: indexer.GetTorrentGroupResponse{
			Group:    indexer.Group{ID: 10, Name: "Album", Year: 2000, MusicInfo: &indexer.MusicInfo{Artists: []indexer.Artist{{Name: "Artist"}}}},
			Torrents: []indexer.Torrent{{ID: 20, GroupID: 10, Media: "CD", Format: "FLAC", Encoding: "Lossless"}},
		},
	}

	src, err := Resolve(context.Background(), client, "EXAMPLE", "/content", Input{Kind: InputTorrentID, TorrentID: 20})
	require.NoError(t, err)
	assert.Equal(t, "Artist", src.Metadata.Artist)
	assert.Equal(t, "/content/Artist - Album", src.Directory)
	assert.Equal(t, FormatFLAC, src.Format)
}

func TestResolveDetectsGroupMismatch(t *testing.T) {
	client := &fakeClient{
		torrent: indexer.GetTorrentResponse{
			Torrent: indexer.Torrent{ID: 20, GroupID: 10},
			Group:   indexer.Group{ID: 10},
		},
		group: indexer.GetTorrentGroupResponse{
			Group: indexer.Group{ID: 999},
		},
	}

	_, err := Resolve(context.Background(), client, "EXAMPLE", "/content", Input{Kind: InputTorrentID, TorrentID: 20})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGroupMismatch)
}
