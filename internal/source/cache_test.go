// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicaudio/relic/internal/indexer"
)

type countingClient struct {
	fakeClient
	torrentCalls int
	groupCalls   int
}

func (c *countingClient) GetTorrent(ctx context.Context, id int64) (indexer.GetTorrentResponse, error) {
	c.torrentCalls++
	return c.fakeClient.GetTorrent(ctx, id)
}

func (c *countingClient) GetTorrentGroup(ctx context.Context, id int64) (indexer.GetTorrentGroupResponse, error) {
	c.groupCalls++
	return c.fakeClient.GetTorrentGroup(ctx, id)
}

func TestCachingClientServesSecondLookupFromCache(t *testing.T) {
	inner := &countingClient{fakeClient: fakeClient{
		torrent: indexer.GetTorrentResponse{Torrent: indexer.Torrent{ID: 20}},
		group:   indexer.GetTorrentGroupResponse{Group: indexer.Group{ID: 10}},
	}}

	cached, err := NewCachingClient(inner, t.TempDir())
	require.NoError(t, err)

	_, err = cached.GetTorrent(context.Background(), 20)
	require.NoError(t, err)
	_, err = cached.GetTorrent(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.torrentCalls)

	_, err = cached.GetTorrentGroup(context.Background(), 10)
	require.NoError(t, err)
	_, err = cached.GetTorrentGroup(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.groupCalls)
}

func TestCachingClientDistinctIDsDoNotCollide(t *testing.T) {
	inner := &countingClient{fakeClient: fakeClient{
		torrent: indexer.GetTorrentResponse{Torrent: indexer.Torrent{ID: 20}},
	}}
	cached, err := NewCachingClient(inner, t.TempDir())
	require.NoError(t, err)

	_, err = cached.GetTorrent(context.Background(), 20)
	require.NoError(t, err)
	_, err = cached.GetTorrent(context.Background(), 21)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.torrentCalls)
}
