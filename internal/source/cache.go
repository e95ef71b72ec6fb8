// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package source

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/relicaudio/relic/internal/bytehash"
	"github.com/relicaudio/relic/internal/chunktable"
	"github.com/relicaudio/relic/internal/indexer"
)

// CachingClient wraps a Client with an on-disk, content-addressed cache
// of get_torrent/get_torrent_group responses, so re-resolving the same
// release across repeated batch runs costs no additional requests
// against the indexer's rate limit (spec.md §4.12).
//
// Grounded on internal/chunktable's sharded get/set, keyed by the
// torrent or group id encoded as a bytehash.Hash.
type CachingClient struct {
	Client
	torrents *chunktable.Table[indexer.GetTorrentResponse]
	groups   *chunktable.Table[indexer.GetTorrentGroupResponse]
}

// NewCachingClient opens (creating if needed) the two chunk tables under
// cacheDir/torrents and cacheDir/groups, wrapping client.
func NewCachingClient(client Client, cacheDir string) (*CachingClient, error) {
	torrents, err := chunktable.Open[indexer.GetTorrentResponse](cacheDir+"/torrents", 1, "yaml")
	if err != nil {
		return nil, fmt.Errorf("source: open torrent cache: %w", err)
	}
	groups, err := chunktable.Open[indexer.GetTorrentGroupResponse](cacheDir+"/groups", 1, "yaml")
	if err != nil {
		return nil, fmt.Errorf("source: open group cache: %w", err)
	}
	return &CachingClient{Client: client, torrents: torrents, groups: groups}, nil
}

func idHash(id int64) bytehash.Hash {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return bytehash.New(b[:])
}

// GetTorrent serves id from cache when present, otherwise fetches and
// populates the cache.
func (c *CachingClient) GetTorrent(ctx context.Context, id int64) (indexer.GetTorrentResponse, error) {
	key := idHash(id)
	if cached, ok, err := c.torrents.Get(key); err == nil && ok {
		return cached, nil
	}

	resp, err := c.Client.GetTorrent(ctx, id)
	if err != nil {
		return indexer.GetTorrentResponse{}, err
	}
	_ = c.torrents.Set(ctx, key, resp)
	return resp, nil
}

// GetTorrentGroup serves id from cache when present, otherwise fetches
// and populates the cache.
func (c *CachingClient) GetTorrentGroup(ctx context.Context, id int64) (indexer.GetTorrentGroupResponse, error) {
	key := idHash(id)
	if cached, ok, err := c.groups.Get(key); err == nil && ok {
		return cached, nil
	}

	resp, err := c.Client.GetTorrentGroup(ctx, id)
	if err != nil {
		return indexer.GetTorrentGroupResponse{}, err
	}
	_ = c.groups.Set(ctx, key, resp)
	return resp, nil
}
