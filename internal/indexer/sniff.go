// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"fmt"

	"github.com/zeebo/bencode"
)

// torrentEnvelope is the minimal shape every well-formed .torrent file's
// top-level dictionary has; SniffTorrentBytes only needs enough of it
// to confirm the downloaded bytes decode as a bencoded dictionary
// carrying an info section, not whatever HTML error page a misbehaving
// server might have returned instead.
type torrentEnvelope struct {
	Info     map[string]any `bencode:"info"`
	Announce string         `bencode:"announce"`
}

// SniffTorrentBytes validates that b decodes as a bencoded dictionary
// with an "info" key, replacing the hand-rolled bencode parser the
// teacher used only for info-hash extraction with a real decoder that
// can validate the whole structure.
func SniffTorrentBytes(b []byte) error {
	var env torrentEnvelope
	if err := bencode.DecodeBytes(b, &env); err != nil {
		return fmt.Errorf("indexer: downloaded bytes are not a valid torrent: %w", err)
	}
	if env.Info == nil {
		return fmt.Errorf("indexer: downloaded torrent is missing an info dictionary")
	}
	return nil
}
