// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffTorrentBytesAcceptsWellFormedTorrent(t *testing.T) {
	valid := "d8:announce18:https://x.example/4:infod4:name4:test6:lengthi123eee"
	require.NoError(t, SniffTorrentBytes([]byte(valid)))
}

func TestSniffTorrentBytesRejectsGarbage(t *testing.T) {
	err := SniffTorrentBytes([]byte("<html>not a torrent</html>"))
	require.Error(t, err)
}

func TestSniffTorrentBytesRejectsMissingInfo(t *testing.T) {
	noInfo := "d8:announce18:https://x.example/e"
	err := SniffTorrentBytes([]byte(noInfo))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "info dictionary")
}
