// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package queue persists the set of releases this system has been
// asked to process, keyed by info-hash, and drives a batch run across
// whatever remains unprocessed.
//
// Grounded on internal/chunktable's YAML-on-disk persistence idiom
// (teacher's sharded-table approach, here applied to one flat file
// since the queue has no sharding requirement).
package queue

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.yaml.in/yaml/v2"
)

// normalizeHash canonicalizes an info-hash for use as a map key:
// trimmed and lower-cased, so "ABC123" and " abc123 " collide.
func normalizeHash(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}

// StageStatus is the shared shape spec.md §3 gives every per-stage
// status: whether it succeeded, when it ran, and an optional error.
type StageStatus struct {
	Success bool      `yaml:"success"`
	At      time.Time `yaml:"at"`
	Error   string    `yaml:"error,omitempty"`
}

// QueueItem is one persisted release.
type QueueItem struct {
	Name        string       `yaml:"name"`
	Hash        string       `yaml:"hash"`
	Indexer     string       `yaml:"indexer"`
	ID          *int64       `yaml:"id,omitempty"`
	Skipped     string       `yaml:"skipped,omitempty"`
	Failed      string       `yaml:"failed,omitempty"`
	Verified    *StageStatus `yaml:"verified,omitempty"`
	Spectrogram *StageStatus `yaml:"spectrogram,omitempty"`
	Transcoded  *StageStatus `yaml:"transcoded,omitempty"`
	Uploaded    *StageStatus `yaml:"uploaded,omitempty"`
}

// Queue is a mutex-guarded, info-hash-keyed mapping of QueueItems.
type Queue struct {
	mu    sync.RWMutex
	items map[string]QueueItem
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{items: map[string]QueueItem{}}
}

// Load reads path into a new Queue. A missing or empty file yields an
// empty queue rather than an error.
func Load(path string) (*Queue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("queue: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return New(), nil
	}

	items := map[string]QueueItem{}
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("queue: decode %s: %w", path, err)
	}
	return &Queue{items: items}, nil
}

// Save writes every entry to path, creating its parent directory if
// needed. The file is written to a temporary sibling first and renamed
// into place, so a crash never leaves a half-written queue file.
func (q *Queue) Save(path string) error {
	q.mu.RLock()
	data, err := yaml.Marshal(q.items)
	q.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("queue: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("queue: mkdir for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("queue: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("queue: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// Len reports how many items the queue holds.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// Get returns the item for hash, normalized per normalizeHash.
func (q *Queue) Get(hash string) (QueueItem, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	item, ok := q.items[normalizeHash(hash)]
	return item, ok
}

// insert adds item if its hash is not already present. Returns true if
// inserted.
func (q *Queue) insert(item QueueItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := normalizeHash(item.Hash)
	if _, exists := q.items[key]; exists {
		return false
	}
	item.Hash = key
	q.items[key] = item
	return true
}

// TorrentSummary is the subset of a torrent-file's show output
// InsertNewTorrentFiles needs, decoupling this package from
// internal/torrentfile and internal/source so it stays independently
// testable.
type TorrentSummary struct {
	Name     string
	InfoHash string
	Source   string // maps to Indexer, lowercased
	Comment  string // parsed for an embedded torrent id
}

// InsertNewTorrentFiles builds a QueueItem from each path's Show
// summary (via the show func, so callers can supply
// torrentfile.Show), skipping entries whose indexer or id cannot be
// determined and entries whose info-hash is already queued. It returns
// the count actually inserted.
func (q *Queue) InsertNewTorrentFiles(paths []string, show func(path string) (TorrentSummary, error), parseID func(comment string) (int64, bool)) (int, error) {
	inserted := 0
	for _, path := range paths {
		summary, err := show(path)
		if err != nil {
			return inserted, fmt.Errorf("queue: show %s: %w", path, err)
		}
		if summary.Source == "" {
			continue
		}
		id, ok := parseID(summary.Comment)
		if !ok {
			continue
		}

		item := QueueItem{
			Name:    summary.Name,
			Hash:    summary.InfoHash,
			Indexer: strings.ToLower(summary.Source),
			ID:      &id,
		}
		if q.insert(item) {
			inserted++
		}
	}
	return inserted, nil
}

// GetUnprocessed returns every item for indexer that has not been
// skipped or uploaded, and — unless skipUpload is true — not yet
// transcoded, sorted by name.
func (q *Queue) GetUnprocessed(indexer string, skipUpload bool) []QueueItem {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var out []QueueItem
	for _, item := range q.items {
		if item.Indexer != strings.ToLower(indexer) {
			continue
		}
		if item.Skipped != "" || item.Uploaded != nil {
			continue
		}
		if !skipUpload && item.Transcoded != nil {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (q *Queue) update(hash string, mutate func(*QueueItem)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := normalizeHash(hash)
	item := q.items[key]
	mutate(&item)
	item.Hash = key
	q.items[key] = item
}

func (q *Queue) SetSkipped(hash, reason string) { q.update(hash, func(i *QueueItem) { i.Skipped = reason }) }
func (q *Queue) SetFailed(hash, reason string)   { q.update(hash, func(i *QueueItem) { i.Failed = reason }) }

func (q *Queue) SetVerified(hash string, status StageStatus) {
	q.update(hash, func(i *QueueItem) { i.Verified = &status })
}
func (q *Queue) SetSpectrogram(hash string, status StageStatus) {
	q.update(hash, func(i *QueueItem) { i.Spectrogram = &status })
}
func (q *Queue) SetTranscoded(hash string, status StageStatus) {
	q.update(hash, func(i *QueueItem) { i.Transcoded = &status })
}
func (q *Queue) SetUploaded(hash string, status StageStatus) {
	q.update(hash, func(i *QueueItem) { i.Uploaded = &status })
}
