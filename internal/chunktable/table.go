// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package chunktable implements the content-addressed sharded table: a
// logical map from bytehash.Hash to an arbitrary value type, physically
// stored as a directory of chunk files grouped by key prefix.
//
// Every key in a chunk file truncates to that chunk's own hash; at most
// one writer touches a given chunk at a time, enforced by a sibling
// `<chunk>.lock` file created with O_EXCL.
package chunktable

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	retry "github.com/avast/retry-go"
	yaml "go.yaml.in/yaml/v2"

	"github.com/relicaudio/relic/internal/bytehash"
)

const (
	lockPollInterval = 100 * time.Millisecond
	lockTimeout      = 2 * time.Second
	lockAttempts     = uint(lockTimeout / lockPollInterval)
)

// Table is a content-addressed sharded table of items keyed by
// bytehash.Hash, chunked on a chunkLen-byte prefix of the key.
type Table[T any] struct {
	dir      string
	chunkLen int
	ext      string
}

// Open returns a Table rooted at dir, creating the directory if needed.
// chunkLen is the number of leading key bytes (Hash<K>.Truncate(chunkLen))
// that determine which chunk file an item lives in. ext names the chunk
// file extension (e.g. "yaml").
func Open[T any](dir string, chunkLen int, ext string) (*Table[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("chunktable: create dir %s: %w", dir, err)
	}
	return &Table[T]{dir: dir, chunkLen: chunkLen, ext: ext}, nil
}

func (t *Table[T]) chunkPath(chunk bytehash.Hash) string {
	return filepath.Join(t.dir, chunk.Hex()+"."+t.ext)
}

func (t *Table[T]) lockPath(chunk bytehash.Hash) string {
	return filepath.Join(t.dir, chunk.Hex()+".lock")
}

// acquireLock creates the chunk's sibling lock file, retrying on
// EEXIST until lockTimeout elapses. Release the returned func to unlock.
func (t *Table[T]) acquireLock(ctx context.Context, chunk bytehash.Hash) (release func(), err error) {
	lockPath := t.lockPath(chunk)

	attemptErr := retry.Do(
		func() error {
			f, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
			if openErr != nil {
				if os.IsExist(openErr) {
					return openErr
				}
				return retry.Unrecoverable(fmt.Errorf("chunktable: create lock %s: %w", lockPath, openErr))
			}
			return f.Close()
		},
		retry.Context(ctx),
		retry.Attempts(lockAttempts),
		retry.Delay(lockPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if attemptErr != nil {
		if errors.Is(attemptErr, context.Canceled) || errors.Is(attemptErr, context.DeadlineExceeded) {
			return nil, attemptErr
		}
		return nil, fmt.Errorf("chunktable: acquire lock exceeded %s for chunk %s: %w", lockTimeout, chunk.Hex(), attemptErr)
	}

	return func() { _ = os.Remove(lockPath) }, nil
}

func (t *Table[T]) readChunk(chunk bytehash.Hash) (map[string]T, error) {
	data, err := os.ReadFile(t.chunkPath(chunk))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("chunktable: read chunk %s: %w", chunk.Hex(), err)
	}

	items := map[string]T{}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("chunktable: decode chunk %s: %w", chunk.Hex(), err)
		}
	}
	return items, nil
}

// writeChunk writes via temp-file-then-rename so a crash mid-write leaves
// the previous chunk contents intact.
func (t *Table[T]) writeChunk(chunk bytehash.Hash, items map[string]T) error {
	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("chunktable: encode chunk %s: %w", chunk.Hex(), err)
	}

	path := t.chunkPath(chunk)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("chunktable: write temp chunk %s: %w", chunk.Hex(), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("chunktable: rename chunk %s: %w", chunk.Hex(), err)
	}
	return nil
}

// Get reads the single chunk file for key's prefix and returns the
// matching item, if present. A missing chunk file is not an error.
func (t *Table[T]) Get(key bytehash.Hash) (T, bool, error) {
	var zero T
	items, err := t.readChunk(key.Truncate(t.chunkLen))
	if err != nil {
		return zero, false, err
	}
	v, ok := items[key.Hex()]
	return v, ok, nil
}

// GetAll reads every chunk file in the table directory, merging their
// contents into one map keyed by the full (untruncated) item hash.
// Non-chunk files (stray lock files left by a crashed writer, etc.) are
// ignored.
func (t *Table[T]) GetAll() (map[bytehash.Hash]T, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, fmt.Errorf("chunktable: list dir %s: %w", t.dir, err)
	}

	suffix := "." + t.ext
	result := make(map[bytehash.Hash]T)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		chunk, err := bytehash.ParseHex(strings.TrimSuffix(e.Name(), suffix))
		if err != nil {
			continue
		}
		items, err := t.readChunk(chunk)
		if err != nil {
			return nil, err
		}
		for khex, v := range items {
			k, err := bytehash.ParseHex(khex)
			if err != nil {
				continue
			}
			result[k] = v
		}
	}
	return result, nil
}

// Set inserts or replaces a single item, under the chunk's lock.
func (t *Table[T]) Set(ctx context.Context, key bytehash.Hash, value T) error {
	chunk := key.Truncate(t.chunkLen)
	release, err := t.acquireLock(ctx, chunk)
	if err != nil {
		return err
	}
	defer release()

	items, err := t.readChunk(chunk)
	if err != nil {
		return err
	}
	items[key.Hex()] = value
	return t.writeChunk(chunk, items)
}

// SetMany groups items by chunk and updates each chunk concurrently, one
// goroutine per chunk, each holding that chunk's lock. It returns the
// count of keys that were newly inserted; replacements of already-present
// keys only count when replace is true and the key was previously absent
// (they never do, by definition — replace only changes whether an
// existing key's value is overwritten, not whether it's "added").
func (t *Table[T]) SetMany(ctx context.Context, items map[bytehash.Hash]T, replace bool) (int, error) {
	byChunk := make(map[bytehash.Hash]map[bytehash.Hash]T)
	for k, v := range items {
		c := k.Truncate(t.chunkLen)
		m, ok := byChunk[c]
		if !ok {
			m = make(map[bytehash.Hash]T)
			byChunk[c] = m
		}
		m[k] = v
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		added    int
		firstErr error
	)

	for chunk, chunkItems := range byChunk {
		wg.Add(1)
		go func(chunk bytehash.Hash, chunkItems map[bytehash.Hash]T) {
			defer wg.Done()
			n, err := t.setChunk(ctx, chunk, chunkItems, replace)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			added += n
		}(chunk, chunkItems)
	}
	wg.Wait()

	if firstErr != nil {
		return added, firstErr
	}
	return added, nil
}

func (t *Table[T]) setChunk(ctx context.Context, chunk bytehash.Hash, newItems map[bytehash.Hash]T, replace bool) (int, error) {
	release, err := t.acquireLock(ctx, chunk)
	if err != nil {
		return 0, err
	}
	defer release()

	existing, err := t.readChunk(chunk)
	if err != nil {
		return 0, err
	}

	added := 0
	for k, v := range newItems {
		khex := k.Hex()
		if _, present := existing[khex]; present {
			if !replace {
				continue
			}
			existing[khex] = v
			continue
		}
		existing[khex] = v
		added++
	}

	if err := t.writeChunk(chunk, existing); err != nil {
		return 0, err
	}
	return added, nil
}
