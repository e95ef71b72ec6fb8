// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relicaudio/relic/internal/jobs"
)

func TestNewParsesLevel(t *testing.T) {
	logger := New(Config{Level: "debug"})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewFallsBackToInfoOnInvalidLevel(t *testing.T) {
	logger := New(Config{Level: "not-a-level"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewWritesRotatedFileWhenPathSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relic.log")
	logger := New(Config{Level: "info", Path: path})
	logger.Info().Msg("hello")

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestSubscribeJobEventsLogsWithoutPanicking(t *testing.T) {
	logger := New(Config{Level: "trace"})
	exec := jobs.New(1)
	SubscribeJobEvents(logger, exec.Publisher())

	// A second listener on the same publisher confirms the executor
	// emits events while the logging subscriber is attached.
	sub := exec.Publisher().Subscribe()

	job := jobs.NewJob(jobs.KindAdditional, "noop", func(ctx context.Context) error { return nil })
	require.NoError(t, exec.Execute(context.Background(), []jobs.Job{job}))

	select {
	case <-sub:
	case <-time.After(time.Second):
		t.Fatal("expected at least one event from executor publisher")
	}
}
