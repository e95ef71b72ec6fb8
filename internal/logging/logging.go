// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logging sets up the process-wide zerolog logger: a
// human-readable console sink plus an optional rotated JSON file sink,
// following the teacher's rs/zerolog + gopkg.in/natefinch/lumberjack.v2
// stack. It also exposes a subscriber that turns internal/jobs lifecycle
// events into trace-level log lines.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/relicaudio/relic/internal/jobs"
)

// Config parameterizes logger construction.
type Config struct {
	Level      string // trace, debug, info, warn, error
	Path       string // optional rotated log file; console-only if empty
	JSON       bool   // console sink emits structured JSON instead of a pretty line
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func defaultConfig(cfg Config) Config {
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 50
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 28
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// New builds the process logger per cfg.
func New(cfg Config) zerolog.Logger {
	cfg = defaultConfig(cfg)

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	if cfg.JSON {
		writers = append(writers, os.Stdout)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	if cfg.Path != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger
}

// SubscribeJobEvents drains pub on a background goroutine for the
// remaining lifetime of the process, logging every event at trace
// level (or error level, for events carrying a failure). Publisher's
// subscriber channels are never closed, matching its "never block the
// publisher" contract, so this goroutine is not meant to be stopped —
// it runs until the process exits.
func SubscribeJobEvents(logger zerolog.Logger, pub *jobs.Publisher) {
	events := pub.Subscribe()
	go func() {
		for e := range events {
			logEvent(logger, e)
		}
	}()
}

func logEvent(logger zerolog.Logger, e jobs.Event) {
	ev := logger.Trace().
		Str("job_id", e.JobID.String()).
		Str("kind", string(e.Kind)).
		Str("label", e.Label).
		Str("status", e.Status.String()).
		Time("at", e.At)
	if e.Err != nil {
		ev = logger.Error().
			Str("job_id", e.JobID.String()).
			Str("kind", string(e.Kind)).
			Str("label", e.Label).
			Str("status", e.Status.String()).
			Time("at", e.At).
			Err(e.Err)
	}
	ev.Msg("job event")
}
