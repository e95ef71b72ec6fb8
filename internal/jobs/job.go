// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package jobs implements the bounded-concurrency job executor: a
// heterogeneous set of work units (spectrogram render, transcode
// pipeline, additional-file copy) run under a single semaphore, with
// lifecycle events fanned out to non-blocking subscribers.
//
// spec.md's "Job variants: Spectrogram, Transcode, Additional" are
// realized as a single Job carrying a Kind tag and a closure rather than
// an interface hierarchy — a tagged union without inheritance (see
// DESIGN.md, "Command pattern without inheritance"), the same
// command-dispatch shape as internal/externalprograms' ExecuteOptions on
// the teacher repo, generalized from one case to three.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies which of the three work-unit shapes a Job performs.
// It exists purely for trace logging and progress-bar labeling; it does
// not change how the executor dispatches the job.
type Kind string

const (
	KindSpectrogram Kind = "spectrogram"
	KindTranscode   Kind = "transcode"
	KindAdditional  Kind = "additional"
)

// Job is one unit of work submitted to the Executor. Run must carry
// everything it needs in its closure: the executor never looks anything
// up on the job's behalf.
type Job struct {
	id    uuid.UUID
	kind  Kind
	label string
	run   func(ctx context.Context) error
}

// NewJob builds a Job. label is a short human-readable description used
// in trace logs and the progress bar (e.g. "FLAC 01 Track.flac").
func NewJob(kind Kind, label string, run func(ctx context.Context) error) Job {
	return Job{id: uuid.New(), kind: kind, label: label, run: run}
}

func (j Job) ID() uuid.UUID { return j.id }
func (j Job) Kind() Kind    { return j.kind }
func (j Job) Label() string { return j.label }

func (j Job) String() string {
	return fmt.Sprintf("%s[%s]", j.kind, j.label)
}
