// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Executor runs a set of Jobs under a single semaphore. Every job
// acquires one permit for its full lifetime (spec.md §4.3), so at most
// Concurrency jobs ever run at once regardless of how many variants
// (spectrogram, transcode, additional-file) are mixed into one batch.
type Executor struct {
	sem chan struct{}
	pub *Publisher
}

// New builds an Executor with the given number of permits. The CLI
// passes the configured concurrency option (default 4).
func New(concurrency int) *Executor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Executor{
		sem: make(chan struct{}, concurrency),
		pub: NewPublisher(),
	}
}

// Publisher returns the executor's lifecycle event hub. Subscribe before
// calling Execute to observe every transition.
func (e *Executor) Publisher() *Publisher {
	return e.pub
}

// Execute runs every job in js, each acquiring one semaphore permit for
// its duration. On the first job to fail, Execute cancels the shared
// context and returns that error immediately without waiting for the
// remaining jobs to finish — they are detached, continuing to run (and
// observing ctx cancellation themselves) in the background. If every job
// succeeds, Execute returns nil once all have completed.
func (e *Executor) Execute(parent context.Context, js []Job) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	errCh := make(chan error, 1)
	recordErr := func(err error) {
		select {
		case errCh <- err:
			cancel()
		default:
		}
	}

	var wg sync.WaitGroup
	for _, j := range js {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			e.run(ctx, j, recordErr)
		}(j)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
		select {
		case err := <-errCh:
			return err
		default:
			return nil
		}
	}
}

func (e *Executor) run(ctx context.Context, j Job, recordErr func(error)) {
	e.pub.publish(Event{JobID: j.id, Kind: j.kind, Label: j.label, Status: StatusQueued, At: now()})

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-e.sem }()

	e.pub.publish(Event{JobID: j.id, Kind: j.kind, Label: j.label, Status: StatusStarted, At: now()})

	err := runRecovered(ctx, j)

	e.pub.publish(Event{JobID: j.id, Kind: j.kind, Label: j.label, Status: StatusCompleted, Err: err, At: now()})

	if err != nil {
		recordErr(fmt.Errorf("%s %q: %w", j.kind, j.label, err))
	}
}

// runRecovered invokes j.Run, converting a panic into a "task" domain
// error instead of taking the whole batch down with it.
func runRecovered(ctx context.Context, j Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task: job %s panicked: %v", j.kind, r)
		}
	}()
	return j.run(ctx)
}

// now is a seam so event timestamps can be substituted in tests.
var now = time.Now
