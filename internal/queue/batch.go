// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/internal/verify"
)

// Now is a seam so StageStatus timestamps can be made deterministic in
// tests.
var Now = time.Now

// Driver wires the independently-testable stages — resolve, verify,
// spectrogram, transcode, upload — into the one-item-at-a-time,
// save-after-each loop spec.md §4.11 describes. Every stage is a
// function hook rather than a concrete dependency so this package
// never imports internal/indexer, internal/transcode, or
// internal/torrentfile directly; cmd/relic supplies the real
// implementations at wiring time.
type Driver struct {
	Queue *Queue

	Indexer       string
	Targets       []naming.Target
	SkipTranscode bool
	SkipUpload    bool
	TranscodeLimit int // 0 means unlimited
	UploadLimit    int // 0 means unlimited
	QueuePath      string

	Resolve     func(ctx context.Context, item QueueItem) (source.Source, error)
	Verify      func(ctx context.Context, src source.Source) (verify.Status, error)
	Spectrogram func(ctx context.Context, src source.Source) error
	Transcode   func(ctx context.Context, src source.Source, target naming.Target) error
	Upload      func(ctx context.Context, src source.Source, target naming.Target) error
}

// Result summarizes one Run.
type Result struct {
	Processed  int
	Transcoded int
	Uploaded   int
	Failed     int
}

// Run drains every unprocessed item for d.Indexer in name order,
// carrying each through resolve, verify, (optional) spectrogram,
// transcode, and upload, saving the queue to d.QueuePath after every
// item so a crash mid-run loses at most the item in flight.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	var result Result

	items := d.Queue.GetUnprocessed(d.Indexer, d.SkipUpload)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := d.processOne(ctx, item, &result); err != nil {
			result.Failed++
			d.Queue.SetFailed(item.Hash, err.Error())
		}
		result.Processed++

		if d.QueuePath != "" {
			if err := d.Queue.Save(d.QueuePath); err != nil {
				return result, fmt.Errorf("queue: save after %s: %w", item.Name, err)
			}
		}
	}

	return result, nil
}

func (d *Driver) processOne(ctx context.Context, item QueueItem, result *Result) error {
	src, err := d.Resolve(ctx, item)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	status, err := d.Verify(ctx, src)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	d.Queue.SetVerified(item.Hash, StageStatus{
		Success: status.Verified,
		At:      Now(),
		Error:   issueSummary(status),
	})
	if !status.Verified {
		return nil
	}

	if d.Spectrogram != nil {
		err := d.Spectrogram(ctx, src)
		d.Queue.SetSpectrogram(item.Hash, stageOutcome(err))
		if err != nil {
			return fmt.Errorf("spectrogram: %w", err)
		}
	}

	if !d.SkipTranscode && (d.TranscodeLimit == 0 || result.Transcoded < d.TranscodeLimit) {
		if err := d.transcodeAll(ctx, src); err != nil {
			d.Queue.SetTranscoded(item.Hash, stageOutcome(err))
			return fmt.Errorf("transcode: %w", err)
		}
		d.Queue.SetTranscoded(item.Hash, stageOutcome(nil))
		result.Transcoded++
	}

	if !d.SkipUpload && (d.UploadLimit == 0 || result.Uploaded < d.UploadLimit) {
		if err := d.uploadAll(ctx, src); err != nil {
			d.Queue.SetUploaded(item.Hash, stageOutcome(err))
			return fmt.Errorf("upload: %w", err)
		}
		d.Queue.SetUploaded(item.Hash, stageOutcome(nil))
		result.Uploaded++
	}

	return nil
}

func (d *Driver) transcodeAll(ctx context.Context, src source.Source) error {
	for _, target := range d.Targets {
		if err := d.Transcode(ctx, src, target); err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}
	return nil
}

func (d *Driver) uploadAll(ctx context.Context, src source.Source) error {
	for _, target := range d.Targets {
		if err := d.Upload(ctx, src, target); err != nil {
			return fmt.Errorf("%s: %w", target, err)
		}
	}
	return nil
}

func stageOutcome(err error) StageStatus {
	if err == nil {
		return StageStatus{Success: true, At: Now()}
	}
	return StageStatus{Success: false, At: Now(), Error: err.Error()}
}

func issueSummary(status verify.Status) string {
	if status.Verified {
		return ""
	}
	parts := make([]string, len(status.Issues))
	for i, issue := range status.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}
