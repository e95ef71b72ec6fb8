// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/relicaudio/relic/internal/collect"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/queue"
	"github.com/relicaudio/relic/internal/sidefiles"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/internal/verify"
)

func newBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Drive every unprocessed queued release through verify, transcode, and upload",
		RunE:  runBatch,
	}
	cmd.Flags().StringSlice("target", nil, "Targets to produce: FLAC, 320, V0 (default all three)")
	cmd.Flags().Bool("skip-spectrogram", false, "Do not render spectrograms before transcoding")
	cmd.Flags().Bool("skip-upload", false, "Transcode and create torrents but do not upload")
	cmd.Flags().Int("limit", 0, "Maximum number of releases to transcode and upload this run (0 = unlimited)")
	cmd.Flags().Bool("no-limit", false, "Ignore --limit entirely")
	cmd.Flags().Duration("wait-before-upload", 0, "Pause this long between transcoding and uploading each release")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	targets, err := parseTargets(app.opts.Targets)
	if err != nil {
		return err
	}

	queuePath := filepath.Join(app.opts.CacheDir, "queue.yaml")
	q, err := queue.Load(queuePath)
	if err != nil {
		return err
	}

	limit := app.opts.Limit
	if app.opts.NoLimit {
		limit = 0
	}

	driver := &queue.Driver{
		Queue:          q,
		Indexer:        app.opts.Indexer,
		Targets:        targets,
		SkipTranscode:  false,
		SkipUpload:     app.opts.SkipUpload,
		TranscodeLimit: limit,
		UploadLimit:    limit,
		QueuePath:      queuePath,

		Resolve: func(ctx context.Context, item queue.QueueItem) (source.Source, error) {
			if item.ID == nil {
				return source.Source{}, fmt.Errorf("batch: %s has no torrent id", item.Name)
			}
			in := source.Input{Kind: source.InputTorrentID, TorrentID: *item.ID}
			return source.Resolve(ctx, app.sourceClient, app.opts.Indexer, app.opts.ContentDir, in)
		},

		Verify: func(ctx context.Context, src source.Source) (verify.Status, error) {
			flacs, err := collect.Flacs(src.Directory)
			if err != nil {
				return verify.Status{}, err
			}
			cfg := verify.Config{Targets: targets, SkipHashCheck: app.opts.SkipHashCheck}
			return verify.Collect(ctx, src, collect.FlacPaths(flacs), cfg, nil)
		},

		Transcode: func(ctx context.Context, src source.Source, target naming.Target) error {
			flacs, err := collect.Flacs(src.Directory)
			if err != nil {
				return err
			}
			additional, err := collect.Additional(src.Directory, []string{"jpg", "jpeg", "png", "log", "cue", "txt", "pdf"})
			if err != nil {
				return err
			}
			sideCfg := sidefiles.DefaultConfig()
			sideCfg.Compress = app.opts.CompressImages
			sideCfg.ConvertPNGToJPEG = app.opts.PNGToJPG
			return transcodeTarget(ctx, app, src, target, flacs, additional, sideCfg)
		},

		Upload: func(ctx context.Context, src source.Source, target naming.Target) error {
			if app.opts.WaitBeforeUpload > 0 {
				select {
				case <-time.After(app.opts.WaitBeforeUpload):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return uploadTarget(cmd, app, src, target)
		},
	}

	if !app.opts.SkipSpectrogram {
		driver.Spectrogram = func(ctx context.Context, src source.Source) error {
			flacs, err := collect.Flacs(src.Directory)
			if err != nil {
				return err
			}
			return renderSpectrograms(ctx, app, src, flacs)
		}
	}

	result, err := driver.Run(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("processed %d, transcoded %d, uploaded %d, failed %d\n",
		result.Processed, result.Transcoded, result.Uploaded, result.Failed)
	return nil
}
