// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relicaudio/relic/internal/collect"
	"github.com/relicaudio/relic/internal/indexer"
	"github.com/relicaudio/relic/internal/jobs"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/internal/spectrogram"
)

func newSpectrogramCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectrogram",
		Short: "Render zoom and full spectrograms for a release's FLAC tracks",
		RunE:  runSpectrogram,
	}
	cmd.Flags().IntSlice("spectrogram-size", nil, "Accepted but not read: both the zoom and the full spectrogram are always rendered")
	return cmd
}

func runSpectrogram(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	src, err := resolveFromFlags(cmd.Context(), app)
	if err != nil {
		return err
	}

	flacs, err := collect.Flacs(src.Directory)
	if err != nil {
		return err
	}
	if len(flacs) == 0 {
		return fmt.Errorf("spectrogram: no FLAC tracks found under %s", src.Directory)
	}

	if err := renderSpectrograms(cmd.Context(), app, src, flacs); err != nil {
		return fmt.Errorf("spectrogram: %w", err)
	}
	cmd.Printf("rendered spectrograms under %s\n", naming.SpectrogramDir(src.Metadata))
	return nil
}

// renderSpectrograms builds and runs every zoom/full spectrogram job for
// entries, shared between the standalone spectrogram command and the
// batch driver's optional spectrogram stage.
func renderSpectrograms(ctx context.Context, app *app, src source.Source, entries []collect.FlacEntry) error {
	outputDir := filepath.Join(app.opts.Output, naming.SpectrogramDir(src.Metadata))

	var js []jobs.Job
	for _, entry := range entries {
		for _, target := range spectrogram.Plan(entry.Path, entry.File, outputDir) {
			target := target
			js = append(js, jobs.NewJob(jobs.KindSpectrogram, target.OutputPath, func(ctx context.Context) error {
				return spectrogram.Run(ctx, target)
			}))
		}
	}

	return app.executor.Execute(ctx, js)
}

// resolveFromFlags parses --source and resolves it against the
// configured indexer, the shared first step of every release-scoped
// command.
func resolveFromFlags(ctx context.Context, app *app) (source.Source, error) {
	if app.sourceClient == nil {
		return source.Source{}, fmt.Errorf("no indexer configured (set --indexer and --urls)")
	}

	in, err := source.ParseInput(app.opts.Source)
	if err != nil {
		return source.Source{}, err
	}

	return source.Resolve(ctx, app.sourceClient, app.opts.Indexer, app.opts.ContentDir, in)
}

// indexerClient adapts *indexer.Client to source.Client's narrower
// interface.
type indexerClient struct {
	c *indexer.Client
}

func (i indexerClient) GetTorrent(ctx context.Context, id int64) (indexer.GetTorrentResponse, error) {
	return i.c.GetTorrent(ctx, id)
}

func (i indexerClient) GetTorrentGroup(ctx context.Context, id int64) (indexer.GetTorrentGroupResponse, error) {
	return i.c.GetTorrentGroup(ctx, id)
}
