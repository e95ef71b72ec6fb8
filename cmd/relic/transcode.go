// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relicaudio/relic/internal/collect"
	"github.com/relicaudio/relic/internal/flacinfo"
	"github.com/relicaudio/relic/internal/jobs"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/sidefiles"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/internal/torrentfile"
	"github.com/relicaudio/relic/internal/transcode"
	"github.com/relicaudio/relic/internal/verify"
)

func newTranscodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcode",
		Short: "Transcode a release's FLAC tracks to the requested targets and create their torrents",
		RunE:  runTranscode,
	}
	cmd.Flags().StringSlice("target", nil, "Targets to produce: FLAC, 320, V0 (default all three)")
	cmd.Flags().Bool("allow-existing", false, "Proceed even if a target already exists on the indexer")
	cmd.Flags().Bool("hard-link", false, "Hardlink companion files instead of copying when possible")
	cmd.Flags().Bool("compress-images", true, "Recompress oversized companion images")
	cmd.Flags().Bool("png-to-jpg", false, "Convert recompressed PNG companions to JPEG")
	return cmd
}

func runTranscode(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	targets, err := parseTargets(app.opts.Targets)
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
		return fmt.Errorf("transcode: no FLAC tracks found under %s", src.Directory)
	}

	additional, err := collect.Additional(src.Directory, []string{"jpg", "jpeg", "png", "log", "cue", "txt", "pdf"})
	if err != nil {
		return err
	}
	additional, err = collect.DedupByContent(additional)
	if err != nil {
		return err
	}

	sideCfg := sidefiles.DefaultConfig()
	sideCfg.Compress = app.opts.CompressImages
	sideCfg.ConvertPNGToJPEG = app.opts.PNGToJPG

	for _, target := range targets {
		if !app.opts.AllowExisting && src.Existing[verify.TargetExistingFormat(target)] {
			cmd.Printf("skipping %s: already exists for this release\n", target)
			continue
		}
		if err := transcodeTarget(cmd.Context(), app, src, target, flacs, additional, sideCfg); err != nil {
			return fmt.Errorf("transcode %s: %w", target, err)
		}
		cmd.Printf("transcoded %s\n", target)
	}
	return nil
}

func transcodeTarget(
	ctx context.Context,
	app *app,
	src source.Source,
	target naming.Target,
	flacs []collect.FlacEntry,
	additional []string,
	sideCfg sidefiles.Config,
) error {
	dir := filepath.Join(app.opts.Output, naming.TranscodeDir(src.Metadata, target))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var js []jobs.Job
	for _, entry := range flacs {
		entry := entry
		out := naming.TranscodeFile(src.Metadata, target, entry.File)
		out = filepath.Join(app.opts.Output, out)

		info, err := flacinfo.Inspect(entry.Path)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", entry.Path, err)
		}
		plan, err := transcode.Build(info, entry.Path, out, target)
		if err != nil {
			return fmt.Errorf("build plan for %s: %w", entry.Path, err)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}

		js = append(js, jobs.NewJob(jobs.KindTranscode, out, func(ctx context.Context) error {
			if err := transcode.Run(ctx, plan); err != nil {
				return err
			}
			if plan.NeedsTags {
				return transcode.WriteMP3Tags(info, out)
			}
			return nil
		}))
	}

	for _, path := range additional {
		path := path
		dst := filepath.Join(dir, filepath.Base(path))
		js = append(js, jobs.NewJob(jobs.KindAdditional, dst, func(ctx context.Context) error {
			plan, err := sidefiles.PlanFile(path, dst, sideCfg)
			if err != nil {
				return err
			}
			if plan.Action == sidefiles.ActionHardlink && !app.opts.HardLink {
				plan.Action = sidefiles.ActionCopy
			}
			return sidefiles.Apply(ctx, plan)
		}))
	}

	if err := app.executor.Execute(ctx, js); err != nil {
		return err
	}

	torrentPath := naming.TorrentFile(app.opts.Output, src.Metadata, target)
	return torrentfile.Create(ctx, torrentfile.CreateOptions{
		ContentDir: dir,
		Announce:   app.announceURL(),
		Source:     app.opts.Indexer,
		Output:     torrentPath,
	})
}
