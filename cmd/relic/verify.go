// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relicaudio/relic/internal/collect"
	"github.com/relicaudio/relic/internal/torrentcache"
	"github.com/relicaudio/relic/internal/verify"
)

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a release against every completeness and quality rule",
		RunE:  runVerify,
	}
	cmd.Flags().StringSlice("target", nil, "Targets this verification should consider already-existing for (default all three)")
	cmd.Flags().Bool("allow-existing", false, "Do not report already-existing targets as an issue")
	cmd.Flags().Bool("skip-hash-check", false, "Skip verifying torrent piece hashes against the content directory")
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	targets, err := parseTargets(app.opts.Targets)
	if err != nil {
		return err
	}
	if app.opts.AllowExisting {
		targets = nil
	}

	src, err := resolveFromFlags(cmd.Context(), app)
	if err != nil {
		return err
	}

	flacs, err := collect.Flacs(src.Directory)
	if err != nil {
		return err
	}

	cfg := verify.Config{
		Targets:       targets,
		SkipHashCheck: app.opts.SkipHashCheck,
	}

	var hash *verify.HashCheck
	if !cfg.SkipHashCheck {
		gzPath := filepath.Join(app.opts.CacheDir, "torrents-gz", fmt.Sprintf("%d.torrent.gz", src.Torrent.ID))
		hash = &verify.HashCheck{
			TorrentPath: filepath.Join(app.opts.CacheDir, "torrents", fmt.Sprintf("%d.torrent", src.Torrent.ID)),
			ContentDir:  src.Directory,
			Fetch: func(ctx context.Context) ([]byte, error) {
				if cached, err := torrentcache.Load(gzPath); err == nil {
					return cached, nil
				}
				data, err := app.indexer.GetTorrentFileAsBuffer(ctx, src.Torrent.ID)
				if err != nil {
					return nil, err
				}
				if err := torrentcache.Store(gzPath, data); err != nil {
					return nil, fmt.Errorf("cache torrent bytes: %w", err)
				}
				return data, nil
			},
		}
	}

	status, err := verify.Collect(cmd.Context(), src, collect.FlacPaths(flacs), cfg, hash)
	if err != nil {
		return err
	}

	if status.Verified {
		cmd.Println("verified: no issues found")
		return nil
	}

	for _, issue := range status.Issues {
		cmd.Printf("- %s\n", issue.String())
	}
	return fmt.Errorf("verify: %d issue(s) found", len(status.Issues))
}
