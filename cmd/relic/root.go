// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/relicaudio/relic/internal/config"
	"github.com/relicaudio/relic/internal/indexer"
	"github.com/relicaudio/relic/internal/jobs"
	"github.com/relicaudio/relic/internal/logging"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/internal/verify"
)

// newRootCommand builds the command tree, grounded on the teacher's
// cmd/qui db command construction: one function per command returning
// a *cobra.Command, flags declared with Flags().String/Bool/... and read
// back through config.Load, RunE doing the work.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "relic",
		Short:         "Verify, spectrogram, transcode, and upload FLAC releases",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	addSharedFlags(root.PersistentFlags())

	root.AddCommand(
		newSpectrogramCommand(),
		newTranscodeCommand(),
		newVerifyCommand(),
		newUploadCommand(),
		newBatchCommand(),
		newQueueCommand(),
		newConfigCommand(),
	)
	return root
}

// addSharedFlags registers the options spec.md §6 lists as shared
// across spectrogram/transcode/verify/upload/batch.
func addSharedFlags(flags *pflag.FlagSet) {
	flags.String("source", "", "Torrent id, indexer URL, or .torrent file path")
	flags.String("output", ".", "Directory transcode/spectrogram/torrent output is written under")
	flags.String("verbosity", "info", "Log level: trace, debug, info, warn, error")
	flags.String("api-key", "", "Indexer API key")
	flags.String("indexer", "", "Indexer name (e.g. EXAMPLE)")
	flags.StringSlice("urls", nil, "Indexer base URL(s); the first is used for API calls and announces")
	flags.String("content-dir", ".", "Root directory releases' content lives under")
	flags.String("config", "", "Path to a named config file, overriding ./config.json")
}

// app bundles the dependencies every command wires together from
// merged config.
type app struct {
	opts         config.Options
	logger       zerolog.Logger
	indexer      *indexer.Client
	sourceClient source.Client
	executor     *jobs.Executor
}

func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	opts, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.Config{Level: opts.Verbosity})

	var idx *indexer.Client
	var sourceClient source.Client
	if len(opts.URLs) > 0 {
		idx = indexer.New(opts.URLs[0], opts.APIKey, opts.Indexer)
		sourceClient = indexerClient{idx}
		if cached, err := source.NewCachingClient(sourceClient, opts.CacheDir); err == nil {
			sourceClient = cached
		}
	}

	exec := jobs.New(opts.Concurrency)
	logging.SubscribeJobEvents(logger, exec.Publisher())

	for _, w := range verify.CheckToolVersions(cmd.Context(), verify.RequiredTools()) {
		logger.Warn().Str("tool", w.Program).Msg(w.Reason)
	}

	return &app{opts: opts, logger: logger, indexer: idx, sourceClient: sourceClient, executor: exec}, nil
}

// announceURL derives the per-indexer announce URL from the
// configured API base and key, the same passkey-in-path convention
// private trackers built on the Gazelle lineage use.
func (a *app) announceURL() string {
	if len(a.opts.URLs) == 0 {
		return ""
	}
	return fmt.Sprintf("%s/%s/announce", strings.TrimSuffix(a.opts.URLs[0], "/"), a.opts.APIKey)
}

func parseTargets(names []string) ([]naming.Target, error) {
	if len(names) == 0 {
		names = []string{"FLAC", "320", "V0"}
	}
	targets := make([]naming.Target, 0, len(names))
	for _, n := range names {
		switch strings.ToUpper(n) {
		case "FLAC":
			targets = append(targets, naming.TargetFLAC)
		case "320":
			targets = append(targets, naming.Target320)
		case "V0":
			targets = append(targets, naming.TargetV0)
		default:
			return nil, fmt.Errorf("unknown target %q (want FLAC, 320, or V0)", n)
		}
	}
	return targets, nil
}
