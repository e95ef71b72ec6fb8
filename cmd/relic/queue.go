// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relicaudio/relic/internal/queue"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/internal/torrentfile"
)

func newQueueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and add to the persisted processing queue",
	}
	cmd.AddCommand(newQueueAddCommand(), newQueueListCommand(), newQueueSummaryCommand())
	return cmd
}

func queuePath(cacheDir string) string {
	return filepath.Join(cacheDir, "queue.yaml")
}

func newQueueAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add PATH...",
		Short: "Add one or more .torrent files to the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runQueueAdd,
	}
	return cmd
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	path := queuePath(app.opts.CacheDir)
	q, err := queue.Load(path)
	if err != nil {
		return err
	}

	inserted, err := q.InsertNewTorrentFiles(args, showSummary, parseCommentID)
	if err != nil {
		return err
	}
	if err := q.Save(path); err != nil {
		return err
	}
	cmd.Printf("added %d new release(s) to the queue\n", inserted)
	return nil
}

func showSummary(path string) (queue.TorrentSummary, error) {
	summary, err := torrentfile.Show(context.Background(), path)
	if err != nil {
		return queue.TorrentSummary{}, err
	}
	return queue.TorrentSummary{
		Name:     summary.Name,
		InfoHash: summary.InfoHash,
		Source:   summary.Source,
		Comment:  summary.Comment,
	}, nil
}

// parseCommentID extracts the torrent id the indexer's permalink
// convention embeds in a .torrent's comment field.
func parseCommentID(comment string) (int64, bool) {
	in, err := source.ParseInput(comment)
	if err != nil || in.Kind != source.InputURL {
		return 0, false
	}
	return in.TorrentID, true
}

func newQueueListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured indexer's queued releases that are not skipped or uploaded",
		RunE:  runQueueList,
	}
}

func runQueueList(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	q, err := queue.Load(queuePath(app.opts.CacheDir))
	if err != nil {
		return err
	}

	for _, item := range q.GetUnprocessed(app.opts.Indexer, true) {
		cmd.Printf("%s  %s\n", item.Hash, item.Name)
	}
	return nil
}

func newQueueSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Summarize the queue's processing state",
		RunE:  runQueueSummary,
	}
}

func runQueueSummary(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	q, err := queue.Load(queuePath(app.opts.CacheDir))
	if err != nil {
		return err
	}

	unprocessed := q.GetUnprocessed(app.opts.Indexer, false)
	cmd.Printf("%d total, %d unprocessed for indexer %s\n", q.Len(), len(unprocessed), app.opts.Indexer)
	return nil
}
