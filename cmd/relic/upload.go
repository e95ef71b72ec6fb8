// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/relicaudio/relic/internal/indexer"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/source"
	"github.com/relicaudio/relic/pkg/fsutil"
	"github.com/relicaudio/relic/pkg/hardlink"
)

func newUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a release's already-built transcode targets to the indexer",
		RunE:  runUpload,
	}
	cmd.Flags().StringSlice("target", nil, "Targets to upload: FLAC, 320, V0 (default all three)")
	cmd.Flags().Bool("copy-transcode-to-content-dir", false, "Copy the uploaded transcode directory into the content directory afterward")
	cmd.Flags().String("copy-torrent-to", "", "Directory to also copy the created .torrent into, e.g. a watch folder")
	cmd.Flags().Bool("hard-link", false, "Hardlink rather than copy when placing outputs in the content directory")
	cmd.Flags().Bool("dry-run", false, "Build the upload form but do not submit it")
	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	if app.indexer == nil {
		return fmt.Errorf("no indexer configured (set --indexer and --urls)")
	}

	targets, err := parseTargets(app.opts.Targets)
	if err != nil {
		return err
	}

	src, err := resolveFromFlags(cmd.Context(), app)
	if err != nil {
		return err
	}

	for _, target := range targets {
		if err := uploadTarget(cmd, app, src, target); err != nil {
			return fmt.Errorf("upload %s: %w", target, err)
		}
	}
	return nil
}

func uploadTarget(cmd *cobra.Command, app *app, src source.Source, target naming.Target) error {
	torrentPath := naming.TorrentFile(app.opts.Output, src.Metadata, target)
	bytes, err := os.ReadFile(torrentPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", torrentPath, err)
	}

	form := indexer.UploadForm{
		TorrentBytes:            bytes,
		TorrentFilename:         filepath.Base(torrentPath),
		Type:                    "0",
		RemasterTitle:           src.Torrent.RemasterTitle,
		RemasterRecordLabel:     src.Torrent.RemasterRecordLabel,
		RemasterCatalogueNumber: src.Torrent.RemasterCatalogueNumber,
		Format:                  uploadFormat(target),
		Bitrate:                 uploadBitrate(target),
		Media:                   src.Torrent.Media,
		GroupID:                 strconv.FormatInt(src.Group.ID, 10),
	}
	if src.Torrent.Remastered {
		form.RemasterYear = strconv.Itoa(src.Torrent.RemasterYear)
	}

	if app.opts.DryRun {
		cmd.Printf("dry run: would upload %s (%d bytes)\n", form.TorrentFilename, len(form.TorrentBytes))
		return nil
	}

	resp, err := app.indexer.UploadTorrent(cmd.Context(), form)
	if err != nil {
		return err
	}
	cmd.Printf("uploaded %s as torrent id %d\n", target, resp.TorrentID)

	if app.opts.CopyTorrentTo != "" {
		dst := filepath.Join(app.opts.CopyTorrentTo, filepath.Base(torrentPath))
		if err := os.WriteFile(dst, form.TorrentBytes, 0o644); err != nil {
			return fmt.Errorf("copy torrent to %s: %w", dst, err)
		}
	}

	if app.opts.CopyTranscodeToContentDir {
		transcodeDir := filepath.Join(app.opts.Output, naming.TranscodeDir(src.Metadata, target))
		if err := placeInContentDir(transcodeDir, src.Directory, app.opts.HardLink); err != nil {
			return fmt.Errorf("copy transcode output into content directory: %w", err)
		}
	}
	return nil
}

// placeInContentDir places every regular file under transcodeDir at the
// equivalent path under contentDir, skipping files that are already
// the same on-disk file (matched by FileID, not just by name). With
// hardLink set it hardlinks, falling back to a copy when the two
// directories don't share a filesystem; otherwise it copies.
func placeInContentDir(transcodeDir, contentDir string, hardLink bool) error {
	return filepath.Walk(transcodeDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(transcodeDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(contentDir, rel)

		if dstInfo, err := os.Stat(dst); err == nil {
			srcID, _, err := hardlink.GetFileID(fi, path)
			if err == nil {
				dstID, _, err := hardlink.GetFileID(dstInfo, dst)
				if err == nil && srcID == dstID {
					return nil
				}
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		same, err := fsutil.SameFilesystem(path, filepath.Dir(dst))
		if hardLink && err == nil && same {
			if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
				return err
			}
			return os.Link(path, dst)
		}
		return copyIntoContentDir(path, dst)
	})
}

func copyIntoContentDir(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Close()
}

func uploadFormat(target naming.Target) string {
	if target == naming.TargetFLAC {
		return "FLAC"
	}
	return "MP3"
}

func uploadBitrate(target naming.Target) string {
	switch target {
	case naming.Target320:
		return "320"
	case naming.TargetV0:
		return "V0 (VBR)"
	default:
		return "Lossless"
	}
}
