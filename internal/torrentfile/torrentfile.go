// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package torrentfile delegates torrent-file creation, hash
// verification, and metadata inspection to an external torrent-file
// tool, parsing its JSON summary output into a typed record.
//
// Grounded on procexec (this repo's adapted form of the teacher's
// external-program wrapper) for the process boundary, and on
// cehbz-qbittorrent's multipart/JSON handling conventions for decoding
// the tool's structured output.
package torrentfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/relicaudio/relic/internal/procexec"
)

// Tool is the external binary this package shells out to.
const Tool = "imdl"

func attrib(action string) procexec.Attribution {
	return procexec.Attribution{Action: action, Domain: "IMDL"}
}

// CreateOptions parameterizes torrent creation.
type CreateOptions struct {
	ContentDir string
	Announce   string
	Source     string
	Output     string
}

// Create produces a private torrent file for ContentDir at Output.
func Create(ctx context.Context, opts CreateOptions) error {
	args := []string{
		"torrent", "create",
		"--input", opts.ContentDir,
		"--announce", opts.Announce,
		"--output", opts.Output,
		"--private",
		"--force",
	}
	if opts.Source != "" {
		args = append(args, "--source", opts.Source)
	}
	_, err := procexec.Run(ctx, procexec.Command{Program: Tool, Args: args, Attribution: attrib("create torrent")}, nil)
	return err
}

// VerifyError reports a hash mismatch between a torrent and its content
// directory, carrying the tool's own diagnostic output.
type VerifyError struct {
	Details string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("torrent content does not match piece hashes: %s", e.Details)
}

// Verify checks torrentPath's piece hashes against contentDir. A nil
// return means the content matches; a non-nil *VerifyError means it
// does not (any other error indicates the tool itself could not run).
func Verify(ctx context.Context, torrentPath, contentDir string) error {
	_, err := procexec.Run(ctx, procexec.Command{
		Program:     Tool,
		Args:        []string{"torrent", "verify", "--input", torrentPath, "--content", contentDir},
		Attribution: attrib("verify torrent hashes"),
	}, nil)
	if err == nil {
		return nil
	}

	var procErr *procexec.Error
	if errors.As(err, &procErr) && procErr.Err == nil {
		return &VerifyError{Details: procErr.Stderr}
	}
	return err
}

// File is one entry in a torrent's file list.
type File struct {
	Path   []string `json:"path"`
	Length int64    `json:"length"`
}

// Summary is the torrent-tool's JSON show output, per the wire schema.
type Summary struct {
	Name          string   `json:"name"`
	Comment       string   `json:"comment,omitempty"`
	CreationDate  int64    `json:"creation_date,omitempty"`
	CreatedBy     string   `json:"created_by,omitempty"`
	Source        string   `json:"source,omitempty"`
	InfoHash      string   `json:"info_hash"`
	TorrentSize   int64    `json:"torrent_size"`
	ContentSize   int64    `json:"content_size"`
	Private       bool     `json:"private"`
	Tracker       string   `json:"tracker,omitempty"`
	AnnounceList  []string `json:"announce_list"`
	PieceSize     int64    `json:"piece_size"`
	PieceCount    int64    `json:"piece_count"`
	FileCount     int64    `json:"file_count"`
	Files         []File   `json:"files"`
}

// Show runs the tool's JSON-summary mode on torrentPath and decodes it.
func Show(ctx context.Context, torrentPath string) (Summary, error) {
	out, err := procexec.Run(ctx, procexec.Command{
		Program:     Tool,
		Args:        []string{"torrent", "show", "--json", torrentPath},
		Attribution: attrib("show torrent summary"),
	}, nil)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	if err := json.Unmarshal(out, &summary); err != nil {
		return Summary{}, fmt.Errorf("torrentfile: decode show output: %w", err)
	}
	return summary, nil
}
