// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package sidefiles places non-audio companion files (cover art, logs,
// scans) alongside each transcode output: hardlinked or copied
// verbatim, or recompressed when an oversized image crosses the
// configured size threshold.
//
// Grounded on pkg/fsutil's same-filesystem check (teacher repo, written
// for hardlink eligibility there too), plus
// github.com/mat/besticon/v3 for image format/dimension sniffing instead
// of the teacher's favicon-analysis use of that library.
package sidefiles

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mat/besticon/v3/besticon" // registers additional image decoders (bmp, ico, webp)

	"github.com/relicaudio/relic/internal/procexec"
	"github.com/relicaudio/relic/pkg/fsutil"
)

// DefaultSizeThresholdBytes is the size above which an eligible image is
// recompressed instead of linked/copied verbatim, when compression is
// enabled.
const DefaultSizeThresholdBytes = 750 * 1024

// MaxDimension bounds the largest side of a recompressed image.
const MaxDimension = 1920

// JPEGQuality is the recompression quality for the image tool.
const JPEGQuality = 90

// ImageTool is the external program invoked to resize/recompress images.
const ImageTool = "convert"

// Config controls which companion files are handled and how.
type Config struct {
	Extensions       []string // lower-case, no leading dot
	SizeThreshold    int64
	Compress         bool
	ConvertPNGToJPEG bool
}

// DefaultConfig matches spec.md's defaults: jpg/jpeg/png eligible,
// 750 KB threshold, compression enabled, no forced PNG→JPEG conversion.
func DefaultConfig() Config {
	return Config{
		Extensions:    []string{"jpg", "jpeg", "png"},
		SizeThreshold: DefaultSizeThresholdBytes,
		Compress:      true,
	}
}

// Action is the disposition chosen for one companion file.
type Action int

const (
	ActionHardlink Action = iota
	ActionCopy
	ActionRecompress
)

func (a Action) String() string {
	switch a {
	case ActionHardlink:
		return "hardlink"
	case ActionCopy:
		return "copy"
	case ActionRecompress:
		return "recompress"
	default:
		return "unknown"
	}
}

// Plan is the disposition computed for one source→destination companion
// file pair.
type Plan struct {
	Src, Dst string
	Action   Action
	DstExt   string // differs from Src's extension only on PNG→JPEG conversion
	Warning  string // set for oversized non-image files, which are still included
}

// Eligible reports whether name's extension is configured for handling.
func Eligible(name string, cfg Config) bool {
	ext := extOf(name)
	for _, e := range cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func extOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

func isImageExt(ext string) bool {
	switch ext {
	case "jpg", "jpeg", "png", "bmp", "webp", "ico":
		return true
	default:
		return false
	}
}

// Plan computes the disposition for placing src's companion file next
// to dst. It stats src but does not touch dst.
func PlanFile(src, dst string, cfg Config) (Plan, error) {
	fi, err := os.Stat(src)
	if err != nil {
		return Plan{}, fmt.Errorf("sidefiles: stat %s: %w", src, err)
	}

	ext := extOf(src)
	dstExt := ext

	if !isImageExt(ext) {
		p := Plan{Src: src, Dst: dst, DstExt: dstExt, Action: linkOrCopy(src, dst)}
		if fi.Size() > cfg.SizeThreshold {
			p.Warning = fmt.Sprintf("%s exceeds %d bytes but is not an image; including as-is", src, cfg.SizeThreshold)
		}
		return p, nil
	}

	if !cfg.Compress || fi.Size() <= cfg.SizeThreshold {
		return Plan{Src: src, Dst: dst, DstExt: dstExt, Action: linkOrCopy(src, dst)}, nil
	}

	if cfg.ConvertPNGToJPEG && ext == "png" {
		dstExt = "jpg"
		dst = strings.TrimSuffix(dst, filepath.Ext(dst)) + ".jpg"
	}
	return Plan{Src: src, Dst: dst, DstExt: dstExt, Action: ActionRecompress}, nil
}

// linkOrCopy prefers a hardlink when src and dst's parent directory
// share a filesystem (hardlinks cannot span filesystems), falling back
// to a copy otherwise.
func linkOrCopy(src, dst string) Action {
	same, err := fsutil.SameFilesystem(src, filepath.Dir(dst))
	if err != nil || !same {
		return ActionCopy
	}
	return ActionHardlink
}

// Dimensions decodes an image's pixel dimensions and format name without
// reading the full file into memory.
func Dimensions(path string) (width, height int, format string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", fmt.Errorf("sidefiles: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", fmt.Errorf("sidefiles: decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// Apply executes a Plan, creating dst from src per its Action.
func Apply(ctx context.Context, p Plan) error {
	switch p.Action {
	case ActionHardlink:
		return os.Link(p.Src, p.Dst)
	case ActionCopy:
		return copyFile(p.Src, p.Dst)
	case ActionRecompress:
		return recompress(ctx, p.Src, p.Dst)
	default:
		return fmt.Errorf("sidefiles: unknown action %v", p.Action)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("sidefiles: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("sidefiles: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return fmt.Errorf("sidefiles: copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// recompress shells out to the image tool to resize to a bounding box of
// MaxDimension pixels and re-encode at JPEGQuality.
func recompress(ctx context.Context, src, dst string) error {
	cmd := procexec.Command{
		Program: ImageTool,
		Args: []string{
			src,
			"-resize", fmt.Sprintf("%dx%d>", MaxDimension, MaxDimension),
			"-quality", fmt.Sprintf("%d", JPEGQuality),
			dst,
		},
		Attribution: procexec.Attribution{Action: "recompress additional file", Domain: "additional file"},
	}
	_, err := procexec.Run(ctx, cmd, nil)
	return err
}
