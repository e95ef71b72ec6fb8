// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package transcode composes the decode/encode external-process
// pipelines that turn one source FLAC file into a FLAC, 320, or V0
// output, and writes id3v2 tags onto MP3 outputs afterward.
//
// Grounded on internal/externalprograms' pipeline-of-commands shape
// (teacher repo), now driving audio tools instead of a torrent client,
// via procexec (the adapted form of that same package).
package transcode

import (
	"context"
	"fmt"
	"strconv"

	"github.com/relicaudio/relic/internal/flacinfo"
	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/procexec"
)

// External tool binaries this package shells out to. None are vendored;
// verify.CheckToolVersions (C10) confirms they're present and new enough
// before a batch runs.
const (
	ProgramAudioProcessor = "sox"
	ProgramLosslessCodec  = "flac"
	ProgramMP3Encoder     = "lame"
)

// Plan is the fully-built command sequence that produces one transcode
// output file.
type Plan struct {
	Commands  []procexec.Command
	NeedsTags bool // true for MP3 targets; FLAC carries tags in-stream
}

func attrib(action string) procexec.Attribution {
	return procexec.Attribution{Action: action, Domain: "transcode"}
}

// Build composes the pipeline for one (source FLAC, target format)
// pair, following the resample and target-format branching in spec.md
// §4.6.
func Build(info flacinfo.Info, in, out string, target naming.Target) (Plan, error) {
	if target == naming.TargetFLAC {
		return buildFLAC(info, in, out)
	}
	return buildLossy(info, in, out, target)
}

func buildFLAC(info flacinfo.Info, in, out string) (Plan, error) {
	if !info.NeedsResample() {
		return Plan{
			Commands: []procexec.Command{
				{Program: ProgramLosslessCodec, Args: []string{"-dcs", "--", in}, Attribution: attrib("decode source FLAC")},
				{Program: ProgramLosslessCodec, Args: []string{"--best", "-o", out, "-"}, Attribution: attrib("re-encode FLAC")},
			},
		}, nil
	}

	rate, err := info.ResampleTarget()
	if err != nil {
		return Plan{}, err
	}
	return Plan{
		Commands: []procexec.Command{
			{
				Program: ProgramAudioProcessor,
				Args:    []string{"-G", in, "-b", "16", out, "rate", "-v", "-L", strconv.Itoa(int(rate)), "dither"},
				Attribution: attrib("resample FLAC in place"),
			},
		},
	}, nil
}

func buildLossy(info flacinfo.Info, in, out string, target naming.Target) (Plan, error) {
	var decode procexec.Command
	if info.NeedsResample() {
		rate, err := info.ResampleTarget()
		if err != nil {
			return Plan{}, err
		}
		decode = procexec.Command{
			Program: ProgramAudioProcessor,
			Args:    []string{in, "-G", "-b", "16", "-t", "wav", "-", "rate", "-v", "-L", strconv.Itoa(int(rate)), "dither"},
			Attribution: attrib("resample and decode"),
		}
	} else {
		decode = procexec.Command{
			Program:     ProgramLosslessCodec,
			Args:        []string{"-dcs", "--", in},
			Attribution: attrib("decode source FLAC"),
		}
	}

	encodeArgs := []string{"-S", "--ignore-tag-errors"}
	switch target {
	case naming.Target320:
		encodeArgs = append(encodeArgs, "-b", "320")
	case naming.TargetV0:
		encodeArgs = append(encodeArgs, "-V", "0", "--vbr-new")
	default:
		return Plan{}, fmt.Errorf("transcode: unknown target %q", target)
	}
	encodeArgs = append(encodeArgs, "-", out)

	return Plan{
		Commands: []procexec.Command{
			decode,
			{Program: ProgramMP3Encoder, Args: encodeArgs, Attribution: attrib("encode MP3")},
		},
		NeedsTags: true,
	}, nil
}

// Run executes plan's commands as a single pipeline.
func Run(ctx context.Context, plan Plan) error {
	_, err := procexec.Pipeline(ctx, plan.Commands, nil)
	return err
}
