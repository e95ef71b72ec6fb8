// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package verify

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/relicaudio/relic/internal/procexec"
)

// ToolVersion names one external dependency's version-probe invocation
// and the minimum version a batch run should trust it at.
type ToolVersion struct {
	Program string
	Args    []string // e.g. {"--version"}
	Min     string   // semver constraint lower bound, e.g. "1.4.0"
}

// RequiredTools lists the external binaries C4/C9 shell out to, grounded
// on the teacher's own webAPIVersion gate in internal/qbittorrent/client.go
// (parse the reported version, compare against a known-good floor).
func RequiredTools() []ToolVersion {
	return []ToolVersion{
		{Program: "flac", Args: []string{"--version"}, Min: "1.3.0"},
		{Program: "lame", Args: []string{"--version"}, Min: "3.100.0"},
		{Program: "sox", Args: []string{"--version"}, Min: "14.4.0"},
		{Program: "imdl", Args: []string{"--version"}, Min: "0.1.0"},
	}
}

// ToolWarning describes one external tool that is missing, unparseable,
// or older than its configured minimum.
type ToolWarning struct {
	Program string
	Reason  string
}

func (w ToolWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Program, w.Reason)
}

var versionNumber = regexp.MustCompile(`\d+(\.\d+){1,3}`)

// CheckToolVersions probes every tool in tools and returns a warning for
// each one that can't be found, whose output doesn't parse as a version,
// or that falls short of its configured minimum. It never returns an
// error itself: an unusable external tool is reported, not fatal, since
// the caller may only need a subset of them (e.g. a FLAC-only target
// doesn't touch lame).
func CheckToolVersions(ctx context.Context, tools []ToolVersion) []ToolWarning {
	var warnings []ToolWarning
	for _, tool := range tools {
		if w := checkOne(ctx, tool); w != nil {
			warnings = append(warnings, *w)
		}
	}
	return warnings
}

func checkOne(ctx context.Context, tool ToolVersion) *ToolWarning {
	out, err := procexec.Run(ctx, procexec.Command{
		Program:     tool.Program,
		Args:        tool.Args,
		Attribution: procexec.Attribution{Action: "check tool version", Domain: "tool version"},
	}, nil)
	if err != nil {
		return &ToolWarning{Program: tool.Program, Reason: "not found or failed to run"}
	}

	match := versionNumber.FindString(string(out))
	if match == "" {
		return &ToolWarning{Program: tool.Program, Reason: "could not parse reported version"}
	}

	installed, err := semver.NewVersion(match)
	if err != nil {
		return &ToolWarning{Program: tool.Program, Reason: fmt.Sprintf("could not parse version %q", match)}
	}

	min := semver.MustParse(tool.Min)
	if installed.LessThan(min) {
		return &ToolWarning{Program: tool.Program, Reason: fmt.Sprintf("version %s is older than required %s", installed, min)}
	}
	return nil
}
