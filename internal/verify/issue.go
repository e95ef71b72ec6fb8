// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package verify collects every reason a Source is not ready to be
// transcoded and uploaded: API-reported flags, FLAC completeness and
// quality checks, and (unless disabled) a torrent hash check against
// its content directory.
//
// Grounded on internal/jobs' Kind-tagged-struct pattern, generalized
// from three job variants to the twenty-one issue variants spec.md §3
// names for SourceIssue.
package verify

import (
	"fmt"

	"github.com/relicaudio/relic/internal/naming"
	"github.com/relicaudio/relic/internal/source"
)

// Kind tags which of SourceIssue's variants an Issue carries.
type Kind string

const (
	KindIDError          Kind = "id_error"
	KindGroupMismatch    Kind = "group_mismatch"
	KindAPIResponse      Kind = "api_response"
	KindCategory         Kind = "category"
	KindScene            Kind = "scene"
	KindLossyMaster      Kind = "lossy_master"
	KindLossyWeb         Kind = "lossy_web"
	KindTrumpable        Kind = "trumpable"
	KindUnconfirmed      Kind = "unconfirmed"
	KindExcluded         Kind = "excluded"
	KindExisting         Kind = "existing"
	KindMissingDirectory Kind = "missing_directory"
	KindNoFlacs          Kind = "no_flacs"
	KindFlacCount        Kind = "flac_count"
	KindImdl             Kind = "imdl"
	KindLength           Kind = "length"
	KindMissingTags      Kind = "missing_tags"
	KindFlacError        Kind = "flac_error"
	KindSampleRate       Kind = "sample_rate"
	KindBitRate          Kind = "bit_rate"
	KindDuration         Kind = "duration"
	KindChannels         Kind = "channels"
	KindError            Kind = "error"
)

// Issue is one reason verification failed. Only the fields relevant to
// its Kind are populated; see spec.md §3's SourceIssue variants for the
// mapping.
type Issue struct {
	Kind     Kind
	Path     string
	Tags     []string
	Formats  []source.ExistingFormat
	Expected int
	Actual   int
	Excess   int
	Domain   string
	Details  string
}

func (i Issue) String() string {
	switch i.Kind {
	case KindExcluded:
		return fmt.Sprintf("excluded tags present: %v", i.Tags)
	case KindExisting:
		return fmt.Sprintf("formats already exist: %v", i.Formats)
	case KindFlacCount:
		return fmt.Sprintf("expected %d FLAC files, found %d", i.Expected, i.Actual)
	case KindLength:
		return fmt.Sprintf("%s exceeds path length limit by %d bytes", i.Path, i.Excess)
	case KindMissingTags:
		return fmt.Sprintf("%s is missing tags: %v", i.Path, i.Tags)
	case KindFlacError, KindImdl, KindError:
		return fmt.Sprintf("%s: %s", i.Kind, i.Details)
	default:
		return string(i.Kind)
	}
}

// TargetExistingFormat maps a transcode target to the ExistingFormat
// bucket that would make producing it redundant.
func TargetExistingFormat(t naming.Target) source.ExistingFormat {
	switch t {
	case naming.TargetFLAC:
		return source.ExistingFLAC
	case naming.Target320:
		return source.Existing320
	case naming.TargetV0:
		return source.ExistingV0
	default:
		return ""
	}
}
