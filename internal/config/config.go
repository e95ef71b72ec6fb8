// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config layers command-line flags, a named config file,
// ./config.json, and built-in defaults into one merged options set,
// following the teacher's config/persist split (a TOML-backed
// *viper.Viper with env-var override) adapted to spec.md §6's
// precedence: CLI flags beat a named config file beat ./config.json
// beat defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v2"
)

// Options is the full merged configuration surface every sub-command
// draws from; unused fields for a given command are simply ignored.
type Options struct {
	// Shared across every command.
	Source     string   `mapstructure:"source" json:"source"`
	Output     string   `mapstructure:"output" json:"output"`
	Verbosity  string   `mapstructure:"verbosity" json:"verbosity"`
	APIKey     string   `mapstructure:"apiKey" json:"apiKey"`
	Indexer    string   `mapstructure:"indexer" json:"indexer"`
	URLs       []string `mapstructure:"urls" json:"urls"`
	ContentDir string   `mapstructure:"contentDir" json:"contentDir"`
	CacheDir   string   `mapstructure:"cacheDir" json:"cacheDir"`
	Concurrency int     `mapstructure:"concurrency" json:"concurrency"`

	// spectrogram
	SpectrogramSizes []int `mapstructure:"spectrogramSize" json:"spectrogramSize"`

	// transcode / verify
	Targets        []string `mapstructure:"target" json:"target"`
	AllowExisting  bool     `mapstructure:"allowExisting" json:"allowExisting"`
	HardLink       bool     `mapstructure:"hardLink" json:"hardLink"`
	CompressImages bool     `mapstructure:"compressImages" json:"compressImages"`
	PNGToJPG       bool     `mapstructure:"pngToJpg" json:"pngToJpg"`
	SkipHashCheck  bool     `mapstructure:"skipHashCheck" json:"skipHashCheck"`

	// upload
	CopyTranscodeToContentDir bool   `mapstructure:"copyTranscodeToContentDir" json:"copyTranscodeToContentDir"`
	CopyTorrentTo             string `mapstructure:"copyTorrentTo" json:"copyTorrentTo"`
	DryRun                    bool   `mapstructure:"dryRun" json:"dryRun"`

	// batch
	SkipSpectrogram  bool          `mapstructure:"skipSpectrogram" json:"skipSpectrogram"`
	SkipUpload       bool          `mapstructure:"skipUpload" json:"skipUpload"`
	Limit            int           `mapstructure:"limit" json:"limit"`
	NoLimit          bool          `mapstructure:"noLimit" json:"noLimit"`
	WaitBeforeUpload time.Duration `mapstructure:"waitBeforeUpload" json:"waitBeforeUpload"`

	// queue
	QueueAddPath []string `mapstructure:"queueAddPath" json:"queueAddPath"`
}

func defaults() Options {
	return Options{
		Output:      ".",
		Verbosity:   "info",
		ContentDir:  ".",
		CacheDir:    ".cache",
		Concurrency: 4,
		Targets:     []string{"FLAC", "320", "V0"},

		CompressImages: true,
	}
}

const envPrefix = "RELIC"

// Load builds the merged Options for one invocation. namedConfigPath
// is the --config flag's value, empty if not supplied. flags, if
// non-nil, is bound so any flag the user actually set takes top
// priority regardless of what the config files say.
func Load(namedConfigPath string, flags *pflag.FlagSet) (Options, error) {
	v := viper.New()

	def := defaults()
	defBytes, err := json.Marshal(def)
	if err != nil {
		return Options{}, fmt.Errorf("config: marshal defaults: %w", err)
	}
	var defMap map[string]any
	if err := json.Unmarshal(defBytes, &defMap); err != nil {
		return Options{}, fmt.Errorf("config: unmarshal defaults: %w", err)
	}
	for k, val := range defMap {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := mergeJSONFile(v, "./config.json"); err != nil {
		return Options{}, err
	}
	if namedConfigPath != "" {
		if err := mergeJSONFile(v, namedConfigPath); err != nil {
			return Options{}, err
		}
	}

	if flags != nil {
		// Options keys are camelCase ("apiKey"); flags are kebab-case
		// ("api-key"), so each flag is bound under its camelCase key.
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := f.Name
			for i := strings.Index(key, "-"); i >= 0 && i+1 < len(key); i = strings.Index(key, "-") {
				key = key[:i] + strings.ToUpper(key[i+1:i+2]) + key[i+2:]
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return Options{}, fmt.Errorf("config: bind flags: %w", bindErr)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return Options{}, fmt.Errorf("config: unmarshal merged options: %w", err)
	}
	return opts, nil
}

// mergeJSONFile merges path's JSON contents into v, doing nothing if
// path does not exist.
func mergeJSONFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	v.SetConfigType("json")
	if err := v.MergeConfig(strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// YAML renders opts the way the `config` command's output does: the
// fully merged options as a YAML document.
func (o Options) YAML() ([]byte, error) {
	return yaml.Marshal(o)
}
