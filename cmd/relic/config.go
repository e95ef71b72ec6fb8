// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the fully merged configuration as YAML",
		RunE:  runConfig,
	}
}

func runConfig(cmd *cobra.Command, args []string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}

	out, err := app.opts.YAML()
	if err != nil {
		return err
	}
	cmd.Print(string(out))
	return nil
}
