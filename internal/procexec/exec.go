// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package procexec wraps external-program invocation: build argv, stream
// stdio, capture exit code and stderr, and compose a chain of commands
// into a single decode/encode pipeline.
//
// The sync run/wait shape is grounded on internal/externalprograms'
// ExecuteOptions/ExecutionResult split, trimmed to the sync-only contract
// this system needs: every invocation here is awaited by its caller (the
// job executor already bounds parallelism, so there is no async mode to
// offer on top of it).
package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	shellquote "github.com/Hellseher/go-shellquote"
)

// Attribution identifies what an external-process failure should be
// reported against: a short user-facing action ("decode FLAC") and the
// error-taxonomy domain it belongs to (spec.md §7: "file system", "FLAC",
// "audio tag", "IMDL", ...).
type Attribution struct {
	Action string
	Domain string
}

// Command is a single external-program invocation.
type Command struct {
	Program string
	Args    []string
	Attribution
}

// Display renders a loggable, non-shell-safe representation of the
// command, quoting any argument containing whitespace. It must never be
// passed to a shell.
func (c Command) Display() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Program)
	parts = append(parts, c.Args...)
	return shellquote.Join(parts...)
}

// Error wraps a non-zero exit (or a failure to even start) from an
// external command, carrying enough detail for spec.md §7's failure
// summary (action, domain, and the process's own stderr/stdout).
type Error struct {
	Attribution
	Program  string
	Args     []string
	ExitCode int
	Signal   string
	Stderr   string
	Stdout   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if errors.Is(e.Err, exec.ErrNotFound) {
			return fmt.Sprintf("%s: Could not find dependency: %s", e.Action, e.Program)
		}
		return fmt.Sprintf("%s: %s: %v", e.Action, e.Program, e.Err)
	}
	msg := fmt.Sprintf("%s: %s exited %d", e.Action, e.Program, e.ExitCode)
	if e.Signal != "" {
		msg += fmt.Sprintf(" (signal %s)", e.Signal)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Run executes a single command, optionally feeding it stdin, and
// returns its captured stdout on success. A missing binary (ENOENT) is
// translated into a "Could not find dependency" explanation; any other
// non-zero exit returns an *Error carrying exit code, signal (where the
// platform exposes one), and decoded stderr/stdout.
func Run(ctx context.Context, cmd Command, stdin []byte) ([]byte, error) {
	out, _, err := runStep(ctx, cmd, bytes.NewReader(stdin))
	return out, err
}

// Pipeline runs a sequence of commands, threading step i's stdout into
// step i+1's stdin. The final step's stdout is the pipeline's result.
// Execution is strictly sequential: a failure at any step aborts the
// remaining steps and returns that step's error.
func Pipeline(ctx context.Context, cmds []Command, stdin []byte) ([]byte, error) {
	if len(cmds) == 0 {
		return nil, errors.New("procexec: empty pipeline")
	}

	in := bytes.NewReader(stdin)
	var out []byte
	for i, cmd := range cmds {
		result, _, err := runStep(ctx, cmd, in)
		if err != nil {
			return nil, fmt.Errorf("pipeline step %d/%d (%s): %w", i+1, len(cmds), cmd.Program, err)
		}
		out = result
		in = bytes.NewReader(out)
	}
	return out, nil
}

func runStep(ctx context.Context, cmd Command, stdin *bytes.Reader) ([]byte, int, error) {
	c := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	c.Stdin = stdin

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	runErr := c.Run()
	if runErr == nil {
		return stdout.Bytes(), 0, nil
	}

	var execErr *exec.Error
	if errors.As(runErr, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return nil, -1, &Error{Attribution: cmd.Attribution, Program: cmd.Program, Args: cmd.Args, ExitCode: -1, Err: runErr}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return nil, exitErr.ExitCode(), &Error{
			Attribution: cmd.Attribution,
			Program:     cmd.Program,
			Args:        cmd.Args,
			ExitCode:    exitErr.ExitCode(),
			Signal:      signalName(exitErr),
			Stderr:      stderr.String(),
			Stdout:      stdout.String(),
		}
	}

	return nil, -1, &Error{Attribution: cmd.Attribution, Program: cmd.Program, Args: cmd.Args, ExitCode: -1, Err: runErr}
}
