// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitUsage = 2
)

// CommandError is a failure of one inkwell command.
//
// # Description
//
// Usage errors (bad arguments, invalid form input in non-interactive mode)
// carry ExitUsage. Everything else is reported and the process still exits
// 0: a refused or failed request is not a reason to fail a shell pipeline.
//
// # Example
//
//	err := UsageError("article view", errors.New("article id is required"))
//	fmt.Println(err) // "article view: article id is required"
type CommandError struct {
	// Command is the command path, e.g. "feed like".
	Command string

	// ExitCode is the process exit code.
	ExitCode int

	// Wrapped is the underlying error.
	Wrapped error
}

func (e *CommandError) Error() string {
	if e.Wrapped == nil {
		return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Wrapped)
}

func (e *CommandError) Unwrap() error { return e.Wrapped }

// UsageError marks err as caused by how the command was invoked.
func UsageError(command string, err error) *CommandError {
	return &CommandError{Command: command, ExitCode: ExitUsage, Wrapped: err}
}

// exitCode maps an Execute error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	if isCobraUsage(err) {
		return ExitUsage
	}
	return ExitOK
}

// isCobraUsage catches the usage errors cobra builds itself.
func isCobraUsage(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.HasPrefix(msg, "required flag")
}

// alreadyReported reports whether a controller has shown err to the user
// through the notifier.
func alreadyReported(err error) bool {
	_, isAPI := api.KindOf(err)
	return isAPI
}

// describe renders err for the terminal. Field errors print one line per
// field.
func describe(err error) []string {
	if fe, ok := forms.AsFieldErrors(err); ok {
		lines := make([]string, len(fe))
		for i, e := range fe {
			lines[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		}
		return lines
	}
	return []string{err.Error()}
}
