// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command inkwell is the terminal client for the Inkwell article platform.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/inkwell/pkg/ux"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := exitCode(execute(ctx, os.Args[1:]))
	stop()
	os.Exit(code)
}

// execute runs one command line, reports its error and releases the App.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	printer := ux.NewPrinter(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr())
	if app != nil {
		printer = app.printer
	}
	report(printer, err)

	if app != nil {
		_ = app.Close()
		app = nil
	}
	return err
}

// report shows err unless a screen already told the user about it.
func report(printer *ux.Printer, err error) {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return
	case alreadyReported(err):
		if app != nil {
			app.logger.Debug("command failed", "error", err)
		}
		return
	}
	for _, line := range describe(err) {
		printer.Error(line)
	}
	var cmdErr *CommandError
	if (errors.As(err, &cmdErr) && cmdErr.ExitCode == ExitUsage) || isCobraUsage(err) {
		printer.Muted("Run 'inkwell --help' for usage.")
	}
}
