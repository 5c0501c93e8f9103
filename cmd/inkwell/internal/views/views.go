// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package views holds the screen controllers of the Inkwell client.
//
// Controllers own screen state and talk to the backend; they render
// nothing. The cobra commands and the TUI drive them and print what they
// return. Validation always runs before a request is built, so invalid
// input never reaches the network.
package views

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/session"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/logging"
	"github.com/AleutianAI/inkwell/pkg/telemetry"
	"github.com/AleutianAI/inkwell/pkg/ux"
)

// User-facing notification texts.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgRequestFailed      = "Something went wrong. Please try again."
	MsgSignUpFailed       = "Registration failed"
	MsgCreateFailed       = "Failed to create article."
	MsgUpdateFailed       = "Failed to update article."
	MsgNoChanges          = "No changes to save"
	MsgNoSelection        = "Select at least one category"
)

// ErrNotOwner is returned when editing an article the user did not write.
var ErrNotOwner = errors.New("only the author can edit this article")

// Notifier shows transient messages to the user.
type Notifier interface {
	// Success confirms a completed action.
	Success(msg string)
	// Alert is a targeted message, e.g. for a refused request.
	Alert(msg string)
	// Error is the generic failure notice for network and API errors.
	Error(msg string)
}

// PrinterNotifier writes notifications through a ux.Printer.
type PrinterNotifier struct {
	Printer *ux.Printer
}

func (n PrinterNotifier) Success(msg string) { n.Printer.Success(msg) }
func (n PrinterNotifier) Alert(msg string)   { n.Printer.Warning(msg) }
func (n PrinterNotifier) Error(msg string)   { n.Printer.Error(msg) }

// Deps are the collaborators every controller needs.
type Deps struct {
	API      api.Service
	Sessions *session.Store
	Notifier Notifier
	Logger   *logging.Logger
	Metrics  *telemetry.ClientMetrics
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.Notifier == nil {
		d.Notifier = PrinterNotifier{Printer: ux.Default()}
	}
	return d
}

// userID returns the signed-in user's id or session.ErrNoSession.
func (d Deps) userID() (string, error) {
	id := d.Sessions.UserID()
	if id == "" {
		return "", session.ErrNoSession
	}
	return id, nil
}

// fail notifies the user about err and returns it wrapped with op.
//
// A refused request shows alert (nothing when alert is empty). Any other
// failure shows the generic notice. Cancellation is silent.
func (d Deps) fail(op string, err error, alert string) error {
	switch {
	case api.IsCancelled(err):
	case api.IsUnsuccessful(err):
		if alert != "" {
			d.Notifier.Alert(alert)
		}
	default:
		d.Notifier.Error(MsgRequestFailed)
	}
	d.Logger.Warn("request failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

// store persists user as the session. A storage failure is logged and not
// returned: the in-memory session is already replaced.
func (d Deps) store(user datatypes.User) {
	if err := d.Sessions.Set(user); err != nil {
		d.Logger.Warn("session not persisted", "error", err)
	}
}
