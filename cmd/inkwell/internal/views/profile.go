// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package views

import (
	"context"
	"strings"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/session"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
)

// Profile is the controller behind "/my-profile".
type Profile struct {
	deps Deps
}

func NewProfile(d Deps) *Profile { return &Profile{deps: d.withDefaults()} }

// Load returns the session user and the category catalog for the
// preference picker. A catalog failure is reported and leaves the list
// empty; the profile itself comes from the session.
func (c *Profile) Load(ctx context.Context) (datatypes.User, []datatypes.Category, error) {
	user, ok := c.deps.Sessions.Current()
	if !ok {
		return datatypes.User{}, nil, session.ErrNoSession
	}
	cats, err := c.deps.API.GetAllCategories(ctx)
	if err != nil {
		return user, nil, c.deps.fail(api.OpGetAllCategories, err, "")
	}
	return user, cats, nil
}

// SaveField validates and saves one profile field. The session is updated
// only after the backend accepts.
func (c *Profile) SaveField(ctx context.Context, field datatypes.ProfileField, value string) error {
	if err := forms.ValidateProfileField(field, value); err != nil {
		return err
	}
	userID, err := c.deps.userID()
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)

	req := datatypes.ProfileFieldUpdate{UserID: userID, Field: field, Value: value}
	if err := c.deps.API.EditProfileField(ctx, req); err != nil {
		return c.deps.fail(api.OpEditProfile, err, "")
	}
	if err := c.deps.Sessions.Update(func(u *datatypes.User) { *u = field.Set(*u, value) }); err != nil {
		c.deps.Logger.Warn("session profile not updated", "error", err)
	}
	c.deps.Notifier.Success(field.Label() + " updated")
	return nil
}

// SavePreferences replaces the user's preferences. At least one is
// required.
func (c *Profile) SavePreferences(ctx context.Context, prefs []datatypes.Category) error {
	if err := forms.ValidatePreferences(prefs); err != nil {
		return err
	}
	userID, err := c.deps.userID()
	if err != nil {
		return err
	}
	req := datatypes.PreferencesUpdate{UserID: userID, Preferences: prefs}
	if err := c.deps.API.EditPreferences(ctx, req); err != nil {
		return c.deps.fail(api.OpEditProfile, err, "")
	}
	if err := c.deps.Sessions.Update(func(u *datatypes.User) { u.Preferences = prefs }); err != nil {
		c.deps.Logger.Warn("session preferences not updated", "error", err)
	}
	c.deps.Notifier.Success("Preferences updated")
	return nil
}

// Logout clears the session and returns "/".
func (c *Profile) Logout() (string, error) {
	if err := c.deps.Sessions.Clear(); err != nil {
		c.deps.Logger.Warn("session not erased", "error", err)
		return string(guard.RouteSignIn), err
	}
	c.deps.Logger.Info("signed out")
	return string(guard.RouteSignIn), nil
}
