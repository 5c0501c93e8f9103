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

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/go-openapi/strfmt"
)

// =============================================================================
// Sign in
// =============================================================================

// SignIn is the controller behind the "/" route.
type SignIn struct {
	deps Deps
}

func NewSignIn(d Deps) *SignIn { return &SignIn{deps: d.withDefaults()} }

// Enter forwards a signed-in user straight to the feed.
func (c *SignIn) Enter() string {
	if c.deps.Sessions.Authenticated() {
		return string(guard.RouteFeed)
	}
	return ""
}

// Submit signs in and returns the next target.
//
// # Outputs
//
//   - string: "/feed" on success, "" otherwise.
//   - error: forms.FieldErrors for invalid input (nothing is sent), or the
//     wrapped request error. A refused sign-in alerts
//     MsgInvalidCredentials.
func (c *SignIn) Submit(ctx context.Context, form forms.SignInForm) (string, error) {
	if err := forms.Validate(form); err != nil {
		return "", err
	}
	req := form.Request()
	defer req.Password.Destroy()

	user, err := c.deps.API.SignIn(ctx, req)
	if err != nil {
		return "", c.deps.fail(api.OpSignIn, err, MsgInvalidCredentials)
	}
	c.deps.store(user)
	c.deps.Logger.Info("signed in", "user_id", user.ID)
	return string(guard.RouteFeed), nil
}

// =============================================================================
// Sign up
// =============================================================================

// SignUp is the controller behind "/signup".
type SignUp struct {
	deps Deps
}

func NewSignUp(d Deps) *SignUp { return &SignUp{deps: d.withDefaults()} }

// Submit registers the user.
//
// # Description
//
// The backend answers with the new id only, so the session is built from
// the submitted profile with empty preferences and reaction sets. The next
// target is the category picker for the new id.
func (c *SignUp) Submit(ctx context.Context, form forms.SignUpForm) (string, error) {
	if err := forms.Validate(form); err != nil {
		return "", err
	}
	req := form.Request()
	defer req.Password.Destroy()
	defer req.ConfirmPassword.Destroy()

	resp, err := c.deps.API.SignUp(ctx, req)
	if err != nil {
		return "", c.deps.fail(api.OpSignUp, err, MsgSignUpFailed)
	}

	user := provisionalUser(resp.NewUserID, req)
	c.deps.store(user)
	c.deps.Logger.Info("registered", "user_id", user.ID)
	return guard.To(guard.RouteSelectCategory, "userId", user.ID), nil
}

func provisionalUser(id string, req datatypes.SignUpRequest) datatypes.User {
	return datatypes.User{
		ID:               id,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            strfmt.Email(req.Email),
		Phone:            req.Phone,
		DateOfBirth:      req.DateOfBirth,
		Preferences:      []datatypes.Category{},
		LikedArticles:    []string{},
		DislikedArticles: []string{},
	}
}
