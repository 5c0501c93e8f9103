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
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/reaction"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/views"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/ux"
	"github.com/AleutianAI/inkwell/pkg/validation"
)

// Commands that act without rendering a screen still pass the route guard
// of the screen they belong to.

// requireSession applies the guard for route. Without a session it shows
// the sign-in screen and reports whether a user is signed in afterwards.
func (a *App) requireSession(ctx context.Context, route guard.Route) (bool, error) {
	decision, _, err := a.router.Decide(string(route))
	if err != nil {
		return false, err
	}
	if decision == guard.DecisionRender {
		return true, nil
	}
	if _, err := a.showSignIn(ctx, guard.Request{Route: guard.RouteSignIn}); err != nil {
		return false, err
	}
	return a.sessions.Authenticated(), nil
}

func (a *App) logout() error {
	if !a.sessions.Authenticated() {
		a.printer.Info("Not signed in")
		return nil
	}
	if _, err := a.profile.Logout(); err != nil {
		return err
	}
	a.printer.Success("Signed out")
	return nil
}

func (a *App) whoami() {
	u, ok := a.sessions.Current()
	if !ok {
		a.printer.Info("Not signed in")
		return
	}
	if ux.GetPersonality().Level == ux.PersonalityMachine {
		a.printer.Raw(fmt.Sprintf("%s\t%s\t%s", u.ID, u.Email, u.FullName()))
		return
	}
	a.printer.Info(fmt.Sprintf("%s <%s>", u.FullName(), u.Email))
}

// -----------------------------------------------------------------------------
// Profile
// -----------------------------------------------------------------------------

func (a *App) setProfileField(ctx context.Context, name, value string) error {
	field, err := datatypes.ParseProfileField(name)
	if err != nil {
		return UsageError("profile set", err)
	}
	if ok, err := a.requireSession(ctx, guard.RouteProfile); !ok {
		return err
	}
	if err := a.profile.SaveField(ctx, field, value); err != nil {
		return invalid(guard.RouteProfile, err)
	}
	return nil
}

func (a *App) setPreferences(ctx context.Context, ids []string) error {
	if ok, err := a.requireSession(ctx, guard.RouteProfile); !ok {
		return err
	}
	if err := validation.ValidateIDs(ids); err != nil {
		return UsageError("profile preferences", err)
	}
	user, cats, err := a.profile.Load(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		if !a.interactive {
			return UsageError("profile preferences", errors.New("at least one --category is required"))
		}
		ids = datatypes.CategoryIDs(user.Preferences)
		if ok, err := a.prompt(func() error {
			return a.prompter.Categories(ctx, "Preferences", cats, &ids)
		}); !ok {
			return err
		}
	}

	prefs := make([]datatypes.Category, 0, len(ids))
	for _, id := range ids {
		c, ok := datatypes.FindCategory(cats, id)
		if !ok {
			return UsageError("profile preferences", fmt.Errorf("unknown category %q", id))
		}
		prefs = append(prefs, c)
	}
	if err := a.profile.SavePreferences(ctx, prefs); err != nil {
		return invalid(guard.RouteProfile, err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Articles
// -----------------------------------------------------------------------------

// articleEdit holds the edit flags the user actually passed.
type articleEdit struct {
	Title       *string
	Description *string
	CategoryID  *string
	Tags        *[]string
	ImagePath   string
}

func (e articleEdit) apply(d views.ArticleDraft) views.ArticleDraft {
	if e.Title != nil {
		d.Title = *e.Title
	}
	if e.Description != nil {
		d.Description = *e.Description
	}
	if e.CategoryID != nil {
		d.CategoryID = *e.CategoryID
	}
	if e.Tags != nil {
		d.Tags = *e.Tags
	}
	d.ImagePath = e.ImagePath
	return d
}

func (a *App) editArticle(ctx context.Context, id string, edit articleEdit) error {
	id, err := validation.SanitizeID(id)
	if err != nil {
		return UsageError("article edit", err)
	}
	if ok, err := a.requireSession(ctx, guard.RouteViewArticle); !ok {
		return err
	}
	art, err := a.detail.Load(ctx, id)
	if err != nil {
		return err
	}
	if !a.detail.CanEdit() {
		a.printer.Warning(views.ErrNotOwner.Error())
		return UsageError("article edit", views.ErrNotOwner)
	}
	if err := a.detail.Save(ctx, edit.apply(views.DraftOf(art))); err != nil {
		return invalid(guard.RouteViewArticle, err)
	}
	a.printArticle(a.detail.Article())
	return nil
}

// -----------------------------------------------------------------------------
// Reactions
// -----------------------------------------------------------------------------

// react loads the feed so the reaction starts from what the user sees,
// then waits for the backend to settle it.
func (a *App) react(ctx context.Context, command, id string, action datatypes.ReactionType) error {
	id, err := validation.SanitizeID(id)
	if err != nil {
		return UsageError(command, err)
	}
	if ok, err := a.requireSession(ctx, guard.RouteFeed); !ok {
		return err
	}
	if _, err := a.feed.Load(ctx); err != nil {
		return err
	}
	res, err := a.feed.ReactAndWait(ctx, id, action)
	if errors.Is(err, reaction.ErrUnknownArticle) {
		return UsageError(command, fmt.Errorf("article %s is not in your feed", id))
	}
	if err != nil {
		return err
	}
	for _, art := range a.feed.Articles() {
		if art.ID == res.ArticleID {
			a.printer.Raw(ux.RenderArticleCard(art, ux.CardOptions{Mark: a.feed.Mark(art.ID)}))
		}
	}
	return nil
}

func (a *App) block(ctx context.Context, id string) error {
	id, err := validation.SanitizeID(id)
	if err != nil {
		return UsageError("feed block", err)
	}
	if ok, err := a.requireSession(ctx, guard.RouteFeed); !ok {
		return err
	}
	if _, err := a.feed.Load(ctx); err != nil {
		return err
	}
	confirmed := true
	if a.interactive {
		var err error
		if confirmed, err = a.prompter.Confirm(ctx, "Block this article? It will not be shown again."); err != nil {
			return err
		}
	}
	if !confirmed {
		return nil
	}
	if err := a.feed.Block(ctx, id); err != nil {
		if errors.Is(err, reaction.ErrUnknownArticle) {
			return UsageError("feed block", fmt.Errorf("article %s is not in your feed", id))
		}
		return err
	}
	return nil
}
