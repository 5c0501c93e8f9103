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
	"strings"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/reaction"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/tui"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/views"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/ux"
	"github.com/AleutianAI/inkwell/pkg/validation"
)

// screenInput carries flag values to the screen that needs them, so a
// command can pre-fill a form instead of prompting.
type screenInput struct {
	signIn     *forms.SignInForm
	signUp     *forms.SignUpForm
	categories []string
	article    *ArticleInput
}

// registerScreens binds one view per route.
func (a *App) registerScreens() {
	a.router.Handle(guard.RouteSignIn, guard.ViewFunc(a.showSignIn))
	a.router.Handle(guard.RouteSignUp, guard.ViewFunc(a.showSignUp))
	a.router.Handle(guard.RouteSelectCategory, guard.ViewFunc(a.showSelectCategory))
	a.router.Handle(guard.RouteFeed, guard.ViewFunc(a.showFeed))
	a.router.Handle(guard.RouteViewArticle, guard.ViewFunc(a.showArticle))
	a.router.Handle(guard.RouteMyArticles, guard.ViewFunc(a.showMyArticles))
	a.router.Handle(guard.RouteProfile, guard.ViewFunc(a.showProfile))
	a.router.Handle(guard.RouteCreateArticle, guard.ViewFunc(a.showCreateArticle))
}

// forward follows next when a user is at the terminal. Otherwise it
// prints where the flow would continue and stops.
func (a *App) forward(next string) string {
	if next == "" || a.interactive {
		return next
	}
	a.printer.Info("next: " + next)
	return ""
}

// prompt runs a form. ErrAborted ends the flow quietly.
func (a *App) prompt(fn func() error) (bool, error) {
	err := fn()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrAborted):
		a.printer.Muted("Cancelled")
		return false, nil
	default:
		return false, err
	}
}

// invalid turns form errors into usage errors for route.
func invalid(route guard.Route, err error) error {
	if _, ok := forms.AsFieldErrors(err); ok {
		return UsageError(string(route), err)
	}
	return err
}

// -----------------------------------------------------------------------------
// Authentication
// -----------------------------------------------------------------------------

func (a *App) showSignIn(ctx context.Context, _ guard.Request) (string, error) {
	form := a.input.signIn
	a.input.signIn = nil

	if form == nil {
		if next := a.signIn.Enter(); next != "" {
			return a.forward(next), nil
		}
		if !a.interactive {
			a.printer.Warning("Sign in required")
			a.printer.Info("run: inkwell signin --email <email> --password-stdin")
			return "", nil
		}
		form = &forms.SignInForm{}
		a.printer.Title("Inkwell")
		if ok, err := a.prompt(func() error { return a.prompter.SignIn(ctx, form) }); !ok {
			return "", err
		}
	}

	next, err := a.signIn.Submit(ctx, *form)
	if err != nil {
		return "", invalid(guard.RouteSignIn, err)
	}
	if u, ok := a.sessions.Current(); ok {
		a.printer.Success("Welcome back, " + u.FirstName)
	}
	return a.forward(next), nil
}

func (a *App) showSignUp(ctx context.Context, _ guard.Request) (string, error) {
	form := a.input.signUp
	a.input.signUp = nil

	if form == nil {
		if !a.interactive {
			return "", UsageError(string(guard.RouteSignUp), ErrNoInput)
		}
		form = &forms.SignUpForm{}
		if ok, err := a.prompt(func() error { return a.prompter.SignUp(ctx, form) }); !ok {
			return "", err
		}
	}

	next, err := a.signUp.Submit(ctx, *form)
	if err != nil {
		return "", invalid(guard.RouteSignUp, err)
	}
	a.printer.Success("Account created")
	a.printer.Info("user id: " + a.sessions.UserID())
	return a.forward(next), nil
}

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

func (a *App) showSelectCategory(ctx context.Context, req guard.Request) (string, error) {
	userID := req.Param("userId")
	if userID == "" {
		userID = a.sessions.UserID()
	} else if err := validation.ValidateID(userID); err != nil {
		return "", UsageError(string(guard.RouteSelectCategory), fmt.Errorf("userId: %w", err))
	}
	cats, err := a.categories.Load(ctx)
	if err != nil {
		return "", err
	}

	ids := a.input.categories
	a.input.categories = nil
	if err := validation.ValidateIDs(ids); err != nil {
		return "", UsageError(string(guard.RouteSelectCategory), err)
	}
	if ids == nil {
		if !a.interactive {
			a.printCategories(cats, a.categories.Selected())
			return "", nil
		}
		ids = a.categories.Selected()
		if ok, err := a.prompt(func() error {
			return a.prompter.Categories(ctx, "Pick the topics you want to read about", cats, &ids)
		}); !ok {
			return "", err
		}
	}

	a.categories.Select(ids)
	next, err := a.categories.Save(ctx, userID)
	if err != nil {
		return "", err
	}
	return a.forward(next), nil
}

func (a *App) printCategories(cats []datatypes.Category, selected []string) {
	a.printer.Title("Categories")
	for _, c := range cats {
		mark := " "
		for _, id := range selected {
			if id == c.ID {
				mark = "*"
			}
		}
		if ux.GetPersonality().Level == ux.PersonalityMachine {
			a.printer.Raw(fmt.Sprintf("%s\t%s\t%s", c.ID, c.Name, strings.TrimSpace(mark)))
			continue
		}
		a.printer.Raw(fmt.Sprintf(" %s %-12s %s", mark, c.Name, ux.Styles.Muted.Render(c.ID)))
	}
}

// -----------------------------------------------------------------------------
// Feed
// -----------------------------------------------------------------------------

func (a *App) showFeed(ctx context.Context, _ guard.Request) (string, error) {
	articles, err := a.feed.Load(ctx)
	if err != nil {
		return "", err
	}
	if !a.interactive {
		a.printFeed(articles)
		return "", nil
	}

	// A sign-out from another terminal closes the browser.
	tctx, cancel := context.WithCancel(ctx)
	defer cancel()
	unsubscribe := a.sessions.Subscribe(func(_ datatypes.User, present bool) {
		if !present {
			cancel()
		}
	})
	defer unsubscribe()

	open, err := a.runFeed(tctx, a.feed)
	if err != nil && tctx.Err() == nil {
		return "", err
	}
	if open == tui.LogoutTarget {
		unsubscribe()
		if err := a.logout(); err != nil {
			return "", err
		}
		return string(guard.RouteSignIn), nil
	}
	if !a.sessions.Authenticated() {
		a.printer.Warning("Signed out")
		return string(guard.RouteSignIn), nil
	}
	return open, nil
}

func (a *App) printFeed(articles []datatypes.Article) {
	if len(articles) == 0 {
		a.printer.Info("Your feed is empty")
		return
	}
	a.printer.Title("Your feed")
	for _, art := range articles {
		a.printer.Raw(ux.RenderArticleCard(art, ux.CardOptions{Mark: a.feed.Mark(art.ID)}))
	}
}

// -----------------------------------------------------------------------------
// Articles
// -----------------------------------------------------------------------------

func (a *App) showArticle(ctx context.Context, req guard.Request) (string, error) {
	id, err := validation.SanitizeID(req.Param("articleId"))
	if err != nil {
		return "", UsageError(string(guard.RouteViewArticle), fmt.Errorf("articleId: %w", err))
	}
	art, err := a.detail.Load(ctx, id)
	if err != nil {
		return "", err
	}
	a.printArticle(art)

	if !a.interactive || !a.detail.CanEdit() {
		return "", nil
	}
	edit, err := a.prompter.Confirm(ctx, "Edit this article?")
	if err != nil || !edit {
		return "", err
	}

	draft := views.DraftOf(art)
	in := ArticleInput{
		Title:       draft.Title,
		Description: draft.Description,
		Tags:        strings.Join(draft.Tags, ", "),
		CategoryID:  draft.CategoryID,
	}
	if ok, err := a.prompt(func() error {
		return a.prompter.Article(ctx, "Edit article", &in, a.detail.Categories())
	}); !ok {
		return "", err
	}
	draft.Title = in.Title
	draft.Description = in.Description
	draft.Tags = datatypes.SplitTags(in.Tags)
	draft.CategoryID = in.CategoryID
	draft.ImagePath = strings.TrimSpace(in.ImagePath)
	if err := a.busy("Saving article", func() error { return a.detail.Save(ctx, draft) }); err != nil {
		return "", invalid(guard.RouteViewArticle, err)
	}
	a.printArticle(a.detail.Article())
	return "", nil
}

func (a *App) printArticle(art datatypes.Article) {
	user, _ := a.sessions.Current()
	mark := views.MarkOf(reaction.StateOf(user, art.ID))
	a.printer.Raw(ux.RenderArticleDetail(art, a.detail.CategoryName(), mark))
}

func (a *App) showMyArticles(ctx context.Context, _ guard.Request) (string, error) {
	articles, err := a.mine.Load(ctx)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		a.printer.Info("You have not published anything yet")
		return "", nil
	}
	a.printer.Title("My articles")
	for _, art := range articles {
		if ux.GetPersonality().Level == ux.PersonalityMachine {
			a.printer.Raw(fmt.Sprintf("%s\t%s\t%d\t%d\t%d", art.ID, art.Title, art.Likes, art.Dislikes, art.BlockCount))
			continue
		}
		a.printer.Raw(ux.RenderArticleCard(art, ux.CardOptions{}))
		if art.BlockCount > 0 {
			a.printer.Muted(fmt.Sprintf("  blocked by %d readers", art.BlockCount))
		}
	}
	return "", nil
}

func (a *App) showCreateArticle(ctx context.Context, _ guard.Request) (string, error) {
	cats, err := a.create.Categories(ctx)
	if err != nil {
		return "", err
	}

	in := a.input.article
	a.input.article = nil
	if in == nil {
		if !a.interactive {
			return "", UsageError(string(guard.RouteCreateArticle), ErrNoInput)
		}
		in = &ArticleInput{}
		if ok, err := a.prompt(func() error { return a.prompter.Article(ctx, "New article", in, cats) }); !ok {
			return "", err
		}
	}

	for _, tag := range datatypes.SplitTags(in.Tags) {
		err := a.create.AddTag(tag)
		switch {
		case errors.Is(err, datatypes.ErrTooManyTags):
			return "", UsageError(string(guard.RouteCreateArticle),
				forms.FieldErrors{{Field: "tags", Message: "Max 5 tags allowed"}})
		case err != nil:
			a.printer.Warning(fmt.Sprintf("%s: %v", tag, err))
		}
	}

	next, err := a.create.Submit(ctx, forms.ArticleForm{
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		ImagePath:   strings.TrimSpace(in.ImagePath),
	})
	if err != nil {
		return "", invalid(guard.RouteCreateArticle, err)
	}
	return a.forward(next), nil
}

// -----------------------------------------------------------------------------
// Profile
// -----------------------------------------------------------------------------

func (a *App) showProfile(ctx context.Context, _ guard.Request) (string, error) {
	user, _, err := a.profile.Load(ctx)
	if err != nil && user.ID == "" {
		return "", err
	}
	a.printer.Raw(ux.RenderProfile(user))
	if !a.interactive {
		return "", nil
	}

	edit, err := a.prompter.Confirm(ctx, "Edit your profile?")
	if err != nil || !edit {
		return "", err
	}
	var (
		field datatypes.ProfileField
		value string
	)
	if ok, err := a.prompt(func() error { return a.prompter.ProfileField(ctx, user, &field, &value) }); !ok {
		return "", err
	}
	if err := a.busy("Saving profile", func() error { return a.profile.SaveField(ctx, field, value) }); err != nil {
		return "", invalid(guard.RouteProfile, err)
	}
	return "", nil
}

// busy shows a spinner around fn on interactive terminals.
func (a *App) busy(message string, fn func() error) error {
	if !a.interactive {
		return fn()
	}
	spin := ux.NewSpinner(a.printer.Out, message)
	spin.Start()
	defer spin.Stop()
	return fn()
}
