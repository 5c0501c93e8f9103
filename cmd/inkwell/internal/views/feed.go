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
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/reaction"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/ux"
)

// MsgReactionFailed is shown when a reaction is rolled back.
const MsgReactionFailed = "Your reaction could not be saved"

// Feed is the controller behind "/feed".
type Feed struct {
	deps Deps
	rec  *reaction.Reconciler
}

func NewFeed(d Deps) *Feed {
	d = d.withDefaults()
	return &Feed{
		deps: d,
		rec:  reaction.NewReconciler(d.API, d.Sessions, reaction.NewFeed(nil), d.Logger, d.Metrics),
	}
}

// Reconciler exposes the reaction engine, e.g. for the TUI.
func (c *Feed) Reconciler() *reaction.Reconciler { return c.rec }

// Load fetches the personalized feed for the session user.
func (c *Feed) Load(ctx context.Context) ([]datatypes.Article, error) {
	userID, err := c.deps.userID()
	if err != nil {
		return nil, err
	}
	articles, err := c.deps.API.GetAllArticles(ctx, userID)
	if err != nil {
		return nil, c.deps.fail(api.OpGetAllArticles, err, "")
	}
	c.rec.Feed().Replace(articles)
	return c.rec.Feed().Articles(), nil
}

// Articles returns the feed as currently shown, optimistic updates
// included.
func (c *Feed) Articles() []datatypes.Article { return c.rec.Feed().Articles() }

// Mark returns the session user's reaction to articleID for display.
func (c *Feed) Mark(articleID string) ux.Mark { return MarkOf(c.rec.State(articleID)) }

// Like toggles a like without waiting for the backend.
func (c *Feed) Like(ctx context.Context, articleID string) (*reaction.Pending, error) {
	return c.rec.React(ctx, articleID, datatypes.ReactionLike)
}

// Dislike toggles a dislike without waiting for the backend.
func (c *Feed) Dislike(ctx context.Context, articleID string) (*reaction.Pending, error) {
	return c.rec.React(ctx, articleID, datatypes.ReactionDislike)
}

// ReactAndWait applies a reaction and waits for it to be reconciled. A
// rollback alerts MsgReactionFailed.
func (c *Feed) ReactAndWait(ctx context.Context, articleID string, action datatypes.ReactionType) (reaction.Result, error) {
	res, err := c.rec.ReactAndWait(ctx, articleID, action)
	if err != nil {
		return res, err
	}
	c.Settled(res)
	return res, res.Err
}

// Settled reports a reconciled result to the user.
func (c *Feed) Settled(res reaction.Result) {
	if res.Outcome == reaction.OutcomeRolledBack && !api.IsCancelled(res.Err) {
		c.deps.Notifier.Alert(MsgReactionFailed)
	}
}

// Block hides articleID for good and drops it from the feed.
func (c *Feed) Block(ctx context.Context, articleID string) error {
	if err := c.rec.Block(ctx, articleID); err != nil {
		if _, isAPI := api.KindOf(err); !isAPI {
			return err
		}
		return c.deps.fail(api.OpBlockArticle, err, "Article could not be blocked")
	}
	c.deps.Notifier.Success("Article blocked")
	return nil
}

// Open returns the detail target for articleID.
func (c *Feed) Open(articleID string) string { return openTarget(articleID) }

// MarkOf maps a reaction state to its card mark.
func MarkOf(s reaction.State) ux.Mark {
	switch s {
	case reaction.StateLiked:
		return ux.MarkLiked
	case reaction.StateDisliked:
		return ux.MarkDisliked
	default:
		return ux.MarkNone
	}
}
