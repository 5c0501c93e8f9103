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
	"errors"
	"slices"
	"sync"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
)

// CategorySelection is the controller behind "/select-category".
type CategorySelection struct {
	deps Deps

	mu         sync.Mutex
	categories []datatypes.Category
	selected   []string
}

func NewCategorySelection(d Deps) *CategorySelection {
	return &CategorySelection{deps: d.withDefaults()}
}

// Load fetches the catalog. The selection starts from the session user's
// current preferences.
func (c *CategorySelection) Load(ctx context.Context) ([]datatypes.Category, error) {
	cats, err := c.deps.API.GetAllCategories(ctx)
	if err != nil {
		return nil, c.deps.fail(api.OpGetAllCategories, err, "")
	}
	var selected []string
	if u, ok := c.deps.Sessions.Current(); ok {
		selected = datatypes.CategoryIDs(u.Preferences)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = cats
	c.selected = selected
	return slices.Clone(cats), nil
}

// Categories returns the loaded catalog.
func (c *CategorySelection) Categories() []datatypes.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.categories)
}

// Toggle flips id in the selection and reports whether it is now selected.
func (c *CategorySelection) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.selected, id); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		return false
	}
	c.selected = append(c.selected, id)
	return true
}

// Select replaces the selection.
func (c *CategorySelection) Select(ids []string) {
	c.mu.Lock()
	c.selected = slices.Clone(ids)
	c.mu.Unlock()
}

// Selected returns the selected ids in the order they were picked.
func (c *CategorySelection) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.selected)
}

// Save stores the selection for userID and returns "/".
//
// When userID is the session user, the session preferences are updated
// too, resolving ids against the loaded catalog.
func (c *CategorySelection) Save(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("select categories: user id is required")
	}
	c.mu.Lock()
	ids := slices.Clone(c.selected)
	catalog := slices.Clone(c.categories)
	c.mu.Unlock()

	if len(ids) == 0 {
		c.deps.Notifier.Alert(MsgNoSelection)
		return "", errors.New("select categories: nothing selected")
	}

	req := datatypes.SelectCategoryRequest{UserID: userID, CategoryIDs: ids}
	if err := c.deps.API.SelectCategories(ctx, req); err != nil {
		return "", c.deps.fail(api.OpSelectCategory, err, "")
	}

	if c.deps.Sessions.UserID() == userID {
		prefs := resolveCategories(catalog, ids)
		if err := c.deps.Sessions.Update(func(u *datatypes.User) { u.Preferences = prefs }); err != nil {
			c.deps.Logger.Warn("session preferences not updated", "error", err)
		}
	}
	c.deps.Notifier.Success("Categories saved")
	return string(guard.RouteSignIn), nil
}

// resolveCategories maps ids to catalog entries in id order. Unknown ids
// keep their id with an empty name.
func resolveCategories(catalog []datatypes.Category, ids []string) []datatypes.Category {
	out := make([]datatypes.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := datatypes.FindCategory(catalog, id); ok {
			out = append(out, c)
		} else {
			out = append(out, datatypes.Category{ID: id})
		}
	}
	return out
}
