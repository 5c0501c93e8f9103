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
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"golang.org/x/sync/errgroup"
)

// openImage opens path for upload. The caller closes the returned file.
func openImage(path string) (*datatypes.ImageUpload, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	return &datatypes.ImageUpload{Filename: filepath.Base(path), Content: f}, f, nil
}

// =============================================================================
// Create article
// =============================================================================

// CreateArticle is the controller behind "/create-article".
type CreateArticle struct {
	deps Deps

	mu   sync.Mutex
	tags []string
}

func NewCreateArticle(d Deps) *CreateArticle { return &CreateArticle{deps: d.withDefaults()} }

// Categories fetches the catalog for the category picker.
func (c *CreateArticle) Categories(ctx context.Context) ([]datatypes.Category, error) {
	cats, err := c.deps.API.GetAllCategories(ctx)
	if err != nil {
		return nil, c.deps.fail(api.OpGetAllCategories, err, "")
	}
	return cats, nil
}

// AddTag appends a trimmed tag to the draft. Duplicates, blanks and a sixth
// tag are rejected with the datatypes errors.
func (c *CreateArticle) AddTag(tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	tags, err := datatypes.AddTag(c.tags, tag)
	if err != nil {
		return err
	}
	c.tags = tags
	return nil
}

// RemoveTag drops tag from the draft.
func (c *CreateArticle) RemoveTag(tag string) {
	c.mu.Lock()
	c.tags = datatypes.RemoveTag(c.tags, tag)
	c.mu.Unlock()
}

// Tags returns the draft tags in insertion order.
func (c *CreateArticle) Tags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tags)
}

// Submit publishes the article and returns "/feed".
//
// Tags come from the draft when form.Tags is nil. Any failure after
// validation alerts MsgCreateFailed.
func (c *CreateArticle) Submit(ctx context.Context, form forms.ArticleForm) (string, error) {
	if form.Tags == nil {
		form.Tags = c.Tags()
	}
	if err := forms.Validate(form); err != nil {
		return "", err
	}
	userID, err := c.deps.userID()
	if err != nil {
		return "", err
	}

	req := datatypes.CreateArticleRequest{
		Title:       form.Title,
		Description: form.Description,
		Tags:        form.Tags,
		CategoryID:  form.CategoryID,
		UserID:      userID,
	}
	if form.ImagePath != "" {
		img, f, err := openImage(form.ImagePath)
		if err != nil {
			c.deps.Notifier.Alert(MsgCreateFailed)
			return "", err
		}
		defer f.Close()
		req.Image = img
	}

	if err := c.deps.API.CreateArticle(ctx, req); err != nil {
		if !api.IsCancelled(err) {
			c.deps.Notifier.Alert(MsgCreateFailed)
		}
		c.deps.Logger.Warn("request failed", "op", api.OpCreateArticle, "error", err)
		return "", fmt.Errorf("%s: %w", api.OpCreateArticle, err)
	}

	c.mu.Lock()
	c.tags = nil
	c.mu.Unlock()
	c.deps.Notifier.Success("Article published")
	return string(guard.RouteFeed), nil
}

// =============================================================================
// Article detail
// =============================================================================

// ArticleDraft is the editable part of an article.
type ArticleDraft struct {
	Title       string
	Description string
	CategoryID  string
	Tags        []string

	// ImagePath, when set, uploads a replacement image.
	ImagePath string
}

// DraftOf returns a draft holding a's current values.
func DraftOf(a datatypes.Article) ArticleDraft {
	return ArticleDraft{
		Title:       a.Title,
		Description: a.Description,
		CategoryID:  a.Category,
		Tags:        slices.Clone(a.Tags),
	}
}

// Changes returns the fields of d that differ from orig, addressed to
// orig's id. The image is not included.
func (d ArticleDraft) Changes(orig datatypes.Article) datatypes.EditArticleRequest {
	req := datatypes.EditArticleRequest{ArticleID: orig.ID}
	if d.Title != orig.Title {
		req.Title = &d.Title
	}
	if d.Description != orig.Description {
		req.Description = &d.Description
	}
	if d.CategoryID != orig.Category {
		req.CategoryID = &d.CategoryID
	}
	if !slices.Equal(d.Tags, orig.Tags) {
		tags := slices.Clone(d.Tags)
		req.Tags = &tags
	}
	return req
}

// ArticleDetail is the controller behind "/view-article".
type ArticleDetail struct {
	deps Deps

	mu         sync.RWMutex
	article    datatypes.Article
	loaded     bool
	categories []datatypes.Category
}

func NewArticleDetail(d Deps) *ArticleDetail { return &ArticleDetail{deps: d.withDefaults()} }

// Load fetches the article and the category catalog concurrently.
//
// Only the article is required. A catalog failure is logged and leaves
// category names unresolved.
func (c *ArticleDetail) Load(ctx context.Context, articleID string) (datatypes.Article, error) {
	if articleID == "" {
		return datatypes.Article{}, fmt.Errorf("%s: article id is required", api.OpViewArticle)
	}

	var (
		article datatypes.Article
		cats    []datatypes.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		article, err = c.deps.API.ViewArticle(gctx, articleID)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = c.deps.API.GetAllCategories(gctx)
		if err != nil {
			c.deps.Logger.Warn("categories unavailable", "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return datatypes.Article{}, c.deps.fail(api.OpViewArticle, err, "")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.article = article
	c.categories = cats
	c.loaded = true
	return article.Clone(), nil
}

// Article returns the loaded article.
func (c *ArticleDetail) Article() datatypes.Article {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.article.Clone()
}

// Categories returns the loaded catalog.
func (c *ArticleDetail) Categories() []datatypes.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.categories)
}

// CategoryName resolves the article's category, falling back to its id.
func (c *ArticleDetail) CategoryName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cat, ok := datatypes.FindCategory(c.categories, c.article.Category); ok {
		return cat.Name
	}
	return c.article.Category
}

// CanEdit reports whether the session user wrote the loaded article.
func (c *ArticleDetail) CanEdit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	uid := c.deps.Sessions.UserID()
	return c.loaded && uid != "" && c.article.UserID == uid
}

// Save sends the fields of draft that changed, plus the article id.
//
// # Outputs
//
//   - error: ErrNotOwner, forms.FieldErrors, or the request error. A failed
//     request alerts MsgUpdateFailed. Saving an unchanged draft sends
//     nothing.
func (c *ArticleDetail) Save(ctx context.Context, draft ArticleDraft) error {
	if !c.CanEdit() {
		return ErrNotOwner
	}
	orig := c.Article()
	req := draft.Changes(orig)

	if err := forms.Validate(forms.ArticleEditForm{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		CategoryID:  req.CategoryID,
		ImagePath:   draft.ImagePath,
	}); err != nil {
		return err
	}

	if draft.ImagePath != "" {
		img, f, err := openImage(draft.ImagePath)
		if err != nil {
			return err
		}
		defer f.Close()
		req.Image = img
	}
	if req.Empty() {
		c.deps.Notifier.Alert(MsgNoChanges)
		return nil
	}

	if err := c.deps.API.EditArticle(ctx, req); err != nil {
		if !api.IsCancelled(err) {
			c.deps.Notifier.Alert(MsgUpdateFailed)
		}
		c.deps.Logger.Warn("request failed", "op", api.OpEditArticle, "error", err)
		return fmt.Errorf("%s: %w", api.OpEditArticle, err)
	}

	c.mu.Lock()
	c.article.Title = draft.Title
	c.article.Description = draft.Description
	c.article.Category = draft.CategoryID
	c.article.Tags = slices.Clone(draft.Tags)
	c.mu.Unlock()

	// The backend names the stored image, so a new one is fetched back.
	if req.Image != nil {
		fresh, err := c.deps.API.ViewArticle(ctx, orig.ID)
		if err != nil {
			c.deps.Logger.Warn("reload edited article failed", "article_id", orig.ID, "error", err)
		} else {
			c.mu.Lock()
			c.article = fresh
			c.mu.Unlock()
		}
	}
	c.deps.Notifier.Success("Article updated")
	return nil
}

// =============================================================================
// My articles
// =============================================================================

// MyArticles is the controller behind "/my-articles".
type MyArticles struct {
	deps Deps
}

func NewMyArticles(d Deps) *MyArticles { return &MyArticles{deps: d.withDefaults()} }

// Load returns the session user's own articles.
func (c *MyArticles) Load(ctx context.Context) ([]datatypes.Article, error) {
	userID, err := c.deps.userID()
	if err != nil {
		return nil, err
	}
	articles, err := c.deps.API.MyArticles(ctx, userID)
	if err != nil {
		return nil, c.deps.fail(api.OpMyArticles, err, "")
	}
	return articles, nil
}

// Open returns the detail target for articleID.
func (c *MyArticles) Open(articleID string) string { return openTarget(articleID) }

func openTarget(articleID string) string {
	return guard.To(guard.RouteViewArticle, "articleId", articleID)
}
