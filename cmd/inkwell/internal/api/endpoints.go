// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
)

// Operation names, used in errors, spans and metrics.
const (
	OpSignUp           = "signup"
	OpSignIn           = "signin"
	OpEditProfile      = "edit_profile"
	OpGetAllCategories = "get_all_categories"
	OpSelectCategory   = "select_category"
	OpCreateArticle    = "create_article"
	OpGetAllArticles   = "get_all_articles"
	OpViewArticle      = "view_article"
	OpMyArticles       = "my_articles"
	OpEditArticle      = "edit_article"
	OpLikeArticle      = "like_article"
	OpDislikeArticle   = "dislike_article"
	OpBlockArticle     = "block_article"
)

// SignUp registers a user. The response carries only the new user id.
func (c *Client) SignUp(ctx context.Context, req datatypes.SignUpRequest) (datatypes.SignUpResponse, error) {
	var resp datatypes.SignUpResponse
	if err := c.doJSON(ctx, OpSignUp, http.MethodPost, "/signup", req, &resp); err != nil {
		return resp, err
	}
	if !resp.Success {
		return resp, unsuccessful(OpSignUp, resp.Message, "registration failed")
	}
	return resp, nil
}

// SignIn authenticates and returns the full user record.
func (c *Client) SignIn(ctx context.Context, req datatypes.SignInRequest) (datatypes.User, error) {
	var resp datatypes.SignInResponse
	if err := c.doJSON(ctx, OpSignIn, http.MethodPost, "/signin", req, &resp); err != nil {
		return datatypes.User{}, err
	}
	if !resp.Success || resp.UserData == nil {
		return datatypes.User{}, unsuccessful(OpSignIn, resp.Message, "invalid email or password")
	}
	return *resp.UserData, nil
}

// EditProfileField updates one profile attribute.
func (c *Client) EditProfileField(ctx context.Context, req datatypes.ProfileFieldUpdate) error {
	return c.status(ctx, OpEditProfile, http.MethodPatch, "/edit-profile", req)
}

// EditPreferences replaces the user's preferred categories.
func (c *Client) EditPreferences(ctx context.Context, req datatypes.PreferencesUpdate) error {
	return c.status(ctx, OpEditProfile, http.MethodPatch, "/edit-profile", req)
}

// GetAllCategories returns the category reference list.
//
// The first successful result is cached for the life of the client;
// concurrent first calls share one request.
func (c *Client) GetAllCategories(ctx context.Context) ([]datatypes.Category, error) {
	c.categoriesMu.RLock()
	cached := c.categoriesCache
	c.categoriesMu.RUnlock()
	if cached != nil {
		return slices.Clone(cached), nil
	}

	v, err, _ := c.categories.Do(OpGetAllCategories, func() (any, error) {
		var resp datatypes.CategoriesResponse
		if err := c.doJSON(ctx, OpGetAllCategories, http.MethodGet, "/get-all-categories", nil, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, unsuccessful(OpGetAllCategories, "", "could not load categories")
		}
		cats := resp.AllCategories
		if cats == nil {
			cats = []datatypes.Category{}
		}
		c.categoriesMu.Lock()
		c.categoriesCache = cats
		c.categoriesMu.Unlock()
		return cats, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]datatypes.Category)), nil
}

// SelectCategories sets the preferences of a freshly registered user.
func (c *Client) SelectCategories(ctx context.Context, req datatypes.SelectCategoryRequest) error {
	return c.status(ctx, OpSelectCategory, http.MethodPost, "/select-category", req)
}

// CreateArticle publishes an article as multipart form data.
func (c *Client) CreateArticle(ctx context.Context, req datatypes.CreateArticleRequest) error {
	var resp datatypes.StatusResponse
	if err := c.doMultipart(ctx, OpCreateArticle, http.MethodPost, "/create-article", req.FormFields(), req.Image, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return unsuccessful(OpCreateArticle, resp.Message, "could not create article")
	}
	return nil
}

// GetAllArticles returns the feed for userID, blocked articles excluded by
// the backend.
func (c *Client) GetAllArticles(ctx context.Context, userID string) ([]datatypes.Article, error) {
	var resp datatypes.ArticlesResponse
	if err := c.doJSON(ctx, OpGetAllArticles, http.MethodPost, "/get-all-articles", datatypes.UserRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return resp.AllArticles, nil
}

func (c *Client) ViewArticle(ctx context.Context, articleID string) (datatypes.Article, error) {
	var resp datatypes.ViewArticleResponse
	if err := c.doJSON(ctx, OpViewArticle, http.MethodPost, "/view-article", datatypes.ViewArticleRequest{ArticleID: articleID}, &resp); err != nil {
		return datatypes.Article{}, err
	}
	if resp.Article == nil {
		return datatypes.Article{}, unsuccessful(OpViewArticle, "", "article not found")
	}
	return *resp.Article, nil
}

func (c *Client) MyArticles(ctx context.Context, userID string) ([]datatypes.Article, error) {
	var resp datatypes.MyArticlesResponse
	if err := c.doJSON(ctx, OpMyArticles, http.MethodPost, "/my-articles", datatypes.UserRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return resp.MyArticles, nil
}

// EditArticle sends only the fields set on req, plus articleId.
func (c *Client) EditArticle(ctx context.Context, req datatypes.EditArticleRequest) error {
	var resp datatypes.StatusResponse
	if err := c.doMultipart(ctx, OpEditArticle, http.MethodPut, "/edit-article", req.FormFields(), req.Image, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return unsuccessful(OpEditArticle, resp.Message, "failed to update article")
	}
	return nil
}

// React sends a like or dislike and returns the backend's updated user.
// The endpoint is chosen by req.Type.
func (c *Client) React(ctx context.Context, req datatypes.ReactionRequest) (datatypes.User, error) {
	op, path := OpLikeArticle, "/like-article"
	if req.Type == datatypes.ReactionDislike {
		op, path = OpDislikeArticle, "/dislike-article"
	}
	var resp datatypes.ReactionResponse
	if err := c.doJSON(ctx, op, http.MethodPatch, path, req, &resp); err != nil {
		return datatypes.User{}, err
	}
	if !resp.Success || resp.UserData == nil {
		return datatypes.User{}, unsuccessful(op, resp.Message, "reaction was not recorded")
	}
	return *resp.UserData, nil
}

func (c *Client) BlockArticle(ctx context.Context, req datatypes.BlockRequest) error {
	return c.status(ctx, OpBlockArticle, http.MethodPost, "/block-article", req)
}

// status posts a JSON body to an endpoint answering {success}.
func (c *Client) status(ctx context.Context, op, method, path string, in any) error {
	var resp datatypes.StatusResponse
	if err := c.doJSON(ctx, op, method, path, in, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return unsuccessful(op, resp.Message, "request was not successful")
	}
	return nil
}
