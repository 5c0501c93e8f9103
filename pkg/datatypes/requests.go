// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-openapi/strfmt"
)

// =============================================================================
// Authentication
// =============================================================================

// SignUpRequest is the body of POST /signup.
type SignUpRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	DateOfBirth     string `json:"dateOfBirth"`
	Password        Secret `json:"password"`
	ConfirmPassword Secret `json:"confirmPassword"`
}

// SignUpResponse is the body returned by POST /signup.
type SignUpResponse struct {
	Success   bool   `json:"success"`
	NewUserID string `json:"newUserId,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (r SignUpResponse) Succeeded() bool { return r.Success }

// SignInRequest is the body of POST /signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password Secret `json:"password"`
}

// SignInResponse is the body returned by POST /signin.
type SignInResponse struct {
	Success  bool   `json:"success"`
	UserData *User  `json:"userData,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (r SignInResponse) Succeeded() bool { return r.Success }

// =============================================================================
// Profile
// =============================================================================

// ProfileField names a single editable profile attribute.
type ProfileField string

const (
	FieldFirstName   ProfileField = "firstName"
	FieldLastName    ProfileField = "lastName"
	FieldEmail       ProfileField = "email"
	FieldPhone       ProfileField = "phone"
	FieldDateOfBirth ProfileField = "dob"
)

// ProfileFields lists the editable fields in display order.
var ProfileFields = []ProfileField{
	FieldFirstName, FieldLastName, FieldEmail, FieldPhone, FieldDateOfBirth,
}

// ParseProfileField maps a wire name to a ProfileField.
func ParseProfileField(s string) (ProfileField, error) {
	for _, f := range ProfileFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown profile field %q", s)
}

// Label returns the human-readable name of the field.
func (f ProfileField) Label() string {
	switch f {
	case FieldFirstName:
		return "First Name"
	case FieldLastName:
		return "Last Name"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	case FieldDateOfBirth:
		return "Date of Birth"
	default:
		return string(f)
	}
}

// Get reads the field from u.
func (f ProfileField) Get(u User) string {
	switch f {
	case FieldFirstName:
		return u.FirstName
	case FieldLastName:
		return u.LastName
	case FieldEmail:
		return string(u.Email)
	case FieldPhone:
		return u.Phone
	case FieldDateOfBirth:
		return u.DateOfBirth
	default:
		return ""
	}
}

// Set returns a copy of u with the field replaced.
func (f ProfileField) Set(u User, value string) User {
	c := u.Clone()
	switch f {
	case FieldFirstName:
		c.FirstName = value
	case FieldLastName:
		c.LastName = value
	case FieldEmail:
		c.Email = strfmt.Email(value)
	case FieldPhone:
		c.Phone = value
	case FieldDateOfBirth:
		c.DateOfBirth = value
	}
	return c
}

// ProfileFieldUpdate is the body of PATCH /edit-profile for a single field.
//
// It marshals as {"userId": ..., "<field>": value}.
type ProfileFieldUpdate struct {
	UserID string
	Field  ProfileField
	Value  string
}

// MarshalJSON writes the field under its own wire name.
func (p ProfileFieldUpdate) MarshalJSON() ([]byte, error) {
	if p.Field == "" {
		return nil, fmt.Errorf("profile update for user %q has no field", p.UserID)
	}
	return json.Marshal(map[string]string{
		"userId":        p.UserID,
		string(p.Field): p.Value,
	})
}

// PreferencesUpdate is the body of PATCH /edit-profile for preferences.
type PreferencesUpdate struct {
	UserID      string     `json:"userId"`
	Preferences []Category `json:"preferences"`
}

// StatusResponse is the {success} envelope shared by several endpoints.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (r StatusResponse) Succeeded() bool { return r.Success }

// =============================================================================
// Categories
// =============================================================================

// CategoriesResponse is the body returned by GET /get-all-categories.
type CategoriesResponse struct {
	Success       bool       `json:"success"`
	AllCategories []Category `json:"allCategories"`
}

func (r CategoriesResponse) Succeeded() bool { return r.Success }

// SelectCategoryRequest is the body of POST /select-category.
type SelectCategoryRequest struct {
	UserID      string   `json:"userId"`
	CategoryIDs []string `json:"categoryId"`
}

// =============================================================================
// Articles
// =============================================================================

// UserRequest is the {userId} body of the article list endpoints.
type UserRequest struct {
	UserID string `json:"userId"`
}

// ArticlesResponse is the body returned by POST /get-all-articles.
type ArticlesResponse struct {
	AllArticles []Article `json:"allArticles"`
}

// MyArticlesResponse is the body returned by POST /my-articles.
type MyArticlesResponse struct {
	MyArticles []Article `json:"myArticles"`
}

// ViewArticleRequest is the body of POST /view-article.
type ViewArticleRequest struct {
	ArticleID string `json:"articleId"`
}

// ViewArticleResponse is the body returned by POST /view-article.
type ViewArticleResponse struct {
	Article *Article `json:"article"`
}

// ImageUpload is an optional image file attached to a multipart request.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// FormField is one text part of a multipart request, in send order.
type FormField struct {
	Name  string
	Value string
}

// CreateArticleRequest is the multipart body of POST /create-article.
type CreateArticleRequest struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	UserID      string
	Image       *ImageUpload
}

// FormFields returns the text parts of the request.
func (r CreateArticleRequest) FormFields() []FormField {
	fields := []FormField{
		{Name: "articleName", Value: r.Title},
		{Name: "description", Value: r.Description},
		{Name: "tags", Value: strings.Join(r.Tags, ",")},
		{Name: "category", Value: r.CategoryID},
	}
	if r.UserID != "" {
		fields = append(fields, FormField{Name: "userId", Value: r.UserID})
	}
	return fields
}

// EditArticleRequest is the multipart body of PUT /edit-article.
//
// Only non-nil fields are sent, together with the article id.
type EditArticleRequest struct {
	ArticleID   string
	Title       *string
	Description *string
	CategoryID  *string
	Tags        *[]string
	Image       *ImageUpload
}

// Empty reports whether the request changes nothing.
func (r EditArticleRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.CategoryID == nil &&
		r.Tags == nil && r.Image == nil
}

// FormFields returns the changed text parts followed by articleId.
func (r EditArticleRequest) FormFields() []FormField {
	var fields []FormField
	if r.Title != nil {
		fields = append(fields, FormField{Name: "articleName", Value: *r.Title})
	}
	if r.Description != nil {
		fields = append(fields, FormField{Name: "description", Value: *r.Description})
	}
	if r.CategoryID != nil {
		fields = append(fields, FormField{Name: "category", Value: *r.CategoryID})
	}
	if r.Tags != nil {
		fields = append(fields, FormField{Name: "tags", Value: strings.Join(*r.Tags, ",")})
	}
	if r.ArticleID != "" {
		fields = append(fields, FormField{Name: "articleId", Value: r.ArticleID})
	}
	return fields
}

// =============================================================================
// Reactions
// =============================================================================

// ReactionType is the reaction sent to the like/dislike endpoints.
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// ReactionRequest is the body of PATCH /like-article and /dislike-article.
type ReactionRequest struct {
	UserID    string       `json:"userId"`
	ArticleID string       `json:"articleId"`
	Type      ReactionType `json:"type"`
}

// ReactionResponse carries the authoritative post-update user record.
type ReactionResponse struct {
	Success  bool   `json:"success"`
	UserData *User  `json:"userData,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (r ReactionResponse) Succeeded() bool { return r.Success }

// BlockRequest is the body of POST /block-article.
type BlockRequest struct {
	UserID    string `json:"userId"`
	ArticleID string `json:"articleId"`
}
