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
	"slices"

	"github.com/go-openapi/strfmt"
)

// User is the authenticated user's record as returned by the backend.
//
// # Invariant
//
// An article id appears in at most one of LikedArticles and
// DislikedArticles. The backend maintains this; the client only relies on
// it when deriving a reaction state.
type User struct {
	ID          string       `json:"_id"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Email       strfmt.Email `json:"email"`
	Phone       string       `json:"phone"`
	DateOfBirth string       `json:"dob"`
	Preferences []Category   `json:"preferences"`

	LikedArticles    []string `json:"likedArticles"`
	DislikedArticles []string `json:"dislikedArticles"`

	Role string `json:"role,omitempty"`
}

// FullName joins the first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// HasLiked reports whether articleID is in the liked set.
func (u User) HasLiked(articleID string) bool {
	return slices.Contains(u.LikedArticles, articleID)
}

// HasDisliked reports whether articleID is in the disliked set.
func (u User) HasDisliked(articleID string) bool {
	return slices.Contains(u.DislikedArticles, articleID)
}

// Clone returns a deep copy so callers can mutate slices freely.
func (u User) Clone() User {
	c := u
	c.Preferences = slices.Clone(u.Preferences)
	c.LikedArticles = slices.Clone(u.LikedArticles)
	c.DislikedArticles = slices.Clone(u.DislikedArticles)
	return c
}

// Equal compares two users field by field, treating nil and empty slices
// as equal.
func (u User) Equal(o User) bool {
	return u.ID == o.ID &&
		u.FirstName == o.FirstName &&
		u.LastName == o.LastName &&
		u.Email == o.Email &&
		u.Phone == o.Phone &&
		u.DateOfBirth == o.DateOfBirth &&
		u.Role == o.Role &&
		slices.Equal(u.Preferences, o.Preferences) &&
		slices.Equal(u.LikedArticles, o.LikedArticles) &&
		slices.Equal(u.DislikedArticles, o.DislikedArticles)
}
