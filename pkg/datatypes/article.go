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
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// MaxTags is the number of tags an article may carry.
const MaxTags = 5

// Article is a single post in the feed.
//
// Likes and Dislikes are aggregate counters maintained by the backend. Who
// reacted is tracked only on each User's reaction sets.
type Article struct {
	ID          string          `json:"_id"`
	Title       string          `json:"articleName"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Tags        []string        `json:"tags"`
	UserID      string          `json:"userId"`
	Category    string          `json:"category"`
	Likes       int             `json:"likes"`
	Dislikes    int             `json:"dislikes"`
	BlockCount  int             `json:"blockCount"`
	IsBlocked   bool            `json:"isBlocked"`
	CreatedAt   strfmt.DateTime `json:"createdAt"`
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	c := a
	c.Tags = slices.Clone(a.Tags)
	return c
}

// Created returns CreatedAt as a time.Time.
func (a Article) Created() time.Time {
	return time.Time(a.CreatedAt)
}

// JoinedTags returns the tags in the comma-joined wire form used by the
// multipart article endpoints.
func (a Article) JoinedTags() string {
	return strings.Join(a.Tags, ",")
}

var (
	// ErrDuplicateTag is returned when a tag is already present.
	ErrDuplicateTag = errors.New("tag already added")

	// ErrTooManyTags is returned when an article already has MaxTags tags.
	ErrTooManyTags = errors.New("max 5 tags allowed")

	// ErrEmptyTag is returned for a tag that is blank after trimming.
	ErrEmptyTag = errors.New("tag is empty")
)

// AddTag appends tag to tags, preserving insertion order.
//
// The tag is trimmed of surrounding whitespace. The input slice is not
// modified.
func AddTag(tags []string, tag string) ([]string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tags, ErrEmptyTag
	}
	if slices.Contains(tags, tag) {
		return tags, ErrDuplicateTag
	}
	if len(tags) >= MaxTags {
		return tags, ErrTooManyTags
	}
	out := make([]string, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag), nil
}

// RemoveTag returns tags without tag. The input slice is not modified.
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

// SplitTags parses the comma-joined wire form back into an ordered,
// de-duplicated list.
func SplitTags(joined string) []string {
	var out []string
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(out, part) {
			continue
		}
		out = append(out, part)
	}
	return out
}
