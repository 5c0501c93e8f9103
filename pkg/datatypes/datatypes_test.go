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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Tags
// =============================================================================

func TestAddTag_PreservesOrderAndRejectsDuplicates(t *testing.T) {
	tags, err := AddTag(nil, " go ")
	require.NoError(t, err)
	tags, err = AddTag(tags, "rust")
	require.NoError(t, err)

	_, err = AddTag(tags, "go")
	assert.ErrorIs(t, err, ErrDuplicateTag)

	assert.Equal(t, []string{"go", "rust"}, tags)
}

func TestAddTag_Limits(t *testing.T) {
	var tags []string
	for i := 0; i < MaxTags; i++ {
		var err error
		tags, err = AddTag(tags, fmt.Sprintf("tag%d", i))
		require.NoError(t, err)
	}

	_, err := AddTag(tags, "overflow")
	assert.ErrorIs(t, err, ErrTooManyTags)

	_, err = AddTag(tags[:1], "   ")
	assert.ErrorIs(t, err, ErrEmptyTag)
}

func TestAddTag_DoesNotAliasInput(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "a"

	first, err := AddTag(base, "b")
	require.NoError(t, err)
	second, err := AddTag(base, "c")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "c"}, second)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"go", "cli", "tui"}, SplitTags("go, cli,,tui,go"))
	assert.Nil(t, SplitTags(""))
}

// =============================================================================
// Wire shapes
// =============================================================================

func TestProfileFieldUpdate_MarshalsUnderFieldName(t *testing.T) {
	body, err := json.Marshal(ProfileFieldUpdate{UserID: "u1", Field: FieldPhone, Value: "5551234567"})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, map[string]string{"userId": "u1", "phone": "5551234567"}, got)
}

func TestProfileFieldUpdate_RequiresField(t *testing.T) {
	_, err := json.Marshal(ProfileFieldUpdate{UserID: "u1"})
	assert.Error(t, err)
}

func TestProfileField_SetDoesNotMutate(t *testing.T) {
	u := User{ID: "u1", FirstName: "Ada", LikedArticles: []string{"a1"}}
	changed := FieldFirstName.Set(u, "Grace")

	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "Grace", FieldFirstName.Get(changed))
	changed.LikedArticles[0] = "zz"
	assert.Equal(t, "a1", u.LikedArticles[0])
}

func TestEditArticleRequest_OnlyChangedFields(t *testing.T) {
	title := "New title"
	tags := []string{"x", "y"}
	req := EditArticleRequest{ArticleID: "a1", Title: &title, Tags: &tags}

	assert.Equal(t, []FormField{
		{Name: "articleName", Value: "New title"},
		{Name: "tags", Value: "x,y"},
		{Name: "articleId", Value: "a1"},
	}, req.FormFields())
	assert.False(t, req.Empty())
	assert.True(t, EditArticleRequest{ArticleID: "a1"}.Empty())
}

func TestArticle_DecodesBackendTimestamp(t *testing.T) {
	raw := `{"_id":"a1","articleName":"Hello","tags":["go"],"likes":5,"dislikes":2,
		"createdAt":"2025-02-03T10:20:30.123Z"}`

	var a Article
	require.NoError(t, json.Unmarshal([]byte(raw), &a))

	assert.Equal(t, 5, a.Likes)
	assert.Equal(t, 2025, a.Created().Year())
	assert.Equal(t, time.February, a.Created().Month())
}

// =============================================================================
// Secret
// =============================================================================

func TestSecret_RedactsAndMarshals(t *testing.T) {
	s := NewSecret("hunter22")
	defer s.Destroy()

	assert.Equal(t, "[redacted]", s.String())
	assert.False(t, strings.Contains(fmt.Sprintf("%v %#v", s, s), "hunter22"))

	body, err := json.Marshal(SignInRequest{Email: "a@b.co", Password: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.co","password":"hunter22"}`, string(body))
}

func TestSecret_EqualAndDestroy(t *testing.T) {
	a := NewSecret("secret1")
	b := NewSecret("secret1")
	c := NewSecret("secret2")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, Secret{}.Equal(NewSecret("")))

	a.Destroy()
	assert.Equal(t, 0, a.Len())
	b.Destroy()
	c.Destroy()
}
