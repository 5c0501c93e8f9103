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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *telemetry.ClientMetrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	metrics := telemetry.NewClientMetrics(prometheus.NewRegistry())
	c, err := New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second, Metrics: metrics})
	require.NoError(t, err)
	return c, metrics
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestSignIn_SendsBodyAndReturnsUser(t *testing.T) {
	var got map[string]string
	c, metrics := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/signin", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"userData": map[string]any{"_id": "u1", "firstName": "Ada", "likedArticles": []string{"a1"}},
		})
	}))

	user, err := c.SignIn(context.Background(), datatypes.SignInRequest{
		Email:    "ada@example.com",
		Password: datatypes.NewSecret("hunter22"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.HasLiked("a1"))
	assert.Equal(t, map[string]string{"email": "ada@example.com", "password": "hunter22"}, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(OpSignIn, telemetry.OutcomeOK)))
}

func TestSignIn_Unsuccessful(t *testing.T) {
	c, metrics := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
	}))

	_, err := c.SignIn(context.Background(), datatypes.SignInRequest{Email: "x@y.z"})
	require.Error(t, err)
	assert.True(t, IsUnsuccessful(err))
	assert.False(t, IsNetwork(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(OpSignIn, telemetry.OutcomeUnsuccessful)))
}

func TestStatusError_UsesBackendMessage(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "email already registered"})
	}))

	_, err := c.SignUp(context.Background(), datatypes.SignUpRequest{Email: "dup@example.com"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindStatus, apiErr.Kind)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "email already registered", apiErr.Message)
	assert.True(t, IsNetwork(err))
	assert.True(t, errors.Is(err, &Error{Kind: KindStatus}))
	assert.False(t, errors.Is(err, &Error{Kind: KindStatus, Op: OpSignIn}))
}

func TestDecodeError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>proxy error</html>")
	}))

	_, err := c.GetAllArticles(context.Background(), "u1")
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindDecode, kind)
	assert.Contains(t, err.(*Error).Detail, "proxy error")
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url})
	require.NoError(t, err)
	err = c.BlockArticle(context.Background(), datatypes.BlockRequest{UserID: "u", ArticleID: "a"})
	assert.True(t, IsNetwork(err))
	kind, _ := KindOf(err)
	assert.Equal(t, KindNetwork, kind)
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, datatypes.StatusResponse{Success: true})
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.BlockArticle(ctx, datatypes.BlockRequest{})
	assert.True(t, IsCancelled(err))
}

func TestEditProfileField_WireShape(t *testing.T) {
	var body map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/edit-profile", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, datatypes.StatusResponse{Success: true})
	}))

	require.NoError(t, c.EditProfileField(context.Background(), datatypes.ProfileFieldUpdate{
		UserID: "u1", Field: datatypes.FieldPhone, Value: "5551234567",
	}))
	assert.Equal(t, map[string]string{"userId": "u1", "phone": "5551234567"}, body)
}

func TestGetAllCategories_CachedAndDeduplicated(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		writeJSON(w, http.StatusOK, datatypes.CategoriesResponse{
			Success:       true,
			AllCategories: []datatypes.Category{{ID: "c1", Name: "Tech"}},
		})
	}))

	var wg sync.WaitGroup
	results := make([][]datatypes.Category, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cats, err := c.GetAllCategories(context.Background())
			assert.NoError(t, err)
			results[i] = cats
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []datatypes.Category{{ID: "c1", Name: "Tech"}}, r)
	}

	cats, err := c.GetAllCategories(context.Background())
	require.NoError(t, err)
	cats[0].Name = "mutated"
	again, _ := c.GetAllCategories(context.Background())
	assert.Equal(t, "Tech", again[0].Name)
	assert.Equal(t, int32(1), calls.Load())

	c.InvalidateCategories()
	_, err = c.GetAllCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCreateArticle_Multipart(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Go tips", r.FormValue("articleName"))
		assert.Equal(t, "go,tips", r.FormValue("tags"))
		assert.Equal(t, "c1", r.FormValue("category"))
		assert.Equal(t, "u1", r.FormValue("userId"))

		f, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "cover.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		writeJSON(w, http.StatusOK, datatypes.StatusResponse{Success: true})
	}))

	err := c.CreateArticle(context.Background(), datatypes.CreateArticleRequest{
		Title:       "Go tips",
		Description: "Ten tips for Go",
		Tags:        []string{"go", "tips"},
		CategoryID:  "c1",
		UserID:      "u1",
		Image:       &datatypes.ImageUpload{Filename: "cover.png", Content: strings.NewReader("PNGDATA")},
	})
	require.NoError(t, err)
}

func TestEditArticle_SendsOnlyChangedFields(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, map[string][]string{
			"description": {"new text here"},
			"articleId":   {"a1"},
		}, r.MultipartForm.Value)
		assert.Empty(t, r.MultipartForm.File)
		writeJSON(w, http.StatusOK, datatypes.StatusResponse{Success: false})
	}))

	desc := "new text here"
	err := c.EditArticle(context.Background(), datatypes.EditArticleRequest{ArticleID: "a1", Description: &desc})
	assert.True(t, IsUnsuccessful(err))
}

func TestReact_RoutesByType(t *testing.T) {
	var paths []string
	var mu sync.Mutex
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		var req datatypes.ReactionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, datatypes.ReactionResponse{
			Success:  true,
			UserData: &datatypes.User{ID: req.UserID, LikedArticles: []string{req.ArticleID}},
		})
	}))

	u, err := c.React(context.Background(), datatypes.ReactionRequest{UserID: "u1", ArticleID: "a1", Type: datatypes.ReactionLike})
	require.NoError(t, err)
	assert.True(t, u.HasLiked("a1"))
	_, err = c.React(context.Background(), datatypes.ReactionRequest{UserID: "u1", ArticleID: "a1", Type: datatypes.ReactionDislike})
	require.NoError(t, err)

	assert.Equal(t, []string{"PATCH /like-article", "PATCH /dislike-article"}, paths)
}

func TestReact_MissingUserDataIsUnsuccessful(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	_, err := c.React(context.Background(), datatypes.ReactionRequest{Type: datatypes.ReactionLike})
	assert.True(t, IsUnsuccessful(err))
}

func TestViewArticle(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req datatypes.ViewArticleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.ArticleID != "a1" {
			writeJSON(w, http.StatusOK, map[string]any{"article": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"article": map[string]any{"_id": "a1", "articleName": "T", "likes": 2}})
	}))

	a, err := c.ViewArticle(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Likes)

	_, err = c.ViewArticle(context.Background(), "missing")
	assert.True(t, IsUnsuccessful(err))
}

func TestCookiesAreKept(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/signin" {
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "userData": map[string]any{"_id": "u1"}})
			return
		}
		cookie, err := r.Cookie("token")
		if assert.NoError(t, err) {
			assert.Equal(t, "abc", cookie.Value)
		}
		writeJSON(w, http.StatusOK, datatypes.MyArticlesResponse{})
	}))

	_, err := c.SignIn(context.Background(), datatypes.SignInRequest{Email: "a@b.c"})
	require.NoError(t, err)
	_, err = c.MyArticles(context.Background(), "u1")
	require.NoError(t, err)
}

func TestRateLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, datatypes.StatusResponse{Success: true})
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, RateLimit: 20, Burst: 1})
	require.NoError(t, err)

	start := time.Now()
	for range 3 {
		require.NoError(t, c.BlockArticle(context.Background(), datatypes.BlockRequest{}))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindStatus, Op: OpSignIn, Message: "Bad Request", StatusCode: 400}
	assert.Equal(t, "signin: Bad Request (HTTP 400)", err.Error())
	assert.Equal(t, "UNSUCCESSFUL", KindUnsuccessful.String())

	inner := errors.New("dial tcp: refused")
	wrapped := &Error{Kind: KindNetwork, Op: OpSignIn, Message: "could not reach the server", Err: inner}
	assert.ErrorIs(t, wrapped, inner)
	assert.Contains(t, wrapped.Error(), "refused")
}
