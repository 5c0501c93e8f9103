// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package guard

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct{ signedIn atomic.Bool }

func (f *fakeSessions) Authenticated() bool { return f.signedIn.Load() }

// recorder is a view that records each render and forwards to next.
type recorder struct {
	next  string
	shown []Request
}

func (r *recorder) Show(_ context.Context, req Request) (string, error) {
	r.shown = append(r.shown, req)
	return r.next, nil
}

func TestRoute_Protected(t *testing.T) {
	for _, r := range Routes {
		want := r != RouteSignIn && r != RouteSignUp
		assert.Equal(t, want, r.Protected(), string(r))
	}
}

func TestParse(t *testing.T) {
	req, err := Parse("/view-article?articleId=a1")
	require.NoError(t, err)
	assert.Equal(t, RouteViewArticle, req.Route)
	assert.Equal(t, "a1", req.Param("articleId"))

	req, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, RouteSignIn, req.Route)

	req, err = Parse("/feed/")
	require.NoError(t, err)
	assert.Equal(t, RouteFeed, req.Route)

	_, err = Parse("/admin")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestTo(t *testing.T) {
	assert.Equal(t, "/feed", To(RouteFeed))
	assert.Equal(t, "/select-category?userId=u1", To(RouteSelectCategory, "userId", "u1"))
}

func TestProtect_RedirectsWithoutRendering(t *testing.T) {
	sessions := &fakeSessions{}
	inner := &recorder{}
	view := Protect(sessions, inner)

	next, err := view.Show(context.Background(), Request{Route: RouteFeed})
	require.NoError(t, err)
	assert.Equal(t, "/", next)
	assert.Empty(t, inner.shown)

	sessions.signedIn.Store(true)
	next, err = view.Show(context.Background(), Request{Route: RouteFeed})
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, inner.shown, 1)
}

func TestRouter_Decide(t *testing.T) {
	sessions := &fakeSessions{}
	r := NewRouter(sessions, nil)
	for _, route := range Routes {
		r.Handle(route, &recorder{})
	}

	for _, route := range Routes {
		d, to, err := r.Decide(string(route))
		require.NoError(t, err)
		if route.Protected() {
			assert.Equal(t, DecisionRedirect, d, string(route))
			assert.Equal(t, "/", to)
		} else {
			assert.Equal(t, DecisionRender, d, string(route))
		}
	}

	sessions.signedIn.Store(true)
	for _, route := range Routes {
		d, _, err := r.Decide(string(route))
		require.NoError(t, err)
		assert.Equal(t, DecisionRender, d, string(route))
	}

	_, _, err := r.Decide("/nowhere")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestRouter_DecideUnregistered(t *testing.T) {
	r := NewRouter(&fakeSessions{}, nil)
	_, _, err := r.Decide("/feed")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestRouter_NavigateFollowsForwards(t *testing.T) {
	sessions := &fakeSessions{}
	r := NewRouter(sessions, nil)

	signIn := &recorder{}
	feed := &recorder{}
	r.Handle(RouteSignIn, ViewFunc(func(ctx context.Context, req Request) (string, error) {
		signIn.shown = append(signIn.shown, req)
		sessions.signedIn.Store(true)
		return string(RouteFeed), nil
	}))
	r.Handle(RouteFeed, feed)

	require.NoError(t, r.Navigate(context.Background(), "/feed"))
	// Guard sent us to sign-in first, sign-in forwarded back to the feed.
	assert.Len(t, signIn.shown, 1)
	assert.Len(t, feed.shown, 1)
}

func TestRouter_NavigatePassesQuery(t *testing.T) {
	sessions := &fakeSessions{}
	sessions.signedIn.Store(true)
	r := NewRouter(sessions, nil)
	detail := &recorder{}
	r.Handle(RouteViewArticle, detail)

	require.NoError(t, r.Navigate(context.Background(), To(RouteViewArticle, "articleId", "a7")))
	require.Len(t, detail.shown, 1)
	assert.Equal(t, "a7", detail.shown[0].Param("articleId"))
}

func TestRouter_TooManyRedirects(t *testing.T) {
	r := NewRouter(&fakeSessions{}, nil)
	r.Handle(RouteSignIn, &recorder{next: "/signup"})
	r.Handle(RouteSignUp, &recorder{next: "/"})

	err := r.Navigate(context.Background(), "/")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestRouter_NavigateUnknownAndCancelled(t *testing.T) {
	r := NewRouter(&fakeSessions{}, nil)
	assert.ErrorIs(t, r.Navigate(context.Background(), "/feed"), ErrUnknownRoute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Navigate(ctx, "/"), context.Canceled)
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "render", DecisionRender.String())
	assert.Equal(t, "redirect", DecisionRedirect.String())
}
