// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package guard routes between Inkwell's screens and keeps signed-out users
// away from protected ones.
//
// The guard is a pure function of the session: every navigation asks
// the session store again, so a sign-out in another process takes effect on
// the next hop.
package guard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Route is a client route path.
type Route string

const (
	RouteSignIn         Route = "/"
	RouteSignUp         Route = "/signup"
	RouteProfile        Route = "/my-profile"
	RouteCreateArticle  Route = "/create-article"
	RouteFeed           Route = "/feed"
	RouteViewArticle    Route = "/view-article"
	RouteMyArticles     Route = "/my-articles"
	RouteSelectCategory Route = "/select-category"
)

// Routes lists every known route.
var Routes = []Route{
	RouteSignIn, RouteSignUp, RouteProfile, RouteCreateArticle,
	RouteFeed, RouteViewArticle, RouteMyArticles, RouteSelectCategory,
}

// Protected reports whether the route requires a session.
func (r Route) Protected() bool {
	return r != RouteSignIn && r != RouteSignUp
}

// Known reports whether r is one of Routes.
func (r Route) Known() bool {
	for _, k := range Routes {
		if k == r {
			return true
		}
	}
	return false
}

var (
	// ErrUnknownRoute is returned for a path that is not in the route table.
	ErrUnknownRoute = errors.New("unknown route")

	// ErrTooManyRedirects is returned when views keep forwarding past MaxHops.
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Request is a parsed navigation target.
type Request struct {
	Route Route
	Query url.Values
}

// Param returns the first value of a query parameter.
func (r Request) Param(key string) string { return r.Query.Get(key) }

// String renders the request back into a target.
func (r Request) String() string {
	if len(r.Query) == 0 {
		return string(r.Route)
	}
	return string(r.Route) + "?" + r.Query.Encode()
}

// Parse turns "/view-article?articleId=a1" into a Request.
func Parse(target string) (Request, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return Request{}, fmt.Errorf("parse target %q: %w", target, err)
	}
	path := u.Path
	if path == "" {
		path = string(RouteSignIn)
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	route := Route(path)
	if !route.Known() {
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}
	return Request{Route: route, Query: u.Query()}, nil
}

// To builds a target from a route and key/value pairs.
//
//	guard.To(guard.RouteViewArticle, "articleId", "a1") // "/view-article?articleId=a1"
func To(route Route, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return Request{Route: route, Query: q}.String()
}

// View renders one screen. A non-empty next is the target to navigate to
// afterwards; "" ends navigation.
type View interface {
	Show(ctx context.Context, req Request) (next string, err error)
}

// ViewFunc adapts a function to View.
type ViewFunc func(ctx context.Context, req Request) (string, error)

func (f ViewFunc) Show(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// Sessions is the part of the session store the guard consults.
type Sessions interface {
	Authenticated() bool
}

// Protect wraps view so that it only renders with a session. Without one it
// redirects to the sign-in route and view is never called.
func Protect(sessions Sessions, view View) View {
	return ViewFunc(func(ctx context.Context, req Request) (string, error) {
		if !sessions.Authenticated() {
			return string(RouteSignIn), nil
		}
		return view.Show(ctx, req)
	})
}
