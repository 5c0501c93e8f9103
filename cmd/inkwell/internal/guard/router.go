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
	"fmt"
	"sync"

	"github.com/AleutianAI/inkwell/pkg/logging"
)

// MaxHops bounds how many forwards a single Navigate follows.
const MaxHops = 16

// Decision is the guard's verdict for a target.
type Decision int

const (
	DecisionRender Decision = iota
	DecisionRedirect
)

func (d Decision) String() string {
	if d == DecisionRedirect {
		return "redirect"
	}
	return "render"
}

// Router maps routes to views and applies the guard on every hop.
//
// # Thread Safety
//
// Handle and Navigate may be called concurrently.
type Router struct {
	sessions Sessions
	logger   *logging.Logger

	mu    sync.RWMutex
	views map[Route]View
}

// NewRouter creates an empty router guarded by sessions.
func NewRouter(sessions Sessions, logger *logging.Logger) *Router {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Router{
		sessions: sessions,
		logger:   logger.With("component", "router"),
		views:    make(map[Route]View),
	}
}

// Handle registers view for route. Protected routes are wrapped with
// Protect.
func (r *Router) Handle(route Route, view View) {
	if route.Protected() {
		view = Protect(r.sessions, view)
	}
	r.mu.Lock()
	r.views[route] = view
	r.mu.Unlock()
}

// Decide returns what navigating to target would do, without rendering.
//
// # Outputs
//
//   - Decision: DecisionRedirect when the route is protected and nobody is
//     signed in.
//   - string: The redirect target, "" when rendering.
//   - error: ErrUnknownRoute for unknown or unregistered routes.
func (r *Router) Decide(target string) (Decision, string, error) {
	req, err := Parse(target)
	if err != nil {
		return DecisionRender, "", err
	}
	if _, ok := r.view(req.Route); !ok {
		return DecisionRender, "", fmt.Errorf("%w: %s", ErrUnknownRoute, req.Route)
	}
	if req.Route.Protected() && !r.sessions.Authenticated() {
		return DecisionRedirect, string(RouteSignIn), nil
	}
	return DecisionRender, "", nil
}

// Navigate renders target and follows the views' forwards until one
// returns "".
func (r *Router) Navigate(ctx context.Context, target string) error {
	for hop := 0; hop < MaxHops; hop++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := Parse(target)
		if err != nil {
			return err
		}
		view, ok := r.view(req.Route)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRoute, req.Route)
		}

		r.logger.Debug("navigate", "target", req.String(), "hop", hop)
		next, err := view.Show(ctx, req)
		if err != nil {
			return err
		}
		if next == "" {
			return nil
		}
		target = next
	}
	r.logger.Warn("navigation loop", "last_target", target)
	return fmt.Errorf("%w: stopped at %s", ErrTooManyRedirects, target)
}

func (r *Router) view(route Route) (View, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[route]
	return v, ok
}
