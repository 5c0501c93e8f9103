// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package reaction

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/session"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/logging"
	"github.com/AleutianAI/inkwell/pkg/telemetry"
)

// ErrUnknownArticle is returned when the article is not in the feed.
var ErrUnknownArticle = errors.New("article not in feed")

// API is the part of the backend client the reconciler calls.
type API interface {
	React(ctx context.Context, req datatypes.ReactionRequest) (datatypes.User, error)
	BlockArticle(ctx context.Context, req datatypes.BlockRequest) error
}

// Sessions is the part of the session store the reconciler reads and
// replaces.
type Sessions interface {
	Current() (datatypes.User, bool)
	Set(user datatypes.User) error
}

// Outcome says what happened when a response came back.
type Outcome int

const (
	// OutcomeApplied means the backend accepted and the session was replaced.
	OutcomeApplied Outcome = iota
	// OutcomeRolledBack means the request failed and counters were restored.
	OutcomeRolledBack
	// OutcomeStale means a newer request for the article superseded this one.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return telemetry.ReactionApplied
	case OutcomeRolledBack:
		return telemetry.ReactionRolledBack
	default:
		return telemetry.ReactionStale
	}
}

// Result is the reconciled outcome of one reaction.
type Result struct {
	ArticleID string
	Type      datatypes.ReactionType
	Outcome   Outcome

	// State is the reaction state after reconciliation.
	State State

	// Article is the feed's copy after reconciliation.
	Article datatypes.Article

	// Err is the request error for OutcomeRolledBack.
	Err error
}

// Pending is an in-flight reaction.
type Pending struct {
	// Optimistic is the article as shown while the request is in flight.
	Optimistic datatypes.Article

	// State is the optimistic reaction state.
	State State

	done   chan struct{}
	result Result
}

// Done is closed once the response has been reconciled.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Result returns the outcome. Only valid after Done is closed.
func (p *Pending) Result() Result { return p.result }

// Wait blocks until the response is reconciled or ctx ends.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		return p.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// slot tracks the requests in flight for one article.
type slot struct {
	gen      uint64
	state    State
	inflight int

	// settled is set once the latest generation has been reconciled.
	settled bool

	// base is the last state the backend confirmed, with the counters that
	// go with it. A failed latest request falls back to it.
	base         State
	baseLikes    int
	baseDislikes int

	// confirmed is the newest userData the backend returned for this
	// article, from generation confirmedGen. unsaved is set while it has
	// not been written to the session.
	confirmed    *datatypes.User
	confirmedGen uint64
	unsaved      bool
}

// confirm moves the baseline to what the backend reported for gen.
func (s *slot) confirm(articleID string, gen uint64, user datatypes.User) {
	to := StateOf(user, articleID)
	d := shift(s.base, to)
	s.baseLikes = max(0, s.baseLikes+d.Likes)
	s.baseDislikes = max(0, s.baseDislikes+d.Dislikes)
	s.base = to
	s.confirmed = &user
	s.confirmedGen = gen
	s.unsaved = true
}

// Reconciler applies reactions to a Feed and keeps the session in step with
// the backend.
//
// # Thread Safety
//
// Safe for concurrent use. Responses are reconciled under a single mutex.
type Reconciler struct {
	api      API
	sessions Sessions
	feed     *Feed
	logger   *logging.Logger
	metrics  *telemetry.ClientMetrics

	mu    sync.Mutex
	slots map[string]*slot
	wg    sync.WaitGroup
}

// NewReconciler creates a reconciler over feed. logger and metrics may be
// nil.
func NewReconciler(api API, sessions Sessions, feed *Feed, logger *logging.Logger, metrics *telemetry.ClientMetrics) *Reconciler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reconciler{
		api:      api,
		sessions: sessions,
		feed:     feed,
		logger:   logger.With("component", "reaction"),
		metrics:  metrics,
		slots:    make(map[string]*slot),
	}
}

// Feed returns the collection the reconciler updates.
func (r *Reconciler) Feed() *Feed { return r.feed }

// State returns the reaction state the user currently sees for articleID,
// including any optimistic update.
func (r *Reconciler) State(articleID string) State {
	user, _ := r.sessions.Current()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked(user, articleID)
}

func (r *Reconciler) stateLocked(user datatypes.User, articleID string) State {
	if s, ok := r.slots[articleID]; ok && s.inflight > 0 {
		return s.state
	}
	return StateOf(user, articleID)
}

// React applies action to articleID and sends it to the backend.
//
// # Description
//
// The feed counters are updated before this returns and before the request
// is issued. The request runs on its own goroutine with ctx; cancelling ctx
// fails the request and rolls it back.
//
// # Outputs
//
//   - *Pending: Handle for the in-flight request.
//   - error: session.ErrNoSession or ErrUnknownArticle. Nothing is changed
//     and nothing is sent in either case.
func (r *Reconciler) React(ctx context.Context, articleID string, action datatypes.ReactionType) (*Pending, error) {
	if action != datatypes.ReactionLike && action != datatypes.ReactionDislike {
		return nil, fmt.Errorf("unknown reaction %q", action)
	}
	user, ok := r.sessions.Current()
	if !ok {
		return nil, session.ErrNoSession
	}

	r.mu.Lock()
	article, ok := r.feed.Get(articleID)
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownArticle, articleID)
	}
	prev := r.stateLocked(user, articleID)
	next, delta := Transition(prev, action)
	optimistic := Apply(article, delta)
	r.feed.Put(optimistic)

	s, ok := r.slots[articleID]
	if !ok {
		s = &slot{base: prev, baseLikes: article.Likes, baseDislikes: article.Dislikes}
		r.slots[articleID] = s
	}
	s.gen++
	s.state = next
	s.inflight++
	s.settled = false
	gen := s.gen
	r.mu.Unlock()

	p := &Pending{Optimistic: optimistic, State: next, done: make(chan struct{})}
	req := datatypes.ReactionRequest{UserID: user.ID, ArticleID: articleID, Type: action}

	r.logger.Debug("reaction sent", "article_id", articleID, "type", action, "from", prev, "to", next, "gen", gen)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		updated, err := r.api.React(ctx, req)
		p.result = r.reconcile(req, gen, updated, err)
		close(p.done)
	}()
	return p, nil
}

// ReactAndWait is React followed by Wait.
func (r *Reconciler) ReactAndWait(ctx context.Context, articleID string, action datatypes.ReactionType) (Result, error) {
	p, err := r.React(ctx, articleID, action)
	if err != nil {
		return Result{}, err
	}
	return p.Wait(ctx)
}

// reconcile applies one response.
//
// Only the latest generation decides what the user sees. An older success
// still moves the slot's baseline, since the backend has applied it; if the
// latest request has already been rolled back, the feed and the session
// follow that baseline right away.
func (r *Reconciler) reconcile(req datatypes.ReactionRequest, gen uint64, updated datatypes.User, reqErr error) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := req.ArticleID
	res := Result{ArticleID: id, Type: req.Type}
	s := r.slots[id]
	s.inflight--

	switch {
	case gen != s.gen:
		res.Outcome = OutcomeStale
		if reqErr == nil && gen > s.confirmedGen {
			s.confirm(id, gen, updated)
			if s.settled {
				r.restoreLocked(s, id)
			}
		}
		r.logger.Debug("stale reaction response", "article_id", id, "gen", gen, "latest", s.gen, "error", reqErr)

	case reqErr != nil:
		res.Outcome = OutcomeRolledBack
		res.Err = reqErr
		s.settled = true
		r.restoreLocked(s, id)
		r.logger.Warn("reaction failed, rolled back", "article_id", id, "type", req.Type, "error", reqErr)

	default:
		res.Outcome = OutcomeApplied
		s.settled = true
		if err := r.sessions.Set(updated); err != nil {
			r.logger.Warn("store reacted user failed", "error", err)
		}
		s.base = s.state
		if cur, ok := r.feed.Get(id); ok {
			s.baseLikes, s.baseDislikes = cur.Likes, cur.Dislikes
		}
		s.confirmed = &updated
		s.confirmedGen = gen
		s.unsaved = false
	}
	res.State = s.state

	if s.inflight == 0 {
		delete(r.slots, id)
	}
	if a, ok := r.feed.Get(id); ok {
		res.Article = a
	}
	r.metrics.RecordReaction(string(req.Type), res.Outcome.String())
	return res
}

// restoreLocked puts the slot's baseline back into the feed and, when an
// older success has not reached the session yet, stores its user.
func (r *Reconciler) restoreLocked(s *slot, articleID string) {
	if cur, ok := r.feed.Get(articleID); ok {
		cur.Likes, cur.Dislikes = s.baseLikes, s.baseDislikes
		r.feed.Put(cur)
	}
	s.state = s.base
	if s.unsaved {
		s.unsaved = false
		if err := r.sessions.Set(*s.confirmed); err != nil {
			r.logger.Warn("store confirmed user failed", "error", err)
		}
	}
}

// Block hides articleID from the user for good. On success the article is
// removed from the feed; on failure the feed is left as is.
func (r *Reconciler) Block(ctx context.Context, articleID string) error {
	user, ok := r.sessions.Current()
	if !ok {
		return session.ErrNoSession
	}
	if _, ok := r.feed.Get(articleID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownArticle, articleID)
	}
	if err := r.api.BlockArticle(ctx, datatypes.BlockRequest{UserID: user.ID, ArticleID: articleID}); err != nil {
		r.logger.Warn("block failed", "article_id", articleID, "error", err)
		return err
	}

	r.mu.Lock()
	r.feed.Remove(articleID)
	r.mu.Unlock()
	r.logger.Info("article blocked", "article_id", articleID)
	return nil
}

// Wait blocks until every in-flight reaction has been reconciled.
func (r *Reconciler) Wait() { r.wg.Wait() }
