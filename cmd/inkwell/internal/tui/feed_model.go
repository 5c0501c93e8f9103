// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui is the interactive feed browser.
//
// # Thread Safety
//
// FeedModel is used from the bubbletea event loop only. Reaction responses
// come back as messages; the controller it wraps is itself safe for
// concurrent use.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/guard"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/reaction"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/ux"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// Controller
// =============================================================================

// FeedController is what the model drives. views.Feed implements it.
type FeedController interface {
	Articles() []datatypes.Article
	Mark(articleID string) ux.Mark
	Like(ctx context.Context, articleID string) (*reaction.Pending, error)
	Dislike(ctx context.Context, articleID string) (*reaction.Pending, error)
	Block(ctx context.Context, articleID string) error
	Open(articleID string) string
}

// =============================================================================
// Messages
// =============================================================================

// ReactionSettledMsg carries a reconciled reaction.
type ReactionSettledMsg struct {
	Result reaction.Result
	Err    error
}

// BlockedMsg reports the end of a block request.
type BlockedMsg struct {
	ArticleID string
	Err       error
}

// =============================================================================
// Keys
// =============================================================================

// LogoutTarget is returned by RunFeed when the user chose to sign out.
// It is not a route; the caller clears the session.
const LogoutTarget = "logout"

// KeyMap lists the feed bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Like    key.Binding
	Dislike key.Binding
	Block   key.Binding
	Open    key.Binding

	// Navigation bar.
	MyArticles key.Binding
	Create     key.Binding
	Profile    key.Binding
	Logout     key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Like:    key.NewBinding(key.WithKeys("l", "+"), key.WithHelp("l", "like")),
		Dislike: key.NewBinding(key.WithKeys("d", "-"), key.WithHelp("d", "dislike")),
		Block:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "block")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),

		MyArticles: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "my articles")),
		Create:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new article")),
		Profile:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		Logout:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "sign out")),

		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Like, k.Dislike, k.Open, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Like, k.Dislike, k.Block},
		{k.MyArticles, k.Create, k.Profile, k.Logout},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// FeedModel is the bubbletea model for the feed.
type FeedModel struct {
	ctx  context.Context
	ctrl FeedController
	keys KeyMap
	help help.Model

	cursor  int
	width   int
	pending map[string]int
	status  string
	open    string

	quitting bool
}

// NewFeedModel creates a model over ctrl. ctx bounds every request the
// model issues.
func NewFeedModel(ctx context.Context, ctrl FeedController) FeedModel {
	return FeedModel{
		ctx:     ctx,
		ctrl:    ctrl,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		pending: make(map[string]int),
		width:   80,
	}
}

// OpenTarget is the route the user left the feed for, LogoutTarget, or ""
// if the user quit.
func (m FeedModel) OpenTarget() string { return m.open }

// Status is the last status line.
func (m FeedModel) Status() string { return m.status }

// Init implements tea.Model.
func (m FeedModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case ReactionSettledMsg:
		return m.settled(msg), nil

	case BlockedMsg:
		if msg.Err != nil {
			m.status = "Article could not be blocked"
		} else {
			m.status = "Article blocked"
		}
		m.clampCursor()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m FeedModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	articles := m.ctrl.Articles()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(articles)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Open):
		if a, ok := m.selected(articles); ok {
			m.open = m.ctrl.Open(a.ID)
			return m, tea.Quit
		}

	case key.Matches(msg, m.keys.MyArticles):
		return m.leave(string(guard.RouteMyArticles))

	case key.Matches(msg, m.keys.Create):
		return m.leave(string(guard.RouteCreateArticle))

	case key.Matches(msg, m.keys.Profile):
		return m.leave(string(guard.RouteProfile))

	case key.Matches(msg, m.keys.Logout):
		return m.leave(LogoutTarget)

	case key.Matches(msg, m.keys.Like):
		return m.react(articles, datatypes.ReactionLike)

	case key.Matches(msg, m.keys.Dislike):
		return m.react(articles, datatypes.ReactionDislike)

	case key.Matches(msg, m.keys.Block):
		a, ok := m.selected(articles)
		if !ok {
			return m, nil
		}
		ctx, ctrl := m.ctx, m.ctrl
		m.status = "Blocking…"
		return m, func() tea.Msg {
			return BlockedMsg{ArticleID: a.ID, Err: ctrl.Block(ctx, a.ID)}
		}
	}
	return m, nil
}

func (m FeedModel) leave(target string) (tea.Model, tea.Cmd) {
	m.open = target
	return m, tea.Quit
}

func (m FeedModel) react(articles []datatypes.Article, action datatypes.ReactionType) (tea.Model, tea.Cmd) {
	a, ok := m.selected(articles)
	if !ok {
		return m, nil
	}
	send := m.ctrl.Like
	if action == datatypes.ReactionDislike {
		send = m.ctrl.Dislike
	}
	p, err := send(m.ctx, a.ID)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.pending[a.ID]++
	m.status = ""
	ctx := m.ctx
	return m, func() tea.Msg {
		res, err := p.Wait(ctx)
		if err != nil {
			res.ArticleID = a.ID
		}
		return ReactionSettledMsg{Result: res, Err: err}
	}
}

func (m FeedModel) settled(msg ReactionSettledMsg) FeedModel {
	id := msg.Result.ArticleID
	if m.pending[id] <= 1 {
		delete(m.pending, id)
	} else {
		m.pending[id]--
	}
	switch {
	case msg.Err != nil:
		m.status = msg.Err.Error()
	case msg.Result.Outcome == reaction.OutcomeRolledBack:
		m.status = "Your reaction could not be saved"
	}
	return m
}

func (m FeedModel) selected(articles []datatypes.Article) (datatypes.Article, bool) {
	if m.cursor < 0 || m.cursor >= len(articles) {
		return datatypes.Article{}, false
	}
	return articles[m.cursor], true
}

func (m *FeedModel) clampCursor() {
	n := len(m.ctrl.Articles())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// View implements tea.Model.
func (m FeedModel) View() string {
	if m.quitting {
		return ""
	}
	articles := m.ctrl.Articles()

	var b strings.Builder
	b.WriteString(ux.Styles.Title.Render(fmt.Sprintf("Your feed (%d)", len(articles))))
	b.WriteString("\n\n")

	if len(articles) == 0 {
		b.WriteString(ux.Styles.Muted.Render("Nothing here yet. Pick more categories in your profile."))
		b.WriteString("\n")
	}
	for i, a := range articles {
		b.WriteString(ux.RenderArticleCard(a, ux.CardOptions{
			Mark:     m.ctrl.Mark(a.ID),
			Selected: i == m.cursor,
			Pending:  m.pending[a.ID] > 0,
			Width:    min(m.width-4, 76),
		}))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(ux.Styles.Warning.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// RunFeed runs the feed browser until the user quits, opens an article or
// picks a navigation action. It returns OpenTarget of the final model.
func RunFeed(ctx context.Context, ctrl FeedController, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(NewFeedModel(ctx, ctrl), opts...).Run()
	if err != nil {
		return "", err
	}
	if fm, ok := final.(FeedModel); ok {
		return fm.OpenTarget(), nil
	}
	return "", nil
}
