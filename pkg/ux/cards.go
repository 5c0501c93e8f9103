// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/charmbracelet/lipgloss"
)

// Mark is the signed-in user's reaction to an article, as shown on a card.
type Mark int

const (
	MarkNone Mark = iota
	MarkLiked
	MarkDisliked
)

// CardOptions controls RenderArticleCard.
type CardOptions struct {
	Mark     Mark
	Selected bool
	Pending  bool
	Width    int
	// Category overrides the article's category id with a display name.
	Category string
}

// RenderArticleCard renders one feed entry.
//
// Machine mode produces a single tab-separated line:
//
//	<id>\t<title>\t<likes>\t<dislikes>\t<mark>
func RenderArticleCard(a datatypes.Article, opts CardOptions) string {
	if GetPersonality().Level == PersonalityMachine {
		return fmt.Sprintf("%s\t%s\t%d\t%d\t%s", a.ID, a.Title, a.Likes, a.Dislikes, markName(opts.Mark))
	}

	width := opts.Width
	if width <= 0 {
		width = 60
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render(a.Title))
	if opts.Pending {
		b.WriteString(" " + IconPending.Render())
	}
	b.WriteString("\n")

	category := opts.Category
	if category == "" {
		category = a.Category
	}
	if category != "" {
		b.WriteString(Styles.Subtitle.Render(category) + "\n")
	}
	if a.Description != "" {
		b.WriteString(truncate(a.Description, width-4) + "\n")
	}
	if GetPersonality().ShowTags && len(a.Tags) > 0 {
		b.WriteString(RenderTags(a.Tags) + "\n")
	}
	b.WriteString(RenderCounters(a.Likes, a.Dislikes, opts.Mark))

	style := Styles.Card
	if opts.Selected {
		style = Styles.Selected
	}
	return style.Width(width).Render(b.String())
}

// RenderCounters renders "▲ 3  ▼ 1". The active mark is highlighted.
func RenderCounters(likes, dislikes int, mark Mark) string {
	like := fmt.Sprintf("%s %d", IconLike, likes)
	dislike := fmt.Sprintf("%s %d", IconDislike, dislikes)
	if mark == MarkLiked {
		like = Styles.Like.Render(like)
	} else {
		like = Styles.Muted.Render(like)
	}
	if mark == MarkDisliked {
		dislike = Styles.Dislike.Render(dislike)
	} else {
		dislike = Styles.Muted.Render(dislike)
	}
	return like + "  " + dislike
}

// RenderTags renders tags as chips separated by a space.
func RenderTags(tags []string) string {
	if GetPersonality().Level == PersonalityMachine {
		return strings.Join(tags, ",")
	}
	chips := make([]string, len(tags))
	for i, t := range tags {
		chips[i] = Styles.Tag.Render("#" + t)
	}
	return strings.Join(chips, " ")
}

// RenderArticleDetail renders the full-page view of an article.
func RenderArticleDetail(a datatypes.Article, category string, mark Mark) string {
	if category == "" {
		category = a.Category
	}
	if GetPersonality().Level == PersonalityMachine {
		return strings.Join([]string{
			"id: " + a.ID,
			"title: " + a.Title,
			"category: " + category,
			"tags: " + a.JoinedTags(),
			"description: " + a.Description,
			"image: " + a.Image,
			fmt.Sprintf("likes: %d", a.Likes),
			fmt.Sprintf("dislikes: %d", a.Dislikes),
			"reaction: " + markName(mark),
		}, "\n")
	}

	lines := []string{
		Styles.Title.Render(a.Title),
		Styles.Subtitle.Render(category),
	}
	if created := a.Created(); !created.IsZero() {
		lines = append(lines, Styles.Muted.Render(created.Format("Jan 2, 2006")))
	}
	lines = append(lines, "", lipgloss.NewStyle().Width(72).Render(a.Description), "")
	if a.Image != "" {
		lines = append(lines, Styles.Muted.Render("image: "+a.Image))
	}
	if len(a.Tags) > 0 {
		lines = append(lines, RenderTags(a.Tags))
	}
	lines = append(lines, RenderCounters(a.Likes, a.Dislikes, mark))
	return Styles.Box.Render(strings.Join(lines, "\n"))
}

// RenderProfile renders the profile summary shown on the profile screen.
func RenderProfile(u datatypes.User) string {
	prefs := make([]string, len(u.Preferences))
	for i, p := range u.Preferences {
		prefs[i] = p.Name
	}
	rows := [][2]string{
		{"First name", u.FirstName},
		{"Last name", u.LastName},
		{"Email", u.Email.String()},
		{"Phone", u.Phone},
		{"Date of birth", u.DateOfBirth},
		{"Preferences", strings.Join(prefs, ", ")},
	}
	if GetPersonality().Level == PersonalityMachine {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r[0] + ": " + r[1]
		}
		return strings.Join(out, "\n")
	}
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = Styles.Muted.Render(fmt.Sprintf("%-14s", r[0])) + r[1]
	}
	return Styles.Box.Render(Styles.Title.Render(u.FullName()) + "\n" + strings.Join(out, "\n"))
}

func markName(m Mark) string {
	switch m {
	case MarkLiked:
		return "liked"
	case MarkDisliked:
		return "disliked"
	default:
		return "none"
	}
}

func truncate(s string, max int) string {
	if max <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
