// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package reaction applies likes, dislikes and blocks to the feed.
//
// Reactions are applied optimistically: the feed counters change before the
// request goes out, and are restored if the backend refuses. Every request
// for an article takes a new generation number, and only the response for
// the latest generation decides what the user sees. Older successes move
// the confirmed baseline a failed latest request falls back to.
package reaction

import (
	"github.com/AleutianAI/inkwell/pkg/datatypes"
)

// State is a user's reaction to one article.
type State int

const (
	StateNone State = iota
	StateLiked
	StateDisliked
)

func (s State) String() string {
	switch s {
	case StateLiked:
		return "LIKED"
	case StateDisliked:
		return "DISLIKED"
	default:
		return "NONE"
	}
}

// Delta is a change to an article's counters.
type Delta struct {
	Likes    int
	Dislikes int
}

// StateOf derives the state from the user's reaction sets. Liked wins if
// the backend ever reports both.
func StateOf(u datatypes.User, articleID string) State {
	switch {
	case u.HasLiked(articleID):
		return StateLiked
	case u.HasDisliked(articleID):
		return StateDisliked
	default:
		return StateNone
	}
}

// Transition returns the next state and counter change for action.
//
//	current   like                           dislike
//	NONE      LIKED     likes+1              DISLIKED  dislikes+1
//	LIKED     NONE      likes-1              DISLIKED  likes-1, dislikes+1
//	DISLIKED  LIKED     dislikes-1, likes+1  NONE      dislikes-1
func Transition(cur State, action datatypes.ReactionType) (State, Delta) {
	switch action {
	case datatypes.ReactionLike:
		switch cur {
		case StateLiked:
			return StateNone, Delta{Likes: -1}
		case StateDisliked:
			return StateLiked, Delta{Likes: 1, Dislikes: -1}
		default:
			return StateLiked, Delta{Likes: 1}
		}
	case datatypes.ReactionDislike:
		switch cur {
		case StateDisliked:
			return StateNone, Delta{Dislikes: -1}
		case StateLiked:
			return StateDisliked, Delta{Likes: -1, Dislikes: 1}
		default:
			return StateDisliked, Delta{Dislikes: 1}
		}
	}
	return cur, Delta{}
}

// weight is what one user in state s adds to an article's counters.
func weight(s State) Delta {
	switch s {
	case StateLiked:
		return Delta{Likes: 1}
	case StateDisliked:
		return Delta{Dislikes: 1}
	default:
		return Delta{}
	}
}

// shift is the counter change of moving one user from one state to another.
func shift(from, to State) Delta {
	a, b := weight(from), weight(to)
	return Delta{Likes: b.Likes - a.Likes, Dislikes: b.Dislikes - a.Dislikes}
}

// Apply returns a copy of a with d applied. Counters stop at zero.
func Apply(a datatypes.Article, d Delta) datatypes.Article {
	c := a.Clone()
	c.Likes = max(0, c.Likes+d.Likes)
	c.Dislikes = max(0, c.Dislikes+d.Dislikes)
	return c
}
