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
	"sync"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
)

// Feed is the ordered article collection shown on the feed screen.
//
// # Thread Safety
//
// Safe for concurrent use. All reads return copies.
type Feed struct {
	mu       sync.RWMutex
	articles []datatypes.Article
}

// NewFeed returns a feed holding articles.
func NewFeed(articles []datatypes.Article) *Feed {
	f := &Feed{}
	f.Replace(articles)
	return f
}

// Replace swaps the whole collection.
func (f *Feed) Replace(articles []datatypes.Article) {
	cp := make([]datatypes.Article, len(articles))
	for i, a := range articles {
		cp[i] = a.Clone()
	}
	f.mu.Lock()
	f.articles = cp
	f.mu.Unlock()
}

// Articles returns the collection in order.
func (f *Feed) Articles() []datatypes.Article {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]datatypes.Article, len(f.articles))
	for i, a := range f.articles {
		out[i] = a.Clone()
	}
	return out
}

// Len returns the number of articles.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.articles)
}

// Get returns the article with id.
func (f *Feed) Get(id string) (datatypes.Article, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if i := f.index(id); i >= 0 {
		return f.articles[i].Clone(), true
	}
	return datatypes.Article{}, false
}

// Put replaces the article with the same id. It reports false when the id
// is not in the feed.
func (f *Feed) Put(a datatypes.Article) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(a.ID)
	if i < 0 {
		return false
	}
	f.articles[i] = a.Clone()
	return true
}

// Remove drops the article with id.
func (f *Feed) Remove(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return false
	}
	f.articles = append(f.articles[:i], f.articles[i+1:]...)
	return true
}

func (f *Feed) index(id string) int {
	for i := range f.articles {
		if f.articles[i].ID == id {
			return i
		}
	}
	return -1
}
