// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package devapi

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBlockThreshold is how many users must block an article before it
// is hidden from every feed.
const DefaultBlockThreshold = 3

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrArticleNotFound    = errors.New("article not found")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownField       = errors.New("unknown profile field")
	ErrNotAuthor          = errors.New("only the author can edit this article")
)

// DefaultCategories seeds a new Store.
var DefaultCategories = []datatypes.Category{
	{ID: "cat-technology", Name: "Technology"},
	{ID: "cat-science", Name: "Science"},
	{ID: "cat-sports", Name: "Sports"},
	{ID: "cat-politics", Name: "Politics"},
	{ID: "cat-health", Name: "Health"},
	{ID: "cat-travel", Name: "Travel"},
}

// Image is an uploaded article image.
type Image struct {
	ContentType string
	Data        []byte
}

// Registration is what POST /signup stores.
type Registration struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	DateOfBirth string
	Password    string
}

// ArticlePatch carries the fields PUT /edit-article changed.
type ArticlePatch struct {
	Title       *string
	Description *string
	CategoryID  *string
	Tags        *[]string
	Image       string
}

type account struct {
	user    datatypes.User
	hash    []byte
	blocked map[string]bool
}

// Store is the in-memory backend state.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Returned values are copies.
type Store struct {
	mu         sync.RWMutex
	accounts   map[string]*account
	byEmail    map[string]string
	articles   map[string]*datatypes.Article
	images     map[string]Image
	categories []datatypes.Category

	blockThreshold int
	bcryptCost     int
	now            func() time.Time
}

// StoreOption customizes NewStore.
type StoreOption func(*Store)

// WithBlockThreshold sets how many blocks hide an article.
func WithBlockThreshold(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.blockThreshold = n
		}
	}
}

// WithBcryptCost lowers the hashing cost, e.g. bcrypt.MinCost in tests.
func WithBcryptCost(cost int) StoreOption {
	return func(s *Store) { s.bcryptCost = cost }
}

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithCategories replaces the seeded category list.
func WithCategories(cats []datatypes.Category) StoreOption {
	return func(s *Store) { s.categories = slices.Clone(cats) }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		accounts:       make(map[string]*account),
		byEmail:        make(map[string]string),
		articles:       make(map[string]*datatypes.Article),
		images:         make(map[string]Image),
		categories:     slices.Clone(DefaultCategories),
		blockThreshold: DefaultBlockThreshold,
		bcryptCost:     bcrypt.DefaultCost,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Counts returns the number of users and articles.
func (s *Store) Counts() (users, articles int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), len(s.articles)
}

// -----------------------------------------------------------------------------
// Accounts
// -----------------------------------------------------------------------------

// Register creates a user with empty preferences and returns its id.
func (s *Store) Register(r Registration, confirm string) (string, error) {
	if r.Password != confirm {
		return "", ErrPasswordMismatch
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	email := normalizeEmail(r.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		return "", ErrEmailTaken
	}
	id := uuid.NewString()
	s.accounts[id] = &account{
		user: datatypes.User{
			ID:               id,
			FirstName:        r.FirstName,
			LastName:         r.LastName,
			Email:            strfmt.Email(email),
			Phone:            r.Phone,
			DateOfBirth:      r.DateOfBirth,
			Preferences:      []datatypes.Category{},
			LikedArticles:    []string{},
			DislikedArticles: []string{},
			Role:             "user",
		},
		hash:    hash,
		blocked: make(map[string]bool),
	}
	s.byEmail[email] = id
	return id, nil
}

// Authenticate checks credentials and returns the user.
func (s *Store) Authenticate(email, password string) (datatypes.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[normalizeEmail(email)]
	var acct *account
	if ok {
		acct = s.accounts[id]
	}
	s.mu.RUnlock()
	if acct == nil {
		return datatypes.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return datatypes.User{}, ErrInvalidCredentials
	}
	return s.User(id)
}

func (s *Store) User(id string) (datatypes.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return datatypes.User{}, ErrUserNotFound
	}
	return acct.user.Clone(), nil
}

// EditProfile sets one profile field.
func (s *Store) EditProfile(userID string, field datatypes.ProfileField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	if !slices.Contains(datatypes.ProfileFields, field) {
		return ErrUnknownField
	}
	if field == datatypes.FieldEmail {
		email := normalizeEmail(value)
		if owner, taken := s.byEmail[email]; taken && owner != userID {
			return ErrEmailTaken
		}
		delete(s.byEmail, normalizeEmail(string(acct.user.Email)))
		s.byEmail[email] = userID
		value = email
	}
	acct.user = field.Set(acct.user, value)
	return nil
}

// SetPreferences replaces the user's preferred categories. Only known
// category ids are accepted; names are taken from the catalog.
func (s *Store) SetPreferences(userID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	prefs := make([]datatypes.Category, 0, len(ids))
	for _, id := range ids {
		cat, ok := datatypes.FindCategory(s.categories, id)
		if !ok {
			return ErrUnknownCategory
		}
		if !slices.Contains(prefs, cat) {
			prefs = append(prefs, cat)
		}
	}
	acct.user.Preferences = prefs
	return nil
}

func (s *Store) Categories() []datatypes.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// -----------------------------------------------------------------------------
// Articles
// -----------------------------------------------------------------------------

// CreateArticle stores a new article written by a.UserID.
func (s *Store) CreateArticle(a datatypes.Article) (datatypes.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.UserID]; !ok {
		return datatypes.Article{}, ErrUserNotFound
	}
	if _, ok := datatypes.FindCategory(s.categories, a.Category); !ok {
		return datatypes.Article{}, ErrUnknownCategory
	}
	a.ID = uuid.NewString()
	a.Likes, a.Dislikes, a.BlockCount, a.IsBlocked = 0, 0, 0, false
	a.CreatedAt = strfmt.DateTime(s.now().UTC())
	if a.Tags == nil {
		a.Tags = []string{}
	}
	stored := a.Clone()
	s.articles[a.ID] = &stored
	return stored.Clone(), nil
}

// SaveImage stores an upload and returns its id.
func (s *Store) SaveImage(img Image) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.images[id] = img
	s.mu.Unlock()
	return id
}

func (s *Store) Image(id string) (Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[id]
	return img, ok
}

func (s *Store) Article(id string) (datatypes.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return datatypes.Article{}, ErrArticleNotFound
	}
	return a.Clone(), nil
}

// Feed returns the articles userID may see, newest first: nothing the user
// blocked, nothing hidden by the block threshold, and only the user's
// preferred categories when any are set.
func (s *Store) Feed(userID string) ([]datatypes.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	prefs := datatypes.CategoryIDs(acct.user.Preferences)
	out := make([]datatypes.Article, 0, len(s.articles))
	for _, a := range s.articles {
		if a.IsBlocked || acct.blocked[a.ID] {
			continue
		}
		if len(prefs) > 0 && !slices.Contains(prefs, a.Category) {
			continue
		}
		out = append(out, a.Clone())
	}
	newestFirst(out)
	return out, nil
}

// ByAuthor returns every article userID wrote, blocked ones included.
func (s *Store) ByAuthor(userID string) ([]datatypes.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[userID]; !ok {
		return nil, ErrUserNotFound
	}
	out := []datatypes.Article{}
	for _, a := range s.articles {
		if a.UserID == userID {
			out = append(out, a.Clone())
		}
	}
	newestFirst(out)
	return out, nil
}

// EditArticle applies p. A non-empty author must match the article's.
func (s *Store) EditArticle(id, author string, p ArticlePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return ErrArticleNotFound
	}
	if author != "" && author != a.UserID {
		return ErrNotAuthor
	}
	if p.CategoryID != nil {
		if _, ok := datatypes.FindCategory(s.categories, *p.CategoryID); !ok {
			return ErrUnknownCategory
		}
		a.Category = *p.CategoryID
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Tags != nil {
		a.Tags = slices.Clone(*p.Tags)
	}
	if p.Image != "" {
		a.Image = p.Image
	}
	return nil
}

// React toggles a like or dislike and returns the updated user.
//
// Liking a liked article removes the like; liking a disliked one moves the
// reaction over. Dislikes mirror this.
func (s *Store) React(userID, articleID string, kind datatypes.ReactionType) (datatypes.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return datatypes.User{}, ErrUserNotFound
	}
	a, ok := s.articles[articleID]
	if !ok {
		return datatypes.User{}, ErrArticleNotFound
	}

	u := &acct.user
	liked, disliked := u.HasLiked(articleID), u.HasDisliked(articleID)
	switch kind {
	case datatypes.ReactionLike:
		if liked {
			u.LikedArticles = without(u.LikedArticles, articleID)
			a.Likes = max(a.Likes-1, 0)
			break
		}
		if disliked {
			u.DislikedArticles = without(u.DislikedArticles, articleID)
			a.Dislikes = max(a.Dislikes-1, 0)
		}
		u.LikedArticles = append(u.LikedArticles, articleID)
		a.Likes++
	case datatypes.ReactionDislike:
		if disliked {
			u.DislikedArticles = without(u.DislikedArticles, articleID)
			a.Dislikes = max(a.Dislikes-1, 0)
			break
		}
		if liked {
			u.LikedArticles = without(u.LikedArticles, articleID)
			a.Likes = max(a.Likes-1, 0)
		}
		u.DislikedArticles = append(u.DislikedArticles, articleID)
		a.Dislikes++
	default:
		return datatypes.User{}, errors.New("unknown reaction type")
	}
	return u.Clone(), nil
}

// Block hides articleID from userID's feed. Blocking twice counts once.
func (s *Store) Block(userID, articleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return ErrUserNotFound
	}
	a, ok := s.articles[articleID]
	if !ok {
		return ErrArticleNotFound
	}
	if acct.blocked[articleID] {
		return nil
	}
	acct.blocked[articleID] = true
	a.BlockCount++
	if a.BlockCount >= s.blockThreshold {
		a.IsBlocked = true
	}
	return nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func newestFirst(articles []datatypes.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		ti, tj := articles[i].Created(), articles[j].Created()
		if ti.Equal(tj) {
			return articles[i].ID < articles[j].ID
		}
		return ti.After(tj)
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
