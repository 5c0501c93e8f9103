// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session holds the signed-in user for the Inkwell client.
//
// A Store keeps the current User in memory and mirrors it to a Persister
// under the fixed key "userData". Every view reads the session through the
// Store; nothing else caches the user.
//
// # Thread Safety
//
// Store is safe for concurrent use. Reaction responses arrive on worker
// goroutines and call Set while views read Current.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/logging"
)

// StorageKey is the key the user record is persisted under.
const StorageKey = "userData"

// ErrNoSession is returned when no user is signed in, and by a Persister
// when nothing is stored.
var ErrNoSession = errors.New("no active session")

// Persister stores the encoded user record.
//
// Load returns ErrNoSession when nothing is stored. Delete of an absent
// record is not an error.
type Persister interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Delete() error
	Close() error
}

// Listener is called after the session changes. present is false after a
// sign-out.
type Listener func(user datatypes.User, present bool)

// Store is the session context.
//
// Writes are serialized under writeMu so that the in-memory record and the
// durable copy always end up holding the same last writer.
type Store struct {
	writeMu   sync.Mutex
	mu        sync.RWMutex
	user      *datatypes.User
	persister Persister
	logger    *logging.Logger

	subMu     sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty store. Call Restore to load the persisted user.
func NewStore(p Persister, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		persister: p,
		logger:    logger.With("component", "session"),
		listeners: make(map[int]Listener),
	}
}

// Restore loads the persisted user and makes it current.
//
// # Description
//
// Never fails. A missing record, an unreadable backend and a malformed
// record all yield absence; the last two are logged at warn level.
//
// # Outputs
//
//   - datatypes.User: The restored user, zero when absent.
//   - bool: True when a user was restored.
func (s *Store) Restore() (datatypes.User, bool) {
	s.writeMu.Lock()
	user, ok := s.load()
	s.swap(user, ok)
	s.writeMu.Unlock()
	s.notify(user, ok)
	return s.Current()
}

// Reload re-reads the durable copy. Listeners are notified only when the
// result differs from the current session.
func (s *Store) Reload() {
	s.writeMu.Lock()
	user, ok := s.load()
	cur, had := s.Current()
	if ok == had && (!ok || cur.Equal(user)) {
		s.writeMu.Unlock()
		return
	}
	s.swap(user, ok)
	s.writeMu.Unlock()
	s.logger.Debug("session reloaded from storage", "present", ok)
	s.notify(user, ok)
}

// Set replaces the current user and persists it.
//
// The in-memory record is replaced even when persisting fails; the
// persistence error is returned.
func (s *Store) Set(user datatypes.User) error {
	if user.ID == "" {
		return errors.New("session user has no id")
	}
	s.writeMu.Lock()
	err := s.saveLocked(user)
	s.writeMu.Unlock()
	s.notify(user, true)
	return err
}

// Update applies fn to a copy of the current user and stores the result.
// No other write can land between the read and the store.
func (s *Store) Update(fn func(*datatypes.User)) error {
	s.writeMu.Lock()
	cur, ok := s.Current()
	if !ok {
		s.writeMu.Unlock()
		return ErrNoSession
	}
	fn(&cur)
	if cur.ID == "" {
		s.writeMu.Unlock()
		return errors.New("session user has no id")
	}
	err := s.saveLocked(cur)
	s.writeMu.Unlock()
	s.notify(cur, true)
	return err
}

// Clear signs the user out and erases the durable copy.
func (s *Store) Clear() error {
	s.writeMu.Lock()
	s.swap(datatypes.User{}, false)
	err := s.persister.Delete()
	s.writeMu.Unlock()
	s.notify(datatypes.User{}, false)
	if err != nil {
		return fmt.Errorf("erase session: %w", err)
	}
	return nil
}

// saveLocked swaps and persists user. Callers hold writeMu.
func (s *Store) saveLocked(user datatypes.User) error {
	s.swap(user, true)
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.persister.Save(data); err != nil {
		s.logger.Warn("persist session failed", "error", err)
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Current returns a copy of the signed-in user.
func (s *Store) Current() (datatypes.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return datatypes.User{}, false
	}
	return s.user.Clone(), true
}

// UserID returns the signed-in user's id, or "".
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// Authenticated reports whether a user is signed in.
func (s *Store) Authenticated() bool { return s.UserID() != "" }

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

// Close releases the persister.
func (s *Store) Close() error {
	return s.persister.Close()
}

func (s *Store) load() (datatypes.User, bool) {
	data, err := s.persister.Load()
	if errors.Is(err, ErrNoSession) {
		return datatypes.User{}, false
	}
	if err != nil {
		s.logger.Warn("read persisted session failed", "error", err)
		return datatypes.User{}, false
	}
	var user datatypes.User
	if err := json.Unmarshal(data, &user); err != nil || user.ID == "" {
		s.logger.Warn("persisted session is malformed, ignoring", "error", err)
		return datatypes.User{}, false
	}
	return user, true
}

// swap replaces the in-memory record.
func (s *Store) swap(user datatypes.User, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if present {
		c := user.Clone()
		s.user = &c
	} else {
		s.user = nil
	}
}

// notify calls the listeners. It runs without any store lock held, so a
// listener may read or write the store.
func (s *Store) notify(user datatypes.User, present bool) {
	s.subMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(user.Clone(), present)
	}
}
