// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser(id string) datatypes.User {
	return datatypes.User{
		ID:            id,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Preferences:   []datatypes.Category{{ID: "c1", Name: "Tech"}},
		LikedArticles: []string{"a1"},
	}
}

func TestStore_SetCurrentClear(t *testing.T) {
	p := NewMemoryPersister()
	s := NewStore(p, nil)

	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Authenticated())

	require.NoError(t, s.Set(testUser("u1")))
	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "u1", s.UserID())

	data, err := p.Load()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"_id":"u1"`)

	require.NoError(t, s.Clear())
	_, ok = s.Current()
	assert.False(t, ok)
	_, err = p.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStore_CurrentReturnsCopy(t *testing.T) {
	s := NewStore(NewMemoryPersister(), nil)
	require.NoError(t, s.Set(testUser("u1")))

	got, _ := s.Current()
	got.LikedArticles[0] = "mutated"

	again, _ := s.Current()
	assert.Equal(t, []string{"a1"}, again.LikedArticles)
}

func TestStore_SetRejectsMissingID(t *testing.T) {
	s := NewStore(NewMemoryPersister(), nil)
	assert.Error(t, s.Set(datatypes.User{FirstName: "x"}))
	assert.False(t, s.Authenticated())
}

func TestStore_SetPersistFailureStillReplaces(t *testing.T) {
	p := NewMemoryPersister()
	p.SaveErr = errors.New("disk full")
	s := NewStore(p, nil)

	err := s.Set(testUser("u1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, p.SaveErr)
	assert.Equal(t, "u1", s.UserID())
}

func TestStore_Update(t *testing.T) {
	s := NewStore(NewMemoryPersister(), nil)
	assert.ErrorIs(t, s.Update(func(*datatypes.User) {}), ErrNoSession)

	require.NoError(t, s.Set(testUser("u1")))
	require.NoError(t, s.Update(func(u *datatypes.User) { u.FirstName = "Grace" }))
	got, _ := s.Current()
	assert.Equal(t, "Grace", got.FirstName)
}

func TestStore_RestoreMalformedIsAbsent(t *testing.T) {
	exp := logging.NewBufferedExporter()
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Quiet: true, Exporter: exp})

	tests := map[string]string{
		"not json": "{not json",
		"no id":    `{"firstName":"Ada"}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			p := NewMemoryPersister()
			require.NoError(t, p.Save([]byte(raw)))
			s := NewStore(p, logger)

			_, ok := s.Restore()
			assert.False(t, ok)
		})
	}
	assert.Contains(t, exp.Messages(), "persisted session is malformed, ignoring")
}

func TestStore_RestoreEmpty(t *testing.T) {
	s := NewStore(NewMemoryPersister(), nil)
	u, ok := s.Restore()
	assert.False(t, ok)
	assert.Empty(t, u.ID)
}

func TestStore_Subscribe(t *testing.T) {
	s := NewStore(NewMemoryPersister(), nil)

	var mu sync.Mutex
	var events []bool
	unsub := s.Subscribe(func(_ datatypes.User, present bool) {
		mu.Lock()
		events = append(events, present)
		mu.Unlock()
	})

	require.NoError(t, s.Set(testUser("u1")))
	require.NoError(t, s.Clear())
	unsub()
	unsub()
	require.NoError(t, s.Set(testUser("u2")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, events)
}

func TestStore_ReloadNotifiesOnlyOnChange(t *testing.T) {
	p := NewMemoryPersister()
	s := NewStore(p, nil)
	require.NoError(t, s.Set(testUser("u1")))

	calls := 0
	s.Subscribe(func(datatypes.User, bool) { calls++ })

	s.Reload()
	assert.Equal(t, 0, calls)

	require.NoError(t, p.Delete())
	s.Reload()
	assert.Equal(t, 1, calls)
	assert.False(t, s.Authenticated())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore(NewMemoryPersister(), nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set(testUser("u1"))
		}()
		go func() {
			defer wg.Done()
			s.Current()
		}()
	}
	wg.Wait()
	assert.Equal(t, "u1", s.UserID())
}

// slowPersister holds the first Save back so a second writer can race it.
type slowPersister struct {
	*MemoryPersister
	entered chan struct{}
	once    sync.Once
}

func (p *slowPersister) Save(data []byte) error {
	slow := false
	p.once.Do(func() { slow = true })
	if slow {
		close(p.entered)
		time.Sleep(20 * time.Millisecond)
	}
	return p.MemoryPersister.Save(data)
}

func TestStore_LastWriterWinsInMemoryAndOnDisk(t *testing.T) {
	p := &slowPersister{MemoryPersister: NewMemoryPersister(), entered: make(chan struct{})}
	s := NewStore(p, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Set(testUser("first")))
	}()
	<-p.entered
	require.NoError(t, s.Set(testUser("second")))
	wg.Wait()

	assert.Equal(t, "second", s.UserID())
	restored, ok := NewStore(p.MemoryPersister, nil).Restore()
	require.True(t, ok)
	assert.Equal(t, "second", restored.ID)
}

func TestStore_ConcurrentUpdatesAreNotLost(t *testing.T) {
	s := NewStore(NewMemoryPersister(), nil)
	require.NoError(t, s.Set(datatypes.User{ID: "u1"}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(func(u *datatypes.User) {
				u.LikedArticles = append(u.LikedArticles, "a")
			}))
		}()
	}
	wg.Wait()
	got, _ := s.Current()
	assert.Len(t, got.LikedArticles, 20)
}

func TestBadgerPersister_SurvivesRestart(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")

	p, err := OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	s := NewStore(p, nil)
	require.NoError(t, s.Set(testUser("u1")))
	require.NoError(t, s.Close())

	p, err = OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	s = NewStore(p, nil)
	defer s.Close()

	got, ok := s.Restore()
	require.True(t, ok)
	assert.True(t, testUser("u1").Equal(got))

	require.NoError(t, s.Clear())
	_, err = p.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBadgerPersister_InMemory(t *testing.T) {
	p, err := OpenBadger(InMemoryBadgerConfig())
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	require.NoError(t, p.Save([]byte("x")))
	data, err := p.Load()
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	require.NoError(t, p.Delete())
	require.NoError(t, p.Delete())
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}

func TestFilePersister(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePersister(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "userData.json"), p.Path())

	_, err = p.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, p.Save([]byte(`{"_id":"u1"}`)))
	info, err := os.Stat(p.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not remain")

	require.NoError(t, p.Delete())
	require.NoError(t, p.Delete())
}

func TestOpenPersister(t *testing.T) {
	dir := t.TempDir()

	p, err := OpenPersister(BackendFile, dir, nil)
	require.NoError(t, err)
	assert.IsType(t, &FilePersister{}, p)

	p, err = OpenPersister(BackendMemory, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryPersister{}, p)

	p, err = OpenPersister(BackendBadger, filepath.Join(dir, "db"), logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &BadgerPersister{}, p)
	require.NoError(t, p.Close())

	_, err = OpenPersister("redis", dir, nil)
	assert.Error(t, err)
}
