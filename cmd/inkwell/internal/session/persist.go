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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the name of the session file inside the session directory.
const FileName = StorageKey + ".json"

// FilePersister stores the session as one JSON file.
//
// Writes go to a temp file in the same directory and are renamed into
// place, so readers never see a partial record.
type FilePersister struct {
	path string
}

var _ Persister = (*FilePersister)(nil)

// NewFilePersister stores the session at dir/userData.json.
func NewFilePersister(dir string) (*FilePersister, error) {
	if dir == "" {
		return nil, errors.New("session directory is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create session directory %s: %w", dir, err)
	}
	return &FilePersister{path: filepath.Join(dir, FileName)}, nil
}

// Path returns the session file path.
func (p *FilePersister) Path() string { return p.path }

func (p *FilePersister) Load() ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSession
	}
	return data, err
}

func (p *FilePersister) Save(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p.path), "."+StorageKey+"-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer os.Remove(name) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(name, 0600); err != nil {
		return err
	}
	return os.Rename(name, p.path)
}

func (p *FilePersister) Delete() error {
	err := os.Remove(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (p *FilePersister) Close() error { return nil }

// MemoryPersister keeps the record in process memory.
type MemoryPersister struct {
	mu   sync.Mutex
	data []byte

	// SaveErr, when set, is returned by Save without storing anything.
	SaveErr error
}

var _ Persister = (*MemoryPersister)(nil)

// NewMemoryPersister returns an empty persister.
func NewMemoryPersister() *MemoryPersister { return &MemoryPersister{} }

func (p *MemoryPersister) Load() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return nil, ErrNoSession
	}
	return append([]byte(nil), p.data...), nil
}

func (p *MemoryPersister) Save(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.data = append([]byte(nil), data...)
	return nil
}

func (p *MemoryPersister) Delete() error {
	p.mu.Lock()
	p.data = nil
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Close() error { return nil }
