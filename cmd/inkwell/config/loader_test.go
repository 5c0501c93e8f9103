// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvAPIURL, EnvSessionBackend, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoadFrom_CreatesDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "deep", "inkwell.yaml")

	cfg, created, err := LoadFrom(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendBadger, cfg.Session.Backend)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk InkwellConfig
	require.NoError(t, yaml.Unmarshal(data, &onDisk))
	assert.Equal(t, 15*time.Second, onDisk.API.Timeout)

	_, created, err = LoadFrom(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://api.example.com\n  timeout: 3s\n"), 0600))

	cfg, _, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5, cfg.API.Burst)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIURL, "http://127.0.0.1:9999/")
	t.Setenv(EnvSessionBackend, "MEMORY")
	t.Setenv(EnvLogLevel, "debug")

	cfg, _, err := LoadFrom(filepath.Join(t.TempDir(), "inkwell.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.API.BaseURL)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFrom_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvAPIURL)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAPIURL+"=http://dotenv.local:8000\n"), 0600))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv(EnvAPIURL) })

	cfg, _, err := LoadFrom(filepath.Join(dir, "inkwell.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.local:8000", cfg.API.BaseURL)
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unclosed"), 0600))

	_, _, err := LoadFrom(path)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLoad_SetsGlobal(t *testing.T) {
	clearEnv(t)
	orig := Global
	t.Cleanup(func() { Global = orig })

	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ux:\n  personality: minimal\n"), 0600))
	_, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "minimal", Global.UX.Personality)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InkwellConfig)
		errMsg string
	}{
		{"default ok", func(*InkwellConfig) {}, ""},
		{"relative url", func(c *InkwellConfig) { c.API.BaseURL = "localhost:8000" }, "base_url"},
		{"ftp scheme", func(c *InkwellConfig) { c.API.BaseURL = "ftp://x" }, "scheme"},
		{"negative timeout", func(c *InkwellConfig) { c.API.Timeout = -time.Second }, "timeout"},
		{"unknown backend", func(c *InkwellConfig) { c.Session.Backend = "redis" }, "unknown session.backend"},
		{"file without dir", func(c *InkwellConfig) { c.Session.Backend = BackendFile; c.Session.Dir = "" }, "session.dir"},
		{"memory needs no dir", func(c *InkwellConfig) { c.Session.Backend = BackendMemory; c.Session.Dir = "" }, ""},
		{"watch needs file", func(c *InkwellConfig) { c.Session.Watch = true }, "watch"},
		{"watch with file", func(c *InkwellConfig) { c.Session.Backend = BackendFile; c.Session.Watch = true }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x"), expandHome("~/x"))
	assert.Equal(t, "/abs", expandHome("/abs"))
}
