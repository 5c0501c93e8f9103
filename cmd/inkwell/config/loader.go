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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is read.
const (
	EnvAPIURL         = "INKWELL_API_URL"
	EnvSessionBackend = "INKWELL_SESSION_BACKEND"
	EnvLogLevel       = "INKWELL_LOG_LEVEL"
)

// Global holds the loaded configuration for the running command.
var Global = DefaultConfig()

// Load reads the config at path into Global. An empty path uses
// DefaultPath. A missing file is created with defaults first.
//
// Values from .env in the working directory are loaded into the process
// environment before overrides are applied; variables that are already set
// win over the file.
func Load(path string) (created bool, err error) {
	cfg, created, err := LoadFrom(path)
	if err != nil {
		return created, err
	}
	Global = cfg
	return created, nil
}

// LoadFrom returns the configuration at path without touching Global.
func LoadFrom(path string) (cfg InkwellConfig, created bool, err error) {
	if path == "" {
		path = DefaultPath()
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, false, fmt.Errorf("failed to load .env: %w", err)
	}

	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return cfg, false, err
		}
		created = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, created, fmt.Errorf("failed to read the config file: %w", err)
	}

	cfg = DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, created, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	cfg.Session.Dir = expandHome(cfg.Session.Dir)
	cfg.Logging.Dir = expandHome(cfg.Logging.Dir)

	if err := cfg.Validate(); err != nil {
		return cfg, created, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, created, nil
}

func applyEnv(cfg *InkwellConfig) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvSessionBackend); v != "" {
		cfg.Session.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

func createDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}
