// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the Inkwell CLI configuration from
// ~/.inkwell/inkwell.yaml, .env files and INKWELL_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Session backends.
const (
	BackendBadger = "badger"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type InkwellConfig struct {
	// API: where the backend lives and how hard we hit it
	API APIConfig `yaml:"api"`

	// Session: where the signed-in user is kept between runs
	Session SessionConfig `yaml:"session"`

	Logging   LoggingConfig   `yaml:"logging"`
	UX        UXConfig        `yaml:"ux"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`   // e.g. http://localhost:8000
	Timeout   time.Duration `yaml:"timeout"`    // e.g. 15s
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables
	Burst     int           `yaml:"burst"`
}

type SessionConfig struct {
	Backend string `yaml:"backend"` // badger, file or memory
	Dir     string `yaml:"dir"`     // e.g. ~/.inkwell/session
	// Watch reloads the session when another inkwell process signs in or
	// out. File backend only.
	Watch bool `yaml:"watch"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

type UXConfig struct {
	Personality string `yaml:"personality"` // full, standard, minimal, machine
	ShowTags    bool   `yaml:"show_tags"`
}

type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter"`
	MetricExporter string `yaml:"metric_exporter"`
	OTLPEndpoint   string `yaml:"otlp_endpoint,omitempty"`
}

// Home returns ~/.inkwell, or ./.inkwell when the home directory is unknown.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inkwell"
	}
	return filepath.Join(home, ".inkwell")
}

// DefaultPath is the config file location.
func DefaultPath() string {
	return filepath.Join(Home(), "inkwell.yaml")
}

func DefaultConfig() InkwellConfig {
	base := Home()
	return InkwellConfig{
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			Timeout:   15 * time.Second,
			RateLimit: 10,
			Burst:     5,
		},
		Session: SessionConfig{
			Backend: BackendBadger,
			Dir:     filepath.Join(base, "session"),
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(base, "logs"),
		},
		UX: UXConfig{
			Personality: "full",
			ShowTags:    true,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c InkwellConfig) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.API.RateLimit < 0 || c.API.Burst < 0 {
		return fmt.Errorf("api.rate_limit and api.burst must not be negative")
	}
	switch c.Session.Backend {
	case BackendBadger, BackendFile:
		if c.Session.Dir == "" {
			return fmt.Errorf("session.dir is required for the %s backend", c.Session.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown session.backend %q", c.Session.Backend)
	}
	if c.Session.Watch && c.Session.Backend != BackendFile {
		return fmt.Errorf("session.watch requires the file backend")
	}
	return nil
}
