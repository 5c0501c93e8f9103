// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogger_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf, Service: "inkwell"})

	logger.Info("hidden")
	logger.Warn("shown", "article_id", "a1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "article_id=a1")
	assert.Contains(t, out, "service=inkwell")
}

func TestLogger_JSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, JSON: true})
	logger.Info("feed loaded", "count", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "feed loaded", rec["msg"])
	assert.EqualValues(t, 3, rec["count"])
}

func TestLogger_QuietWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, Quiet: true})
	logger.Error("boom")
	assert.Empty(t, buf.String())
}

func TestLogger_ExporterReceivesInheritedAttrs(t *testing.T) {
	exp := NewBufferedExporter()
	logger := New(Config{Level: LevelInfo, Quiet: true, Service: "inkwell", Exporter: exp})

	child := logger.With("view", "feed")
	child.Debug("too low")
	child.Info("reaction sent", "type", "like")

	entries := exp.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "reaction sent", entries[0].Message)
	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "inkwell", entries[0].Service)
	assert.Equal(t, "feed", entries[0].Attrs["view"])
	assert.Equal(t, "like", entries[0].Attrs["type"])

	_ = logger.With("x", 1)
	assert.Empty(t, logger.attrs, "child attrs must not leak into parent")
}

func TestLogger_FileOutput(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{LogDir: dir, Quiet: true, Service: "inkwell"})
	logger.Info("persisted", "key", "value")
	require.NoError(t, logger.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "inkwell_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"persisted"`))
}

func TestLogger_UnwritableLogDirFallsBack(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	var buf bytes.Buffer
	logger := New(Config{LogDir: filepath.Join(blocker, "logs"), Output: &buf})
	logger.Info("still works")

	assert.Contains(t, buf.String(), "file logging disabled")
	assert.Contains(t, buf.String(), "still works")
	assert.NoError(t, logger.Close())
}

func TestLogger_CloseIsIdempotent(t *testing.T) {
	logger := New(Config{LogDir: t.TempDir(), Quiet: true, Exporter: NewBufferedExporter()})
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".inkwell/logs"), expandPath("~/.inkwell/logs"))
	assert.Equal(t, "/var/log", expandPath("/var/log"))
}

func TestArgsToMap_IgnoresOddAndNonStringKeys(t *testing.T) {
	m := argsToMap([]any{"a", 1, 2, "b", "dangling"})
	assert.Equal(t, map[string]any{"a": 1}, m)
}
