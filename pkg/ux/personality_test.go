// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withPersonality(t *testing.T, level PersonalityLevel, tty bool) {
	t.Helper()
	orig := GetPersonality()
	origTTY := stdoutIsTerminal
	t.Cleanup(func() {
		SetPersonality(orig)
		stdoutIsTerminal = origTTY
	})
	SetPersonalityLevel(level)
	stdoutIsTerminal = func() bool { return tty }
}

func TestParsePersonalityLevel(t *testing.T) {
	tests := map[string]PersonalityLevel{
		"full":     PersonalityFull,
		"F":        PersonalityFull,
		"min":      PersonalityMinimal,
		"machine":  PersonalityMachine,
		"q":        PersonalityMachine,
		"standard": PersonalityStandard,
		"bogus":    PersonalityStandard,
		"":         PersonalityStandard,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParsePersonalityLevel(in), "input %q", in)
	}
}

func TestInitPersonality_EnvWins(t *testing.T) {
	withPersonality(t, PersonalityFull, false)
	t.Setenv(PersonalityEnv, "minimal")

	InitPersonality("full")
	assert.Equal(t, PersonalityMinimal, GetPersonality().Level)
}

func TestInitPersonality_NonTerminalIsMachine(t *testing.T) {
	withPersonality(t, PersonalityFull, false)
	t.Setenv(PersonalityEnv, "")

	InitPersonality("full")
	assert.Equal(t, PersonalityMachine, GetPersonality().Level)
	assert.False(t, IsInteractive())
}

func TestInitPersonality_Configured(t *testing.T) {
	withPersonality(t, PersonalityFull, true)
	t.Setenv(PersonalityEnv, "")

	InitPersonality("minimal")
	assert.Equal(t, PersonalityMinimal, GetPersonality().Level)
	assert.True(t, IsInteractive())
	assert.False(t, ShouldShowProgress())

	InitPersonality("")
	assert.Equal(t, PersonalityFull, GetPersonality().Level)
	assert.True(t, ShouldShowProgress())
}

func TestSetPersonality_KeepsShowTags(t *testing.T) {
	withPersonality(t, PersonalityFull, true)
	SetPersonality(Personality{Level: PersonalityStandard, ShowTags: false})
	SetPersonalityLevel(PersonalityMinimal)

	got := GetPersonality()
	assert.Equal(t, PersonalityMinimal, got.Level)
	assert.False(t, got.ShowTags)
}
