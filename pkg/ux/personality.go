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
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// PersonalityLevel controls how rich CLI output is.
type PersonalityLevel string

const (
	// PersonalityFull enables colors, boxes, cards and spinners.
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard is Full without spinners.
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal uses icons and basic formatting only.
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine prints plain prefixed lines for scripts.
	PersonalityMachine PersonalityLevel = "machine"
)

// PersonalityEnv overrides the configured level when set.
const PersonalityEnv = "INKWELL_PERSONALITY"

// Personality is the process-wide output configuration.
type Personality struct {
	Level PersonalityLevel

	// ShowTags renders article tags on feed cards.
	ShowTags bool
}

var (
	currentPersonality = DefaultPersonality()
	personalityMu      sync.RWMutex

	// stdoutIsTerminal is replaced in tests.
	stdoutIsTerminal = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

func GetPersonality() Personality {
	personalityMu.RLock()
	defer personalityMu.RUnlock()
	return currentPersonality
}

func SetPersonality(p Personality) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality = p
}

func SetPersonalityLevel(level PersonalityLevel) {
	personalityMu.Lock()
	defer personalityMu.Unlock()
	currentPersonality.Level = level
}

// ParsePersonalityLevel accepts full names and short forms ("min", "q").
// Anything unrecognized is PersonalityStandard.
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f":
		return PersonalityFull
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "quiet", "q":
		return PersonalityMachine
	default:
		return PersonalityStandard
	}
}

// InitPersonality picks the output level, in order: INKWELL_PERSONALITY,
// machine mode when stdout is not a terminal, then configured.
func InitPersonality(configured string) {
	if env := os.Getenv(PersonalityEnv); env != "" {
		SetPersonalityLevel(ParsePersonalityLevel(env))
		return
	}
	if !stdoutIsTerminal() {
		SetPersonalityLevel(PersonalityMachine)
		return
	}
	if configured == "" {
		SetPersonalityLevel(PersonalityFull)
		return
	}
	SetPersonalityLevel(ParsePersonalityLevel(configured))
}

// IsInteractive reports whether forms and the feed TUI may take over the
// terminal.
func IsInteractive() bool {
	return GetPersonality().Level != PersonalityMachine && stdoutIsTerminal()
}

// ShouldShowProgress reports whether spinners should animate.
func ShouldShowProgress() bool {
	return GetPersonality().Level == PersonalityFull
}

func DefaultPersonality() Personality {
	return Personality{Level: PersonalityFull, ShowTags: true}
}
