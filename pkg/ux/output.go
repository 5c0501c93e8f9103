// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux provides terminal output styling for the Inkwell CLI.
//
// Every helper respects the current Personality: PersonalityMachine prints
// plain, prefix-tagged lines suitable for scripts; the other levels use
// lipgloss styling.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Inkwell palette: ink blues with a paper accent.
var (
	ColorInk      = lipgloss.Color("#3B5BA9") // brand, titles
	ColorInkLight = lipgloss.Color("#6F8FD8") // highlights, selection
	ColorInkDeep  = lipgloss.Color("#22346B") // borders
	ColorPaper    = lipgloss.Color("#F2E9D8") // card headers
	ColorSlate    = lipgloss.Color("#5C6370") // muted text

	ColorSuccess = lipgloss.Color("#3DBE8B")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorLike    = lipgloss.Color("#3DBE8B")
	ColorDislike = lipgloss.Color("#E67E22")
)

// Styles holds the shared lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Tag       lipgloss.Style
	Like      lipgloss.Style
	Dislike   lipgloss.Style

	Box      lipgloss.Style
	Card     lipgloss.Style
	Selected lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorInk),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorInkLight),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorInkLight).Bold(true),
	Tag:       lipgloss.NewStyle().Foreground(ColorInkDeep).Background(ColorPaper).Padding(0, 1),
	Like:      lipgloss.NewStyle().Foreground(ColorLike).Bold(true),
	Dislike:   lipgloss.NewStyle().Foreground(ColorDislike).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorInkDeep).
		Padding(0, 1),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSlate).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(ColorInkLight).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon is a status glyph.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
	IconLike    Icon = "▲"
	IconDislike Icon = "▼"
	IconBlocked Icon = "⊘"
)

// Render returns the icon with its semantic color.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError, IconBlocked:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	case IconLike:
		return Styles.Like.Render(string(i))
	case IconDislike:
		return Styles.Dislike.Render(string(i))
	default:
		return string(i)
	}
}

// =============================================================================
// Printer
// =============================================================================

// Printer writes styled messages. Out receives normal output; Err receives
// warnings and errors in machine mode so scripts can separate them.
//
// # Thread Safety
//
// Printer serializes writes; it is safe for concurrent use.
type Printer struct {
	Out io.Writer
	Err io.Writer

	mu sync.Mutex
}

// NewPrinter returns a Printer over the given writers. A nil err reuses out.
func NewPrinter(out, err io.Writer) *Printer {
	if err == nil {
		err = out
	}
	return &Printer{Out: out, Err: err}
}

var defaultPrinter = NewPrinter(os.Stdout, os.Stderr)

// Default returns the process-wide stdout/stderr Printer.
func Default() *Printer { return defaultPrinter }

func (p *Printer) write(w io.Writer, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// Title prints a styled heading. Machine mode prints nothing.
func (p *Printer) Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	p.write(p.Out, "%s\n", Styles.Title.Render(text))
}

func (p *Printer) Success(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		p.write(p.Out, "OK: %s\n", text)
	case PersonalityMinimal:
		p.write(p.Out, "%s %s\n", IconSuccess.Render(), text)
	default:
		p.write(p.Out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

func (p *Printer) Warning(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		p.write(p.Err, "WARN: %s\n", text)
	case PersonalityMinimal:
		p.write(p.Out, "%s %s\n", IconWarning.Render(), text)
	default:
		p.write(p.Out, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

func (p *Printer) Error(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		p.write(p.Err, "ERROR: %s\n", text)
	case PersonalityMinimal:
		p.write(p.Out, "%s %s\n", IconError.Render(), text)
	default:
		p.write(p.Out, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

func (p *Printer) Info(text string) {
	if GetPersonality().Level == PersonalityMachine {
		p.write(p.Out, "%s\n", text)
		return
	}
	p.write(p.Out, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints secondary text. Machine mode prints nothing.
func (p *Printer) Muted(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	p.write(p.Out, "%s\n", Styles.Muted.Render(text))
}

// Box prints content framed under a title.
func (p *Printer) Box(title, content string) {
	if GetPersonality().Level == PersonalityMachine {
		p.write(p.Out, "%s: %s\n", title, strings.ReplaceAll(content, "\n", " "))
		return
	}
	p.write(p.Out, "%s\n", Styles.Box.Width(60).Render(Styles.Title.Render(title)+"\n"+content))
}

// Raw prints pre-rendered text followed by a newline.
func (p *Printer) Raw(text string) {
	p.write(p.Out, "%s\n", text)
}

// Package-level helpers print through Default().

func Title(text string)         { defaultPrinter.Title(text) }
func Success(text string)       { defaultPrinter.Success(text) }
func Warning(text string)       { defaultPrinter.Warning(text) }
func Error(text string)         { defaultPrinter.Error(text) }
func Info(text string)          { defaultPrinter.Info(text) }
func Muted(text string)         { defaultPrinter.Muted(text) }
func Box(title, content string) { defaultPrinter.Box(title, content) }
