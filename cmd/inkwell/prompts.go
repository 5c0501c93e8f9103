// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/views"
	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/charmbracelet/huh"
)

var (
	// ErrAborted is returned when the user leaves a form with ctrl+c or esc.
	ErrAborted = errors.New("cancelled")

	// ErrNoInput is returned by prompts when input is disabled. Commands
	// ask for flags instead.
	ErrNoInput = errors.New("input required but prompts are disabled")
)

// ArticleInput is what the article form collects. Tags is comma
// separated.
type ArticleInput struct {
	Title       string
	Description string
	Tags        string
	CategoryID  string
	ImagePath   string
}

// Prompter collects form input from the user.
//
// # Description
//
// Every method fills its argument in place so callers can pre-populate
// values. Implementations return ErrAborted when the user cancels.
type Prompter interface {
	SignIn(ctx context.Context, f *forms.SignInForm) error
	SignUp(ctx context.Context, f *forms.SignUpForm) error
	Categories(ctx context.Context, title string, all []datatypes.Category, selected *[]string) error
	Article(ctx context.Context, title string, in *ArticleInput, cats []datatypes.Category) error
	ProfileField(ctx context.Context, u datatypes.User, field *datatypes.ProfileField, value *string) error
	Confirm(ctx context.Context, question string) (bool, error)
}

// -----------------------------------------------------------------------------
// Interactive
// -----------------------------------------------------------------------------

// FormPrompter renders huh forms on the terminal.
type FormPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

var _ Prompter = (*FormPrompter)(nil)

// NewFormPrompter prompts on in/out. Nil streams use the terminal.
// Accessible mode replaces the TUI widgets with plain line prompts.
func NewFormPrompter(in io.Reader, out io.Writer, accessible bool) *FormPrompter {
	return &FormPrompter{in: in, out: out, accessible: accessible}
}

func (p *FormPrompter) run(ctx context.Context, groups ...*huh.Group) error {
	form := huh.NewForm(groups...).
		WithTheme(huh.ThemeCharm()).
		WithAccessible(p.accessible)
	if p.in != nil {
		form = form.WithInput(p.in)
	}
	if p.out != nil {
		form = form.WithOutput(p.out)
	}
	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// check binds a huh validator to one field of a schema struct. The input
// is written into the struct before the whole struct is validated.
func check[T any](form *T, set func(string), field string) func(string) error {
	return func(s string) error {
		set(s)
		return firstOnly(forms.Check(*form, field))
	}
}

// firstOnly shortens FieldErrors to the first message, which is what fits
// under an input.
func firstOnly(err error) error {
	if fe, ok := forms.AsFieldErrors(err); ok {
		return errors.New(fe.First())
	}
	return err
}

func (p *FormPrompter) SignIn(ctx context.Context, f *forms.SignInForm) error {
	return p.run(ctx, huh.NewGroup(
		huh.NewInput().Title("Email").Value(&f.Email).
			Validate(check(f, func(s string) { f.Email = s }, "email")),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password).
			Validate(check(f, func(s string) { f.Password = s }, "password")),
	).Title("Sign in"))
}

func (p *FormPrompter) SignUp(ctx context.Context, f *forms.SignUpForm) error {
	return p.run(ctx,
		huh.NewGroup(
			huh.NewInput().Title("First name").Value(&f.FirstName).
				Validate(check(f, func(s string) { f.FirstName = s }, "firstName")),
			huh.NewInput().Title("Last name").Value(&f.LastName).
				Validate(check(f, func(s string) { f.LastName = s }, "lastName")),
			huh.NewInput().Title("Email").Value(&f.Email).
				Validate(check(f, func(s string) { f.Email = s }, "email")),
			huh.NewInput().Title("Phone").Value(&f.Phone).
				Validate(check(f, func(s string) { f.Phone = s }, "phone")),
			huh.NewInput().Title("Date of birth").Placeholder("YYYY-MM-DD").Value(&f.DateOfBirth).
				Validate(check(f, func(s string) { f.DateOfBirth = s }, "dateOfBirth")),
		).Title("Create your account"),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password).
				Validate(check(f, func(s string) { f.Password = s }, "password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&f.ConfirmPassword).
				Validate(check(f, func(s string) { f.ConfirmPassword = s }, "confirmPassword")),
		),
	)
}

func (p *FormPrompter) Categories(ctx context.Context, title string, all []datatypes.Category, selected *[]string) error {
	opts := make([]huh.Option[string], len(all))
	for i, c := range all {
		opts[i] = huh.NewOption(c.Name, c.ID).Selected(slices.Contains(*selected, c.ID))
	}
	return p.run(ctx, huh.NewGroup(
		huh.NewMultiSelect[string]().Title(title).Options(opts...).Value(selected).
			Validate(func(ids []string) error {
				if len(ids) == 0 {
					return errors.New(views.MsgNoSelection)
				}
				return nil
			}),
	))
}

func (p *FormPrompter) Article(ctx context.Context, title string, in *ArticleInput, cats []datatypes.Category) error {
	draft := func() forms.ArticleForm {
		return forms.ArticleForm{
			Title:       in.Title,
			Description: in.Description,
			Tags:        datatypes.SplitTags(in.Tags),
			CategoryID:  in.CategoryID,
			ImagePath:   strings.TrimSpace(in.ImagePath),
		}
	}
	field := func(set func(string), name string) func(string) error {
		return func(s string) error {
			set(s)
			return firstOnly(forms.Check(draft(), name))
		}
	}

	opts := make([]huh.Option[string], len(cats))
	for i, c := range cats {
		opts[i] = huh.NewOption(c.Name, c.ID)
	}
	return p.run(ctx, huh.NewGroup(
		huh.NewInput().Title("Title").Value(&in.Title).
			Validate(field(func(s string) { in.Title = s }, "articleName")),
		huh.NewText().Title("Description").Value(&in.Description).
			Validate(field(func(s string) { in.Description = s }, "description")),
		huh.NewInput().Title("Tags").Description("comma separated, up to 5").Value(&in.Tags).
			Validate(field(func(s string) { in.Tags = s }, "tags")),
		huh.NewSelect[string]().Title("Category").Options(opts...).Value(&in.CategoryID),
		huh.NewInput().Title("Image").Description("optional file path").Value(&in.ImagePath).
			Validate(field(func(s string) { in.ImagePath = s }, "image")),
	).Title(title))
}

func (p *FormPrompter) ProfileField(ctx context.Context, u datatypes.User, field *datatypes.ProfileField, value *string) error {
	if *field == "" {
		opts := make([]huh.Option[datatypes.ProfileField], len(datatypes.ProfileFields))
		for i, f := range datatypes.ProfileFields {
			opts[i] = huh.NewOption(f.Label()+": "+f.Get(u), f)
		}
		if err := p.run(ctx, huh.NewGroup(
			huh.NewSelect[datatypes.ProfileField]().Title("Edit which field?").Options(opts...).Value(field),
		)); err != nil {
			return err
		}
	}
	if *value == "" {
		*value = field.Get(u)
	}
	f := *field
	return p.run(ctx, huh.NewGroup(
		huh.NewInput().Title(f.Label()).Value(value).
			Validate(func(s string) error { return firstOnly(forms.ValidateProfileField(f, s)) }),
	))
}

func (p *FormPrompter) Confirm(ctx context.Context, question string) (bool, error) {
	var yes bool
	err := p.run(ctx, huh.NewGroup(huh.NewConfirm().Title(question).Value(&yes)))
	return yes, err
}

// -----------------------------------------------------------------------------
// Non-interactive
// -----------------------------------------------------------------------------

// NoPrompter refuses every prompt. It is used with --no-input and when
// stdout is not a terminal.
type NoPrompter struct{}

var _ Prompter = NoPrompter{}

func (NoPrompter) SignIn(context.Context, *forms.SignInForm) error { return ErrNoInput }
func (NoPrompter) SignUp(context.Context, *forms.SignUpForm) error { return ErrNoInput }
func (NoPrompter) Categories(context.Context, string, []datatypes.Category, *[]string) error {
	return ErrNoInput
}
func (NoPrompter) Article(context.Context, string, *ArticleInput, []datatypes.Category) error {
	return ErrNoInput
}
func (NoPrompter) ProfileField(context.Context, datatypes.User, *datatypes.ProfileField, *string) error {
	return ErrNoInput
}

// Confirm answers no.
func (NoPrompter) Confirm(context.Context, string) (bool, error) { return false, nil }
