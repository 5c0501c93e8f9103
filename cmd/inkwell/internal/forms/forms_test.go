// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package forms

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignUp() SignUpForm {
	return SignUpForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Phone:           "5551234567",
		DateOfBirth:     "1815-12-10",
		Password:        "analytical",
		ConfirmPassword: "analytical",
	}
}

func TestValidate_SignUp(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SignUpForm)
		field   string
		message string
	}{
		{"valid", func(*SignUpForm) {}, "", ""},
		{"first name required", func(f *SignUpForm) { f.FirstName = "" }, "firstName", "First name is required"},
		{"first name digits", func(f *SignUpForm) { f.FirstName = "Ada2" }, "firstName", "First name must contain letters only"},
		{"last name spaces", func(f *SignUpForm) { f.LastName = "Love lace" }, "lastName", "Last name must contain letters only"},
		{"bad email", func(f *SignUpForm) { f.Email = "not-an-email" }, "email", "Invalid email address"},
		{"short phone", func(f *SignUpForm) { f.Phone = "12345" }, "phone", "Phone number must be at least 10 digits"},
		{"phone letters", func(f *SignUpForm) { f.Phone = "555-123-4567" }, "phone", "Phone number must contain digits only"},
		{"dob required", func(f *SignUpForm) { f.DateOfBirth = "" }, "dateOfBirth", "Date of birth is required"},
		{"short password", func(f *SignUpForm) { f.Password, f.ConfirmPassword = "abc", "abc" }, "password", "Password must be at least 6 characters"},
		{"mismatch", func(f *SignUpForm) { f.ConfirmPassword = "different" }, "confirmPassword", "Passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validSignUp()
			tt.mutate(&form)
			err := Validate(form)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			fe, ok := AsFieldErrors(err)
			require.True(t, ok, "expected FieldErrors, got %v", err)
			assert.Equal(t, tt.message, fe.Get(tt.field))
		})
	}
}

func TestValidate_SignUpReportsEveryField(t *testing.T) {
	err := Validate(SignUpForm{})
	fe, ok := AsFieldErrors(err)
	require.True(t, ok)
	assert.Len(t, fe, 7)
	assert.Equal(t, "First name is required", fe.First())
	assert.Contains(t, fe.Error(), "email: Email is required")
}

func TestSignUpForm_Request(t *testing.T) {
	req := validSignUp().Request()
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, len("analytical"), req.Password.Len())
	assert.True(t, req.Password.Equal(req.ConfirmPassword))
	assert.Equal(t, "[redacted]", req.Password.String())
}

func TestValidate_SignIn(t *testing.T) {
	fe, ok := AsFieldErrors(Validate(SignInForm{}))
	require.True(t, ok)
	assert.Equal(t, "Email is required", fe.Get("email"))
	assert.Equal(t, "Password is required", fe.Get("password"))

	assert.NoError(t, Validate(SignInForm{Email: "a@b.co", Password: "x"}))
	req := SignInForm{Email: "  a@b.co ", Password: "pw"}.Request()
	assert.Equal(t, "a@b.co", req.Email)
}

func TestValidate_Article(t *testing.T) {
	img := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0600))

	ok := ArticleForm{
		Title:       "Go tips",
		Description: "Ten tips for writing Go",
		Tags:        []string{"go", "tips"},
		CategoryID:  "c1",
		ImagePath:   img,
	}
	assert.NoError(t, Validate(ok))

	bad := ArticleForm{
		Title:       "Go",
		Description: "short",
		Tags:        []string{"go", "x", "ab", "cd", "ef", "gh"},
		ImagePath:   filepath.Join(t.TempDir(), "missing.png"),
	}
	fe, isFE := AsFieldErrors(Validate(bad))
	require.True(t, isFE)
	assert.Equal(t, "Article name must be at least 3 characters", fe.Get("articleName"))
	assert.Equal(t, "Description must be at least 10 characters", fe.Get("description"))
	assert.Equal(t, "Max 5 tags allowed", fe.Get("tags"))
	assert.Equal(t, "Please select a category", fe.Get("category"))
	assert.Equal(t, "Image must be an existing file", fe.Get("image"))

	fe, _ = AsFieldErrors(Validate(ArticleForm{Title: "Go tips", Description: "Ten tips for Go", Tags: []string{"go", "x"}, CategoryID: "c1"}))
	assert.Equal(t, "Tags must be at least 2 characters", fe.Get("tags[1]"))
}

func TestValidate_ArticleEditOnlyChecksChangedFields(t *testing.T) {
	assert.NoError(t, Validate(ArticleEditForm{}))

	short := "ab"
	empty := ""
	fe, ok := AsFieldErrors(Validate(ArticleEditForm{Title: &short, CategoryID: &empty}))
	require.True(t, ok)
	assert.Equal(t, "Article name must be at least 3 characters", fe.Get("articleName"))
	assert.Equal(t, "Please select a category", fe.Get("category"))
	assert.Empty(t, fe.Get("description"))
}

func TestValidateProfileField(t *testing.T) {
	tests := []struct {
		field   datatypes.ProfileField
		value   string
		message string
	}{
		{datatypes.FieldFirstName, "Al", ""},
		{datatypes.FieldFirstName, "A", "First name must be at least 2 characters"},
		{datatypes.FieldFirstName, "   ", "First name cannot be empty or only spaces"},
		{datatypes.FieldLastName, "", "Last name must be at least 2 characters"},
		{datatypes.FieldLastName, "  ", "lastName cannot be empty or only spaces"},
		{datatypes.FieldEmail, "ada@example.com", ""},
		{datatypes.FieldEmail, "nope", "Invalid email address"},
		{datatypes.FieldPhone, "123456789012345", ""},
		{datatypes.FieldPhone, "123", "Phone must be 10-15 digits"},
		{datatypes.FieldPhone, "1234567890123456", "Phone must be 10-15 digits"},
		{datatypes.FieldDateOfBirth, "1990-02-01", ""},
		{datatypes.FieldDateOfBirth, "1990-02-01T10:00:00Z", ""},
		{datatypes.FieldDateOfBirth, "yesterday", "Invalid date"},
	}
	for _, tt := range tests {
		t.Run(string(tt.field)+"/"+tt.value, func(t *testing.T) {
			err := ValidateProfileField(tt.field, tt.value)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			fe, ok := AsFieldErrors(err)
			require.True(t, ok)
			assert.Equal(t, string(tt.field), fe[0].Field)
			assert.Equal(t, tt.message, fe.First())
		})
	}
}

func TestValidateProfileField_UnknownField(t *testing.T) {
	fe, ok := AsFieldErrors(ValidateProfileField("role", "admin"))
	require.True(t, ok)
	assert.Equal(t, "Invalid input", fe.First())
}

func TestValidatePreferences(t *testing.T) {
	err := ValidatePreferences(nil)
	assert.Equal(t, "At least one preference must be selected", err.(FieldErrors).First())
	assert.NoError(t, ValidatePreferences([]datatypes.Category{{ID: "c1"}}))
}

func TestAsFieldErrors_Wrapped(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), FieldErrors{{Field: "x", Message: "bad"}})
	fe, ok := AsFieldErrors(wrapped)
	require.True(t, ok)
	assert.Equal(t, "bad", fe.Get("x"))

	_, ok = AsFieldErrors(errors.New("plain"))
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(FieldErrors{{Field: "a", Message: "b"}}.Error(), "a: b"))
}

func TestCheck_KeepsOnlyTheNamedField(t *testing.T) {
	f := SignUpForm{Email: "nope", Password: "abc"}
	fe, ok := AsFieldErrors(Check(f, "email"))
	require.True(t, ok)
	require.Len(t, fe, 1)
	assert.Equal(t, "Invalid email address", fe.First())

	assert.NoError(t, Check(validSignUp(), "email"))

	a := ArticleForm{Title: "Hello", Description: "long enough text", CategoryID: "c", Tags: []string{"ok", "x"}}
	fe, ok = AsFieldErrors(Check(a, "tags"))
	require.True(t, ok)
	assert.Equal(t, "Tags must be at least 2 characters", fe.First())
	assert.NoError(t, Check(a, "articleName"))
}
