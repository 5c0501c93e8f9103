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
	"strings"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
)

// messages maps "<field>.<rule>" to the text shown to the user.
var messages = map[string]string{
	// sign up
	"firstName.required":       "First name is required",
	"firstName.letters":        "First name must contain letters only",
	"lastName.required":        "Last name is required",
	"lastName.letters":         "Last name must contain letters only",
	"email.required":           "Email is required",
	"email.emailaddr":          "Invalid email address",
	"phone.required":           "Phone number is required",
	"phone.digits":             "Phone number must contain digits only",
	"phone.min":                "Phone number must be at least 10 digits",
	"dateOfBirth.required":     "Date of birth is required",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 6 characters",
	"confirmPassword.required": "Please confirm your password",
	"confirmPassword.eqfield":  "Passwords do not match",

	// article
	"articleName.min":   "Article name must be at least 3 characters",
	"description.min":   "Description must be at least 10 characters",
	"tags.max":          "Max 5 tags allowed",
	"tags[].min":        "Tags must be at least 2 characters",
	"category.required": "Please select a category",
	"category.min":      "Please select a category",
	"image.file":        "Image must be an existing file",

	// profile, one field at a time
	"profile.firstName.min":      "First name must be at least 2 characters",
	"profile.firstName.notblank": "First name cannot be empty or only spaces",
	"profile.lastName.min":       "Last name must be at least 2 characters",
	"profile.lastName.notblank":  "lastName cannot be empty or only spaces",
	"profile.email.emailaddr":    "Invalid email address",
	"profile.email.notblank":     "email cannot be empty or only spaces",
	"profile.phone.phone":        "Phone must be 10-15 digits",
	"profile.dob.dateordatetime": "Invalid date",
	"profile.preferences.min":    "At least one preference must be selected",
}

// =============================================================================
// Sign in / sign up
// =============================================================================

// SignInForm is the sign-in screen.
type SignInForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Request moves the password into locked memory.
func (f SignInForm) Request() datatypes.SignInRequest {
	return datatypes.SignInRequest{
		Email:    strings.TrimSpace(f.Email),
		Password: datatypes.NewSecret(f.Password),
	}
}

// SignUpForm is the registration screen.
type SignUpForm struct {
	FirstName       string `form:"firstName" validate:"required,letters"`
	LastName        string `form:"lastName" validate:"required,letters"`
	Email           string `form:"email" validate:"required,emailaddr"`
	Phone           string `form:"phone" validate:"required,digits,min=10"`
	DateOfBirth     string `form:"dateOfBirth" validate:"required"`
	Password        string `form:"password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f SignUpForm) Request() datatypes.SignUpRequest {
	return datatypes.SignUpRequest{
		FirstName:       strings.TrimSpace(f.FirstName),
		LastName:        strings.TrimSpace(f.LastName),
		Email:           strings.TrimSpace(f.Email),
		Phone:           strings.TrimSpace(f.Phone),
		DateOfBirth:     strings.TrimSpace(f.DateOfBirth),
		Password:        datatypes.NewSecret(f.Password),
		ConfirmPassword: datatypes.NewSecret(f.ConfirmPassword),
	}
}

// =============================================================================
// Articles
// =============================================================================

// ArticleForm is the create-article screen. ImagePath is optional.
type ArticleForm struct {
	Title       string   `form:"articleName" validate:"min=3"`
	Description string   `form:"description" validate:"min=10"`
	Tags        []string `form:"tags" validate:"max=5,dive,min=2"`
	CategoryID  string   `form:"category" validate:"required"`
	ImagePath   string   `form:"image" validate:"omitempty,file"`
}

// ArticleEditForm validates the fields an edit actually changes. Nil fields
// are left alone.
type ArticleEditForm struct {
	Title       *string   `form:"articleName" validate:"omitnil,min=3"`
	Description *string   `form:"description" validate:"omitnil,min=10"`
	Tags        *[]string `form:"tags" validate:"omitnil,max=5,dive,min=2"`
	CategoryID  *string   `form:"category" validate:"omitnil,min=1"`
	ImagePath   string    `form:"image" validate:"omitempty,file"`
}

// =============================================================================
// Profile
// =============================================================================

// profileRules are applied to one field at a time, the way the profile
// screen saves them.
var profileRules = map[datatypes.ProfileField]string{
	datatypes.FieldFirstName:   "min=2,notblank",
	datatypes.FieldLastName:    "min=2,notblank",
	datatypes.FieldEmail:       "notblank,emailaddr",
	datatypes.FieldPhone:       "phone",
	datatypes.FieldDateOfBirth: "dateordatetime",
}

// ValidateProfileField checks a single edited profile value.
func ValidateProfileField(field datatypes.ProfileField, value string) error {
	rules, ok := profileRules[field]
	if !ok {
		return FieldErrors{{Field: string(field), Message: "Invalid input"}}
	}
	if err := validateVar("profile."+string(field), value, rules); err != nil {
		if fe, ok := AsFieldErrors(err); ok {
			fe[0].Field = string(field)
			return fe
		}
		return err
	}
	return nil
}

// ValidatePreferences requires at least one category.
func ValidatePreferences(prefs []datatypes.Category) error {
	if len(prefs) == 0 {
		return FieldErrors{{Field: "preferences", Message: messages["profile.preferences.min"]}}
	}
	return nil
}
