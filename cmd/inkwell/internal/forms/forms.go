// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package forms holds the input schemas of every Inkwell form and validates
// them before anything is sent to the backend.
//
// Schemas are plain structs tagged for go-playground/validator. Messages
// shown to the user are looked up per field and rule, so the same rule can
// read differently on different forms.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Field errors
// =============================================================================

// FieldError is one rejected field.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors lists rejected fields in form order. A non-empty FieldErrors
// is returned as an error by Validate.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}

// Get returns the message for field, or "".
func (fe FieldErrors) Get(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// First returns the first message, or "".
func (fe FieldErrors) First() string {
	if len(fe) == 0 {
		return ""
	}
	return fe[0].Message
}

// AsFieldErrors extracts FieldErrors from err's chain.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// =============================================================================
// Validator
// =============================================================================

var (
	phonePattern  = regexp.MustCompile(`^\d{10,15}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
	validate      *validator.Validate
	validateOnce  sync.Once
)

// engine returns the shared validator with Inkwell's custom rules.
func engine() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name, _, _ := strings.Cut(f.Tag.Get("form"), ","); name != "" {
				return name
			}
			return f.Name
		})
		mustRegister(v, "letters", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return false
			}
			for _, r := range s {
				if !unicode.IsLetter(r) {
					return false
				}
			}
			return true
		})
		mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
			return strfmt.IsEmail(fl.Field().String())
		})
		mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
			return digitsPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "dateordatetime", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return strfmt.IsDate(s) || strfmt.IsDateTime(s)
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("forms: register %s: %v", tag, err))
	}
}

// Validate checks a schema struct. It returns nil or FieldErrors.
func Validate(form any) error {
	err := engine().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldName(fe), Message: message(fe)})
	}
	return out
}

// Check validates form and keeps only the errors of field. Interactive
// forms use it to validate one input at a time.
func Check(form any, field string) error {
	err := Validate(form)
	fe, ok := AsFieldErrors(err)
	if !ok {
		return err
	}
	var out FieldErrors
	for _, e := range fe {
		if e.Field == field || strings.HasPrefix(e.Field, field+"[") {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateVar checks a single value against rules and reports it under field.
func validateVar(field, value, rules string) error {
	err := engine().Var(value, rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	key := field + "." + verrs[0].Tag()
	msg, ok := messages[key]
	if !ok {
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return FieldErrors{{Field: field, Message: msg}}
}

// fieldName strips the struct prefix and keeps dive indexes: "tags[1]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i] + "[]"
	}
	if msg, ok := messages[name+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
