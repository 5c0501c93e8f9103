// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks identifiers that arrive from untrusted places
// (route query strings, config files, URL path segments) before they are
// used to build backend requests or storage keys.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// idPattern matches backend document ids: hex object ids, UUIDs and short
// slugs. Max length 64.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,63}$`)

// ValidateID returns an error if id is empty or contains anything other
// than letters, digits, '-' and '_'.
//
// Example:
//
//	if err := validation.ValidateID(req.Query.Get("articleId")); err != nil {
//	    return guard.RouteFeed, err
//	}
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}

// ValidateIDs validates every id and reports all invalid ones together.
func ValidateIDs(ids []string) error {
	var invalid []string
	for _, id := range ids {
		if ValidateID(id) != nil {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid ids: %q", invalid)
	}
	return nil
}

// SanitizeID trims whitespace and validates.
func SanitizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}
