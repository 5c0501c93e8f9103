// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the records exchanged with the Inkwell backend.
//
// Every request and response body on the HTTP boundary has an explicit type
// here. The client never decodes into open-ended maps.
//
// Identifiers are the backend's opaque string ids (the `_id` field on the
// wire). Timestamps use strfmt.DateTime so that the backend's RFC 3339
// values with or without milliseconds decode without custom parsing.
package datatypes

// Category is immutable reference data fetched from the backend.
type Category struct {
	ID   string `json:"_id" yaml:"id"`
	Name string `json:"categoryName" yaml:"name"`
}

// CategoryIDs returns the ids of cats in order.
func CategoryIDs(cats []Category) []string {
	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
	}
	return ids
}

// FindCategory returns the category with the given id.
func FindCategory(cats []Category, id string) (Category, bool) {
	for _, c := range cats {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
