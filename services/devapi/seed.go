// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package devapi

import (
	"fmt"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
)

// Demo account created by SeedDemo.
const (
	DemoEmail    = "demo@inkwell.dev"
	DemoPassword = "demo123"
)

var demoArticles = []datatypes.Article{
	{
		Title:       "Why rust never sleeps",
		Description: "A short history of corrosion and the engineers who fight it.",
		Tags:        []string{"engineering", "materials"},
		Category:    "cat-science",
	},
	{
		Title:       "Three days in Lisbon",
		Description: "Trams, tiles and the best custard tarts on the Atlantic coast.",
		Tags:        []string{"europe", "food"},
		Category:    "cat-travel",
	},
	{
		Title:       "Small models, big wins",
		Description: "Running useful language models on a laptop without a GPU.",
		Tags:        []string{"ai", "local"},
		Category:    "cat-technology",
	},
}

// SeedDemo registers the demo account and publishes a few articles by it.
// It returns the demo user id.
func SeedDemo(s *Store) (string, error) {
	id, err := s.Register(Registration{
		FirstName:   "Demo",
		LastName:    "Writer",
		Email:       DemoEmail,
		Phone:       "5550000000",
		DateOfBirth: "1990-01-01",
		Password:    DemoPassword,
	}, DemoPassword)
	if err != nil {
		return "", fmt.Errorf("seed demo user: %w", err)
	}
	for _, a := range demoArticles {
		a.UserID = id
		if _, err := s.CreateArticle(a); err != nil {
			return "", fmt.Errorf("seed article %q: %w", a.Title, err)
		}
	}
	return id, nil
}
