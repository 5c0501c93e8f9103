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
	"errors"
	"fmt"
	"testing"

	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/api"
	"github.com/AleutianAI/inkwell/cmd/inkwell/internal/forms"
	"github.com/stretchr/testify/assert"
)

func TestCommandError_Error(t *testing.T) {
	err := UsageError("article view", errors.New("article id is required"))
	assert.Equal(t, "article view: article id is required", err.Error())
	assert.Equal(t, "feed (exit 2)", (&CommandError{Command: "feed", ExitCode: ExitUsage}).Error())
}

func TestCommandError_Unwrap(t *testing.T) {
	inner := forms.FieldErrors{{Field: "email", Message: "Invalid email address"}}
	err := fmt.Errorf("outer: %w", UsageError("signup", inner))

	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
	_, ok := forms.AsFieldErrors(err)
	assert.True(t, ok)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", UsageError("x", errors.New("bad")), ExitUsage},
		{"wrapped usage", fmt.Errorf("run: %w", UsageError("x", errors.New("bad"))), ExitUsage},
		{"cobra unknown command", errors.New(`unknown command "x" for "inkwell"`), ExitUsage},
		{"cobra unknown flag", errors.New("unknown flag: --nope"), ExitUsage},
		{"request failure", &api.Error{Op: api.OpSignIn, Kind: api.KindNetwork, Err: errors.New("refused")}, ExitOK},
		{"anything else", errors.New("disk full"), ExitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestAlreadyReported(t *testing.T) {
	apiErr := &api.Error{Op: api.OpGetAllArticles, Kind: api.KindUnsuccessful}
	assert.True(t, alreadyReported(fmt.Errorf("feed: %w", apiErr)))
	assert.False(t, alreadyReported(errors.New("plain")))
}

func TestDescribe(t *testing.T) {
	fe := forms.FieldErrors{
		{Field: "email", Message: "Invalid email address"},
		{Field: "phone", Message: "Phone number is required"},
	}
	assert.Equal(t, []string{
		"email: Invalid email address",
		"phone: Phone number is required",
	}, describe(UsageError("signup", fe)))
	assert.Equal(t, []string{"boom"}, describe(errors.New("boom")))
}
