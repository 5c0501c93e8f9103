// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"errors"
	"fmt"
	"strings"
)

// -----------------------------------------------------------------------------
// Error Types
// -----------------------------------------------------------------------------

// Kind categorizes API failures so views can pick the right alert.
type Kind int

const (
	// KindNetwork means the request never produced an HTTP response.
	KindNetwork Kind = iota

	// KindStatus means the backend answered with a 4xx or 5xx status.
	KindStatus

	// KindDecode means the response body was not the expected JSON.
	KindDecode

	// KindUnsuccessful means the backend answered {"success": false}.
	KindUnsuccessful

	// KindCancelled means the caller's context ended first.
	KindCancelled

	// KindEncode means the request could not be built.
	KindEncode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK"
	case KindStatus:
		return "STATUS"
	case KindDecode:
		return "DECODE"
	case KindUnsuccessful:
		return "UNSUCCESSFUL"
	case KindCancelled:
		return "CANCELLED"
	case KindEncode:
		return "ENCODE"
	default:
		return "UNKNOWN"
	}
}

// Error is returned by every Client method.
//
// # Example
//
//	_, err := client.SignIn(ctx, req)
//	if api.IsUnsuccessful(err) {
//	    notify.Alert("Invalid email or password")
//	}
type Error struct {
	// Kind categorizes the failure.
	Kind Kind

	// Op is the endpoint operation, e.g. "signin".
	Op string

	// StatusCode is the HTTP status, 0 when there was no response.
	StatusCode int

	// Message is the backend's message, or a generic description.
	Message string

	// Detail carries a truncated response body for debugging.
	Detail string

	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: KindStatus})
// works on wrapped chains.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// KindOf returns the Kind of the first *Error in err's chain and whether
// there was one.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsUnsuccessful reports a {"success": false} answer.
func IsUnsuccessful(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindUnsuccessful
}

// IsNetwork reports a failure to reach the backend or read its answer:
// transport errors, HTTP error statuses and undecodable bodies.
func IsNetwork(err error) bool {
	k, ok := KindOf(err)
	return ok && (k == KindNetwork || k == KindStatus || k == KindDecode)
}

// IsCancelled reports a request abandoned because its context ended.
func IsCancelled(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindCancelled
}

func unsuccessful(op, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{Kind: KindUnsuccessful, Op: op, Message: message}
}
