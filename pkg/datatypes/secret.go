// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"

	"github.com/awnumar/memguard"
)

// Secret holds a password in a memguard locked buffer.
//
// The zero value is an empty secret. A Secret prints as "[redacted]" and is
// only ever revealed when marshalled into a request body. Call Destroy once
// the request has been sent.
type Secret struct {
	buf *memguard.LockedBuffer
}

// NewSecret moves s into locked memory.
func NewSecret(s string) Secret {
	if s == "" {
		return Secret{}
	}
	return Secret{buf: memguard.NewBufferFromBytes([]byte(s))}
}

// Len returns the secret length in bytes. A destroyed secret has length 0.
func (s Secret) Len() int {
	if s.buf == nil || !s.buf.IsAlive() {
		return 0
	}
	return s.buf.Size()
}

// Equal compares two secrets in constant time.
func (s Secret) Equal(o Secret) bool {
	if s.Len() != o.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	return s.buf.EqualTo(o.buf.Bytes())
}

// Destroy wipes and releases the locked buffer.
func (s Secret) Destroy() {
	if s.buf != nil {
		s.buf.Destroy()
	}
}

// String never reveals the secret.
func (s Secret) String() string { return "[redacted]" }

// GoString keeps %#v from leaking the buffer.
func (s Secret) GoString() string { return "datatypes.Secret{[redacted]}" }

// MarshalJSON writes the secret as a JSON string.
func (s Secret) MarshalJSON() ([]byte, error) {
	if s.Len() == 0 {
		return []byte(`""`), nil
	}
	return json.Marshal(string(s.buf.Bytes()))
}
