// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import (
	"fmt"

	"github.com/AleutianAI/inkwell/pkg/logging"
)

// Backend names accepted by OpenPersister.
const (
	BackendBadger = "badger"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// OpenPersister opens the named backend rooted at dir.
func OpenPersister(backend, dir string, logger *logging.Logger) (Persister, error) {
	switch backend {
	case BackendBadger, "":
		cfg := DefaultBadgerConfig(dir)
		if logger != nil {
			cfg.Logger = logger.With("component", "badger").Slog()
		}
		return OpenBadger(cfg)
	case BackendFile:
		return NewFilePersister(dir)
	case BackendMemory:
		return NewMemoryPersister(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
