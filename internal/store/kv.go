// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "errors"

// ErrKeyNotFound is returned by KV.Get for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// KV is the durable key-value surface the session store runs on.
type KV interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set writes the value for key, creating it if needed.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases backend resources.
	Close() error
}

// Watchable is implemented by backends that can signal external
// modification of the underlying storage (another process writing the
// same user's keys). Purely a refresh hint; no merge is attempted.
type Watchable interface {
	Watch(onChange func()) error
}
