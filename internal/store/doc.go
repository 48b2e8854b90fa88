// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store implements client-side session persistence for cfchat.
//
// All state lives under per-user-scoped keys in a small key-value
// abstraction with two backends: one file per key with atomic writes,
// or a single-table SQLite database. The layout:
//
//	cf.<user>.sessions          JSON array of live sessions
//	cf.<user>.deleted           JSON array of soft-deleted sessions
//	cf.<user>.current           active session id pointer
//	cf.<user>.recs.<sessionID>  message index -> recommended questions
//
// Persistence is best-effort: write failures are logged and swallowed,
// and the in-memory session stays authoritative for the process
// lifetime. Concurrent processes race last-writer-wins; the file
// backend exposes a change watcher so a UI can at least refresh.
package store
