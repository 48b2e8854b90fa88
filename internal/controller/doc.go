// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller wires the session store, the response state
// machine, the recommendation cache, and the peer history overlay into
// the user-facing operations: send, edit/regenerate, session
// switching, soft delete, and feedback.
//
// The controller is the explicit session context object: it owns the
// active session pointer and the in-flight/read-only flags instead of
// leaving them in ambient module state. It is initialized on mount and
// reset on logout.
package controller
