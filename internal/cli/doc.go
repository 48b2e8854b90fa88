// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli defines the Cobra command tree for cfchat.
//
// The bare command launches the full-screen chat interface on a TTY
// and the line-oriented REPL otherwise. Subcommands cover session
// management (list, search, export, delete), the trash (list, restore,
// purge), and feedback submission.
package cli
