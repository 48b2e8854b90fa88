// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tui is the interactive chat interface, built on Bubble Tea.
//
// The model owns the transcript viewport, the input line, and the
// overlays (session picker, peer history). Streaming renders arrive as
// messages posted by the exchange renderer from the exchange goroutine;
// the Update loop stays single-threaded.
package tui
