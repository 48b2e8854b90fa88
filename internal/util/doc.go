// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for cfchat: atomic file
// writes for the durable store and rune/width-aware string truncation
// for list and preview rendering.
package util
