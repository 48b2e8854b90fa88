// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange drives one question/answer round trip against the
// streaming chat backend.
//
// The machine moves through Idle -> Thinking -> Streaming -> Finalized,
// with Errored reachable from any non-Idle phase. A single in-flight
// guard serializes exchanges: submitting while one is running is
// rejected, not queued, and there is no cancel affordance. Rendering
// goes through the Renderer capability interface so the machine carries
// no dependency on a concrete UI toolkit.
package exchange
