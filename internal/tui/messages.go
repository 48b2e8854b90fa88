// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/history"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// ThinkingMsg updates the progress indicator text.
type ThinkingMsg struct {
	Status string
}

// StreamRenderMsg carries the rendered form of the accumulated answer.
type StreamRenderMsg struct {
	Rendered string
}

// FinalRenderMsg carries the rendered authoritative answer.
type FinalRenderMsg struct {
	Rendered string
}

// StreamErrorMsg carries a user-facing failure message for the
// exchange.
type StreamErrorMsg struct {
	Message string
}

// ExchangeDoneMsg signals that the exchange goroutine returned. Err is
// nil on a finalized answer.
type ExchangeDoneMsg struct {
	Err error
}

// =============================================================================
// OVERLAY MESSAGES
// =============================================================================

// PeerSessionsMsg delivers the team history listing.
type PeerSessionsMsg struct {
	Peers []chatapi.PeerSession
	Err   error
}

// PeerViewMsg delivers one opened read-only peer session.
type PeerViewMsg struct {
	View *history.View
	Err  error
}

// FeedbackSentMsg reports the outcome of a feedback submission.
type FeedbackSentMsg struct {
	Rating string
	Err    error
}

// StoreChangedMsg signals that another process wrote the session data.
type StoreChangedMsg struct{}
