// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"github.com/cfchat/cfchat-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session.
//
// Construct messages through NewUserMessage and NewAssistantMessage
// rather than branching on the role string at call sites; only
// assistant messages carry recommendations and a trace id.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Assistant-only fields
	RecommendedQuestions []string `json:"recommendedQuestions,omitempty"`
	TraceID              string   `json:"traceId,omitempty"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message with its trace id and
// any recommended follow-up questions from the done record.
func NewAssistantMessage(content, traceID string, recommended []string) Message {
	return Message{
		Role:                 RoleAssistant,
		Content:              content,
		RecommendedQuestions: recommended,
		TraceID:              traceID,
	}
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsEmpty reports whether the message has no visible content.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// Preview returns a single-line truncated preview of the content.
// Rune-based truncation keeps multi-byte characters intact.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseSpace(m.Content), maxLen)
}
