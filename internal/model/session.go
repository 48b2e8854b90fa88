// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is a persisted conversation: an ordered message list plus
// identity and lifecycle timestamps. DeletedAt is set only while the
// session sits in the deleted-set (soft delete).
type Session struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Messages  []Message  `json:"messages"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// NewSession creates an empty session with a fresh id and timestamps.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        NewSessionID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSessionID generates a collision-resistant session identifier in
// the fixed format cf.conversation.<yyyymmdd>.<random>.
func NewSessionID() string {
	date := time.Now().Format("20060102")
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "cf.conversation." + date + "." + random
}

// IsEmpty reports whether the session holds no messages. Empty sessions
// are never persisted or listed.
func (s *Session) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Append adds a message and bumps the updated timestamp.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// TruncateAfter removes every message after index i, keeping messages
// [0, i]. Out-of-range indices are a no-op.
func (s *Session) TruncateAfter(i int) {
	if i < 0 || i >= len(s.Messages)-1 {
		return
	}
	s.Messages = s.Messages[:i+1]
	s.UpdatedAt = time.Now()
}

// LastUserIndex returns the index of the most recent user message, or
// -1 if the session has none. Only this message is editable.
func (s *Session) LastUserIndex() int {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].IsUser() {
			return i
		}
	}
	return -1
}

// DeriveTitle sets the title from the first user message when no title
// has been assigned yet.
func (s *Session) DeriveTitle() {
	if s.Title != "" {
		return
	}
	for _, msg := range s.Messages {
		if msg.IsUser() && !msg.IsEmpty() {
			s.Title = msg.Preview(50)
			return
		}
	}
	s.Title = "New conversation"
}

// =============================================================================
// SESSION METADATA
// =============================================================================

// SessionMeta is the listing/sync view of a session: identity and
// counts without message content.
type SessionMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Meta returns the metadata view of the session.
func (s *Session) Meta() SessionMeta {
	return SessionMeta{
		ID:           s.ID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
	}
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders the session as a Markdown document with role
// labels, for the CLI export command.
func (s *Session) ExportMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# " + s.Title + "\n\n")
	sb.WriteString("Created: " + s.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range s.Messages {
		sb.WriteString("**" + msg.Role.DisplayName() + "**:\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}
