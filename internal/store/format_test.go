// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cfchat/cfchat-tui/internal/model"
)

func TestFormatSessionList(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	metas := []model.SessionMeta{
		{ID: "cf.conversation.20260829.aaaa", Title: "First\nquestion", UpdatedAt: now, MessageCount: 4},
		{ID: "cf.conversation.20260828.bbbb", Title: "Older", UpdatedAt: now.Add(-24 * time.Hour), MessageCount: 2},
	}

	out := FormatSessionList(metas, "cf.conversation.20260829.aaaa")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "* "), "active session marked")
	assert.True(t, strings.HasPrefix(lines[2], "  "), "inactive session unmarked")
	assert.Contains(t, lines[1], "First question", "newline collapsed in title")
}

func TestFormatSessionList_Empty(t *testing.T) {
	assert.Equal(t, "No saved conversations.\n", FormatSessionList(nil, ""))
}

func TestFormatDeletedList(t *testing.T) {
	when := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	sessions := []model.Session{
		{ID: "cf.conversation.20260820.cccc", Title: "Gone", DeletedAt: &when},
	}

	out := FormatDeletedList(sessions)
	assert.Contains(t, out, "2026-08-20 09:30")
	assert.Contains(t, out, "Gone")

	assert.Equal(t, "Trash is empty.\n", FormatDeletedList(nil))
}
