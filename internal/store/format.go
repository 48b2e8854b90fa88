// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"strconv"
	"strings"

	"github.com/cfchat/cfchat-tui/internal/model"
	"github.com/cfchat/cfchat-tui/internal/util"
)

// FormatSessionList renders session metadata as a plain table for the
// CLI. Most recent first, matching List ordering. The active session
// is marked with an asterisk.
func FormatSessionList(metas []model.SessionMeta, activeID string) string {
	if len(metas) == 0 {
		return "No saved conversations.\n"
	}

	var sb strings.Builder
	sb.WriteString("  " + util.PadWidth("ID", 34) + " " +
		util.PadWidth("UPDATED", 17) + " " +
		util.PadWidth("MSGS", 5) + " " +
		"TITLE\n")

	for _, m := range metas {
		marker := "  "
		if m.ID == activeID {
			marker = "* "
		}
		sb.WriteString(marker + util.PadWidth(m.ID, 34) + " " +
			util.PadWidth(m.UpdatedAt.Format("2006-01-02 15:04"), 17) + " " +
			util.PadWidth(strconv.Itoa(m.MessageCount), 5) + " " +
			util.TruncateWidth(util.CollapseSpace(m.Title), 50) + "\n")
	}
	return sb.String()
}

// FormatDeletedList renders the trash listing with deletion stamps.
func FormatDeletedList(sessions []model.Session) string {
	if len(sessions) == 0 {
		return "Trash is empty.\n"
	}

	var sb strings.Builder
	sb.WriteString(util.PadWidth("ID", 34) + " " +
		util.PadWidth("DELETED", 17) + " " +
		"TITLE\n")
	for _, s := range sessions {
		stamp := ""
		if s.DeletedAt != nil {
			stamp = s.DeletedAt.Format("2006-01-02 15:04")
		}
		sb.WriteString(util.PadWidth(s.ID, 34) + " " +
			util.PadWidth(stamp, 17) + " " +
			util.TruncateWidth(util.CollapseSpace(s.Title), 50) + "\n")
	}
	return sb.String()
}
