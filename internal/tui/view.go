// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"fmt"
	"strings"

	"github.com/cfchat/cfchat-tui/internal/util"
)

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.mode {
	case modeSessions:
		return m.viewSessions()
	case modePeers:
		return m.viewPeers()
	case modePeerView:
		return m.viewPeerConversation()
	}
	return m.viewChat()
}

// =============================================================================
// CHAT VIEW
// =============================================================================

func (m *Model) viewChat() string {
	var b strings.Builder

	b.WriteString(m.header(m.ctrl.Active().Title))
	b.WriteString(m.viewport.View() + "\n")

	switch {
	case m.waiting && m.stream == "":
		status := m.thinking
		if status == "" {
			status = "Thinking..."
		}
		b.WriteString(m.spin.View() + " " + m.styles.Thinking.Render(status) + "\n")
	case m.errText != "":
		b.WriteString(m.styles.Error.Render(m.errText) + "\n")
	case m.notice != "":
		b.WriteString(m.styles.Notice.Render(m.notice) + "\n")
	case len(m.recs) > 0:
		hint := "Suggested: " + util.TruncateWidth(m.recs[m.recIndex], m.width-14)
		b.WriteString(m.styles.Recommend.Render(hint) + "\n")
	default:
		b.WriteString("\n")
	}

	b.WriteString(m.input.View() + "\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m *Model) header(title string) string {
	if title == "" {
		title = "New conversation"
	}
	left := m.styles.Title.Render("cfchat") + "  " +
		m.styles.Dimmed.Render(util.TruncateWidth(title, m.width-20))
	return m.styles.Header.Width(m.width).Render(left) + "\n"
}

func (m *Model) statusBar() string {
	var parts []string
	for _, binding := range m.keys.ShortHelp() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.StatusBar.Render(strings.Join(parts, " · "))
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m *Model) viewSessions() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Conversations") + "\n\n")

	if len(m.sessions) == 0 {
		b.WriteString(m.styles.Dimmed.Render("No saved conversations yet.") + "\n")
	}
	for i, meta := range m.sessions {
		line := fmt.Sprintf("%s  %s (%d messages)",
			meta.UpdatedAt.Format("Jan 02 15:04"),
			util.TruncateWidth(meta.Title, m.width-30),
			meta.MessageCount)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + m.styles.StatusBar.Render(
		"Enter open · C-x delete · Esc back"))
	return m.styles.Overlay.Width(m.width - 2).Render(b.String())
}

func (m *Model) viewPeers() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Team history") + "\n\n")

	if m.peers == nil {
		b.WriteString(m.spin.View() + " " + m.styles.Thinking.Render("Loading...") + "\n")
	} else if len(m.peers) == 0 {
		b.WriteString(m.styles.Dimmed.Render("No recent conversations from teammates.") + "\n")
	}
	for i, peer := range m.peers {
		line := peer.UserName + ": " + util.TruncateWidth(peer.Title, m.width-20)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + m.styles.StatusBar.Render("Enter view · Esc back"))
	return m.styles.Overlay.Width(m.width - 2).Render(b.String())
}

func (m *Model) viewPeerConversation() string {
	var b strings.Builder

	name := ""
	if m.peerView != nil {
		name = m.peerView.UserName
	}
	badge := m.styles.ReadOnly.Render("[read-only]")
	b.WriteString(m.header(name+"'s conversation") + badge + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.styles.StatusBar.Render("Up/Down scroll · Esc back to your chat"))
	return b.String()
}
