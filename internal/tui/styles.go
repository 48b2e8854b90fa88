// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// STYLES
// =============================================================================

// Styles collects the lipgloss styles used by the chat view.
type Styles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	Thinking  lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	StatusBar lipgloss.Style
	Recommend lipgloss.Style
	Overlay   lipgloss.Style
	Selected  lipgloss.Style
	Dimmed    lipgloss.Style
	ReadOnly  lipgloss.Style
}

// DefaultStyles returns the default color scheme. Adaptive colors keep
// the view legible on both light and dark terminals.
func DefaultStyles() Styles {
	var (
		accent = lipgloss.AdaptiveColor{Light: "25", Dark: "39"}
		subtle = lipgloss.AdaptiveColor{Light: "245", Dark: "241"}
		danger = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
		warn   = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}
		good   = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	)

	return Styles{
		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(subtle),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		UserLabel: lipgloss.NewStyle().Bold(true).Foreground(good),
		BotLabel:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Thinking:  lipgloss.NewStyle().Italic(true).Foreground(subtle),
		Error:     lipgloss.NewStyle().Foreground(danger),
		Notice:    lipgloss.NewStyle().Foreground(warn),
		StatusBar: lipgloss.NewStyle().Foreground(subtle),
		Recommend: lipgloss.NewStyle().Foreground(accent).Italic(true),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Dimmed:   lipgloss.NewStyle().Foreground(subtle),
		ReadOnly: lipgloss.NewStyle().Bold(true).Foreground(warn),
	}
}
