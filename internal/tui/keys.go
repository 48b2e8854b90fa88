// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP
// =============================================================================

// KeyMap defines the keyboard bindings for the chat interface.
type KeyMap struct {
	Submit       key.Binding
	NewChat      key.Binding
	Sessions     key.Binding
	Peers        key.Binding
	EditLast     key.Binding
	CycleRec     key.Binding
	FeedbackUp   key.Binding
	FeedbackDown key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	Back         key.Binding
	Delete       key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		Sessions: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "sessions"),
		),
		Peers: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("C-p", "team history"),
		),
		EditLast: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "edit last question"),
		),
		CycleRec: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "suggested question"),
		),
		FeedbackUp: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "rate answer up"),
		),
		FeedbackDown: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "rate answer down"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "pgup"),
			key.WithHelp("Up/PgUp", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "pgdown"),
			key.WithHelp("Down/PgDn", "scroll down"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "back"),
		),
		Delete: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete session"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewChat, k.Sessions, k.Peers, k.Quit}
}

// FullHelp groups all bindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.EditLast, k.CycleRec},
		{k.NewChat, k.Sessions, k.Peers, k.Delete},
		{k.FeedbackUp, k.FeedbackDown},
		{k.ScrollUp, k.ScrollDown, k.Back, k.Quit},
	}
}
