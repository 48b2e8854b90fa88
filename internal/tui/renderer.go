// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// PROGRAM RENDERER
// =============================================================================

// sender is the posting surface of *tea.Program.
type sender interface {
	Send(tea.Msg)
}

// ProgramRenderer bridges the exchange machine to the Bubble Tea loop.
// Render calls happen on the exchange goroutine; each one is posted as
// a message so all view mutation stays in Update.
type ProgramRenderer struct {
	program sender
}

// NewProgramRenderer creates a renderer with no destination yet. The
// program is attached after tea.NewProgram, which needs the model (and
// through it the machine) first.
func NewProgramRenderer() *ProgramRenderer {
	return &ProgramRenderer{}
}

// SetProgram attaches the running program. Must be called before the
// first exchange starts.
func (r *ProgramRenderer) SetProgram(program sender) {
	r.program = program
}

func (r *ProgramRenderer) send(msg tea.Msg) {
	if r.program != nil {
		r.program.Send(msg)
	}
}

func (r *ProgramRenderer) RenderThinking(status string) {
	r.send(ThinkingMsg{Status: status})
}

func (r *ProgramRenderer) RenderTokenDelta(rendered string) {
	r.send(StreamRenderMsg{Rendered: rendered})
}

func (r *ProgramRenderer) RenderFinal(rendered string) {
	r.send(FinalRenderMsg{Rendered: rendered})
}

func (r *ProgramRenderer) RenderError(message string) {
	r.send(StreamErrorMsg{Message: message})
}
