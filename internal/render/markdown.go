// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render converts assistant markdown into terminal output.
//
// The conversion is delegated to glamour; when a terminal renderer
// cannot be constructed (dumb terminal, broken environment) rendering
// degrades to plain text rather than failing.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// Markdown renders markdown source for display.
type Markdown interface {
	Render(src string) string
}

// =============================================================================
// GLAMOUR RENDERER
// =============================================================================

type glamourRenderer struct {
	tr *glamour.TermRenderer
}

// NewMarkdown returns a terminal markdown renderer wrapped at width,
// styled for the detected terminal background. Falls back to plain
// text when glamour cannot initialize.
func NewMarkdown(width int) Markdown {
	if width <= 0 {
		width = 80
	}

	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return Plain{}
	}
	return &glamourRenderer{tr: tr}
}

func (g *glamourRenderer) Render(src string) string {
	out, err := g.tr.Render(src)
	if err != nil {
		return src
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// =============================================================================
// PLAIN FALLBACK
// =============================================================================

// Plain is the identity renderer used when glamour is unavailable and
// in tests where ANSI output only gets in the way.
type Plain struct{}

// Render returns src unchanged.
func (Plain) Render(src string) string {
	return src
}
