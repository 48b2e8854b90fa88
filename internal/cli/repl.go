// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go implements the line-oriented fallback interface, used with
// --plain or when stdout is not a terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/controller"
	"github.com/cfchat/cfchat-tui/internal/exchange"
	"github.com/cfchat/cfchat-tui/internal/history"
	"github.com/cfchat/cfchat-tui/internal/render"
)

// lineRenderer renders exchanges for a line-oriented terminal. Interim
// token redraws are skipped; only the status line and the final answer
// are printed.
type lineRenderer struct {
	statusShown bool
}

func (r *lineRenderer) RenderThinking(status string) {
	if status == "" {
		status = "Thinking..."
	}
	fmt.Printf("\r\033[K%s", status)
	r.statusShown = true
}

func (r *lineRenderer) RenderTokenDelta(string) {}

func (r *lineRenderer) RenderFinal(rendered string) {
	r.clearStatus()
	fmt.Println(rendered)
}

func (r *lineRenderer) RenderError(message string) {
	r.clearStatus()
	fmt.Fprintln(os.Stderr, message)
}

func (r *lineRenderer) clearStatus() {
	if r.statusShown {
		fmt.Print("\r\033[K")
		r.statusShown = false
	}
}

// runREPL drives a read-eval loop over the same controller the
// full-screen interface uses.
func runREPL(a *app) error {
	width := a.cfg.UI.Width
	if width == 0 {
		width = 80
	}

	machine := exchange.NewMachine(a.client, render.NewMarkdown(width), &lineRenderer{})
	ctrl := controller.New(a.store, a.recs, machine, a.client, history.NewAggregator(a.client))

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("cfchat (plain mode). Type /help for commands, /quit to exit.")

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			return nil // EOF
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := replCommand(ctrl, input); quit {
				return nil
			}
			continue
		}

		if err := ctrl.Send(context.Background(), input); err != nil {
			reportExchangeError(err)
			continue
		}
		printRecommendations(ctrl)
	}
}

// replCommand handles slash commands; returns true to quit.
func replCommand(ctrl *controller.Controller, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /new            start a new conversation")
		fmt.Println("  /list           list saved conversations")
		fmt.Println("  /open <id>      switch to a conversation")
		fmt.Println("  /edit <text>    replace your last question and resubmit")
		fmt.Println("  /quit           exit")

	case "/new":
		ctrl.NewChat()
		fmt.Println("Started a new conversation.")

	case "/list":
		metas := ctrl.Sessions()
		if len(metas) == 0 {
			fmt.Println("No saved conversations.")
		}
		for _, meta := range metas {
			fmt.Printf("%s  %s\n", meta.ID, meta.Title)
		}

	case "/open":
		if len(fields) < 2 {
			fmt.Println("Usage: /open <session-id>")
			break
		}
		if err := ctrl.LoadSession(fields[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			break
		}
		for _, msg := range ctrl.Active().Messages {
			fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
		}

	case "/edit":
		text := strings.TrimSpace(strings.TrimPrefix(input, "/edit"))
		if text == "" {
			fmt.Println("Usage: /edit <replacement question>")
			break
		}
		if err := ctrl.Edit(context.Background(), text); err != nil {
			reportExchangeError(err)
			break
		}
		printRecommendations(ctrl)

	default:
		fmt.Printf("Unknown command %s. Try /help.\n", fields[0])
	}
	return false
}

func reportExchangeError(err error) {
	switch {
	case errors.Is(err, chatapi.ErrAuthExpired):
		fmt.Fprintln(os.Stderr, "Your session expired. Sign in again and restart cfchat.")
	case errors.Is(err, controller.ErrEmptyQuestion):
		// Blank input, nothing to report.
	default:
		// The renderer already printed the user-facing message.
	}
}

func printRecommendations(ctrl *controller.Controller) {
	recs := ctrl.LastRecommendations()
	if len(recs) == 0 {
		return
	}
	fmt.Println("You could ask next:")
	for _, rec := range recs {
		fmt.Println("  - " + rec)
	}
}
