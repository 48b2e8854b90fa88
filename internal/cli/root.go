// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go contains the root command: launching the chat interface.
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cfchat/cfchat-tui/internal/controller"
	"github.com/cfchat/cfchat-tui/internal/exchange"
	"github.com/cfchat/cfchat-tui/internal/history"
	"github.com/cfchat/cfchat-tui/internal/render"
	"github.com/cfchat/cfchat-tui/internal/tui"
)

var (
	plainMode bool
	version   = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "cfchat",
	Short: "Terminal client for the company chat assistant",
	Long: `cfchat is a terminal client for the company chat assistant.
Answers stream live, conversations persist locally per user, and
recent team conversations can be browsed read-only.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRoot,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&plainMode, "plain", false,
		"Use the line-oriented REPL instead of the full-screen interface")

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Fail early on expired credentials instead of on the first send.
	if _, err := a.client.Verify(context.Background()); err != nil {
		return fmt.Errorf("could not verify credentials, sign in again: %w", err)
	}

	if plainMode || a.cfg.UI.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runREPL(a)
	}

	width := a.cfg.UI.Width
	if width == 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		} else {
			width = 80
		}
	}

	renderer := tui.NewProgramRenderer()
	machine := exchange.NewMachine(a.client, render.NewMarkdown(width), renderer)
	ctrl := controller.New(a.store, a.recs, machine, a.client, history.NewAggregator(a.client))

	m := tui.New(ctrl)
	m.WatchStore(a.store.Watch)

	p := tea.NewProgram(m, tea.WithAltScreen())
	renderer.SetProgram(p)

	_, err = p.Run()
	return err
}
