// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go implements the "cfchat sessions" command group.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfchat/cfchat-tui/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved conversations",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations, most recent first",
	RunE:  runSessionsList,
}

var sessionsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search conversations by title or first question",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsSearch,
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a conversation as Markdown to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsExport,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Move a conversation to the trash",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsSearchCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Print(store.FormatSessionList(a.store.List(), a.store.ActiveID()))
	return nil
}

func runSessionsSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	metas := a.store.Search(args[0])
	if len(metas) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	fmt.Print(store.FormatSessionList(metas, a.store.ActiveID()))
	return nil
}

func runSessionsExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sess, ok := a.store.Peek(args[0])
	if !ok {
		return fmt.Errorf("session not found: %s", args[0])
	}
	_, err = os.Stdout.WriteString(sess.ExportMarkdown())
	return err
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if _, ok := a.store.Peek(args[0]); !ok {
		return fmt.Errorf("session not found: %s", args[0])
	}
	a.recs.Clear(args[0])
	a.store.Delete(args[0])
	fmt.Printf("Moved %s to trash. Restore with: cfchat trash restore %s\n", args[0], args[0])
	return nil
}
