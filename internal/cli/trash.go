// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// trash.go implements the "cfchat trash" command group for
// soft-deleted conversations.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cfchat/cfchat-tui/internal/store"
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Manage deleted conversations",
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deleted conversations",
	RunE:  runTrashList,
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <session-id>",
	Short: "Restore a deleted conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrashRestore,
}

var trashPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently erase all deleted conversations",
	RunE:  runTrashPurge,
}

var purgeYes bool

func init() {
	trashPurgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "Skip the confirmation prompt")

	trashCmd.AddCommand(trashListCmd)
	trashCmd.AddCommand(trashRestoreCmd)
	trashCmd.AddCommand(trashPurgeCmd)
}

func runTrashList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Print(store.FormatDeletedList(a.store.Deleted()))
	return nil
}

func runTrashRestore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.store.Restore(args[0]) {
		return fmt.Errorf("no deleted session with id %s", args[0])
	}
	fmt.Printf("Restored %s.\n", args[0])
	return nil
}

func runTrashPurge(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	n := len(a.store.Deleted())
	if n == 0 {
		fmt.Println("Trash is empty.")
		return nil
	}

	// Purging is irreversible, so always confirm unless told not to.
	if !purgeYes {
		fmt.Printf("Permanently erase %d deleted conversation(s)? [y/N] ", n)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	purged := a.store.PurgeDeleted()
	fmt.Printf("Erased %d conversation(s).\n", purged)
	return nil
}
