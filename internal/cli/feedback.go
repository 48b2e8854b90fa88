// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// feedback.go implements the "cfchat feedback" command.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
)

var (
	feedbackComment    string
	feedbackCategories []string
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <trace-id> <up|down>",
	Short: "Rate an assistant answer",
	Long: `Submit feedback for an assistant answer identified by its trace id.
Trace ids are shown in exported conversations.`,
	Args: cobra.ExactArgs(2),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackComment, "message", "m", "", "Optional comment")
	feedbackCmd.Flags().StringSliceVar(&feedbackCategories, "category", nil,
		"Feedback categories (repeatable)")
}

func runFeedback(cmd *cobra.Command, args []string) error {
	rating := args[1]
	if rating != "up" && rating != "down" {
		return fmt.Errorf("rating must be 'up' or 'down', got %q", rating)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	fb := chatapi.Feedback{
		TraceID:    args[0],
		Rating:     rating,
		Comment:    feedbackComment,
		Categories: feedbackCategories,
	}
	if err := a.client.SubmitFeedback(context.Background(), fb); err != nil {
		return fmt.Errorf("feedback submission failed: %w", err)
	}
	fmt.Println("Feedback sent. Thank you.")
	return nil
}
