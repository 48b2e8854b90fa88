// cfchat - terminal client for the company chat assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cfchat/cfchat-tui/internal/cli"
	"github.com/cfchat/cfchat-tui/internal/config"
)

func main() {
	setupLogging()
	cli.Execute()
}

// setupLogging routes structured logs to a file so they never corrupt
// the full-screen interface. On any failure logging stays on stderr.
func setupLogging() {
	dir, err := config.Dir()
	if err != nil {
		return
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return
	}
	file, err := os.OpenFile(filepath.Join(dir, "cfchat.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(file, nil)))
}
