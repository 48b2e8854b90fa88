// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for cfchat.
//
// Settings come from ~/.cfchat/config.toml with built-in defaults and
// environment variable overrides (CFCHAT_*). The config file may hold
// the API token, so it is kept at owner-only permissions.
package config
