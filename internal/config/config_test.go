// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8080", cfg.API.BaseURL)
	assert.Equal(t, "file", cfg.Store.Backend)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[api]
base_url = "https://chat.example.com"
user_id = "alice"

[store]
backend = "sqlite"

[ui]
width = 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "https://chat.example.com", cfg.API.BaseURL)
	assert.Equal(t, "alice", cfg.API.UserID)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 100, cfg.UI.Width)
}

func TestLoadFile_TightensPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("CFCHAT_BASE_URL", "https://override.example.com")
	t.Setenv("CFCHAT_TOKEN", "tok-123")
	t.Setenv("CFCHAT_USER", "bob")
	t.Setenv("CFCHAT_STORE_BACKEND", "sqlite")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://override.example.com", cfg.API.BaseURL)
	assert.Equal(t, "tok-123", cfg.API.Token)
	assert.Equal(t, "bob", cfg.API.UserID)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())

	bad := Default()
	bad.API.BaseURL = "not a url"
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.Store.Backend = "redis"
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.UI.Width = -1
	assert.Error(t, bad.Validate())
}

func TestSetDefaults_UserFallback(t *testing.T) {
	t.Setenv("USER", "carol")
	cfg := &Config{}
	cfg.SetDefaults()
	assert.Equal(t, "carol", cfg.API.UserID)
	assert.Equal(t, "file", cfg.Store.Backend)
}

func TestStoreDir_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	cfg := Default()
	cfg.Store.Dir = dir

	got, err := cfg.StoreDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
