// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete cfchat configuration.
type Config struct {
	API   APIConfig   `toml:"api"`
	Store StoreConfig `toml:"store"`
	UI    UIConfig    `toml:"ui"`
}

// APIConfig points at the chat backend.
type APIConfig struct {
	// BaseURL is the backend root, e.g. "https://chat.example.com".
	BaseURL string `toml:"base_url"`
	// Token is the bearer token. Prefer the CFCHAT_TOKEN environment
	// variable over storing it here.
	Token string `toml:"token"`
	// UserID scopes local storage per signed-in user.
	UserID string `toml:"user_id"`
}

// StoreConfig controls local session persistence.
type StoreConfig struct {
	// Dir is where session data lives. Empty means ~/.cfchat/store.
	Dir string `toml:"dir"`
	// Backend selects the storage engine: "file" or "sqlite".
	Backend string `toml:"backend"`
}

// UIConfig contains display settings.
type UIConfig struct {
	// Width caps the rendered answer width. 0 means terminal width.
	Width int `toml:"width"`
	// Plain disables the full-screen interface in favor of a line
	// oriented REPL.
	Plain bool `toml:"plain"`
}

// =============================================================================
// DEFAULTS AND PATHS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8080",
		},
		Store: StoreConfig{
			Backend: "file",
		},
	}
}

// Dir returns the cfchat configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cfchat"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StoreDir resolves the session storage directory, creating it if
// missing.
func (c *Config) StoreDir() (string, error) {
	dir := c.Store.Dir
	if dir == "" {
		base, err := Dir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "store")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("could not create store directory: %w", err)
	}
	return dir, nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, applies environment overrides and
// defaults, and validates. A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFile(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes a TOML config file into cfg. Token material lives
// here, so permissions are tightened to owner-only on load.
func LoadFile(cfg *Config, path string) error {
	if info, err := os.Stat(path); err == nil && info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not tighten permissions on %s: %v\n", path, err)
		}
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the default TOML file with
// owner-only permissions.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.toml")
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# cfchat configuration file")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS, OVERRIDES, VALIDATION
// =============================================================================

// SetDefaults fills any missing fields with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.Store.Backend == "" {
		c.Store.Backend = defaults.Store.Backend
	}
	if c.API.UserID == "" {
		// Fall back to the OS account name so storage keys stay stable
		// before first sign-in.
		if u := os.Getenv("USER"); u != "" {
			c.API.UserID = u
		} else {
			c.API.UserID = "default"
		}
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - CFCHAT_BASE_URL: overrides api.base_url
//   - CFCHAT_TOKEN: overrides api.token
//   - CFCHAT_USER: overrides api.user_id
//   - CFCHAT_STORE_DIR: overrides store.dir
//   - CFCHAT_STORE_BACKEND: overrides store.backend
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CFCHAT_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("CFCHAT_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("CFCHAT_USER"); v != "" {
		c.API.UserID = v
	}
	if v := os.Getenv("CFCHAT_STORE_DIR"); v != "" {
		c.Store.Dir = v
	}
	if v := os.Getenv("CFCHAT_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}

	switch strings.ToLower(c.Store.Backend) {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store.backend %q is not one of: file, sqlite", c.Store.Backend)
	}

	if c.UI.Width < 0 {
		return fmt.Errorf("ui.width cannot be negative")
	}
	return nil
}
