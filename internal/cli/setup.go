// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cfchat/cfchat-tui/internal/chatapi"
	"github.com/cfchat/cfchat-tui/internal/config"
	"github.com/cfchat/cfchat-tui/internal/store"
)

// app bundles the wired dependencies the commands share.
type app struct {
	cfg    *config.Config
	kv     store.KV
	store  *store.Store
	recs   *store.RecommendationCache
	client *chatapi.Client
}

// newApp loads configuration and opens the storage backend.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dir, err := cfg.StoreDir()
	if err != nil {
		return nil, err
	}

	var kv store.KV
	switch strings.ToLower(cfg.Store.Backend) {
	case "sqlite":
		kv, err = store.NewSQLiteKV(filepath.Join(dir, "cfchat.db"))
	default:
		kv, err = store.NewFileKV(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("could not open session storage: %w", err)
	}

	client := chatapi.NewClient(cfg.API.BaseURL, cfg.API.Token)

	st := store.NewStore(kv, cfg.API.UserID)
	st.OnSync = client.SyncSessionMeta

	return &app{
		cfg:    cfg,
		kv:     kv,
		store:  st,
		recs:   store.NewRecommendationCache(kv, cfg.API.UserID),
		client: client,
	}, nil
}

func (a *app) close() {
	_ = a.kv.Close()
}
