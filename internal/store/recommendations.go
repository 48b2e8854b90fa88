// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
)

// =============================================================================
// RECOMMENDATION CACHE
// =============================================================================

// RecommendationCache persists "related question" suggestions keyed by
// (session id, message index), independent of the message list. Either
// side can be cleared without corrupting the other; regeneration and
// edits call Clear rather than touching messages.
type RecommendationCache struct {
	kv     KV
	userID string
}

// NewRecommendationCache creates a cache scoped to userID over kv.
func NewRecommendationCache(kv KV, userID string) *RecommendationCache {
	return &RecommendationCache{kv: kv, userID: userID}
}

func (c *RecommendationCache) key(sessionID string) string {
	return "cf." + c.userID + ".recs." + sessionID
}

func (c *RecommendationCache) read(sessionID string) map[string][]string {
	data, err := c.kv.Get(c.key(sessionID))
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			slog.Warn("recommendation cache read failed", "session", sessionID, "err", err)
		}
		return map[string][]string{}
	}
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return map[string][]string{}
	}
	return m
}

// Save records the questions suggested after the message at index.
func (c *RecommendationCache) Save(sessionID string, index int, questions []string) {
	if len(questions) == 0 {
		return
	}
	m := c.read(sessionID)
	m[strconv.Itoa(index)] = questions

	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.kv.Set(c.key(sessionID), data); err != nil {
		slog.Warn("recommendation cache write failed", "session", sessionID, "err", err)
	}
}

// Load returns the questions cached for the message at index, or nil.
func (c *RecommendationCache) Load(sessionID string, index int) []string {
	return c.read(sessionID)[strconv.Itoa(index)]
}

// Clear drops every cached recommendation for the session. Message
// history is untouched.
func (c *RecommendationCache) Clear(sessionID string) {
	if err := c.kv.Delete(c.key(sessionID)); err != nil {
		slog.Warn("recommendation cache clear failed", "session", sessionID, "err", err)
	}
}
