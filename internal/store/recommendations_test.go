// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfchat/cfchat-tui/internal/model"
)

func newTestRecCache(t *testing.T) (*RecommendationCache, *Store) {
	t.Helper()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return NewRecommendationCache(kv, "u1"), NewStore(kv, "u1")
}

func TestRecommendationCache_SaveLoad(t *testing.T) {
	cache, _ := newTestRecCache(t)

	cache.Save("s1", 1, []string{"follow up?", "another?"})
	cache.Save("s1", 3, []string{"third?"})
	cache.Save("s2", 1, []string{"other session"})

	assert.Equal(t, []string{"follow up?", "another?"}, cache.Load("s1", 1))
	assert.Equal(t, []string{"third?"}, cache.Load("s1", 3))
	assert.Nil(t, cache.Load("s1", 2))
	assert.Equal(t, []string{"other session"}, cache.Load("s2", 1))
}

func TestRecommendationCache_Clear(t *testing.T) {
	cache, _ := newTestRecCache(t)

	cache.Save("s1", 1, []string{"a"})
	cache.Save("s2", 1, []string{"b"})

	cache.Clear("s1")
	assert.Nil(t, cache.Load("s1", 1))
	assert.Equal(t, []string{"b"}, cache.Load("s2", 1), "other sessions untouched")
}

func TestRecommendationCache_IndependentOfMessages(t *testing.T) {
	cache, st := newTestRecCache(t)

	sess := model.NewSession()
	sess.Append(model.NewUserMessage("q"))
	sess.Append(model.NewAssistantMessage("a", "t1", []string{"next?"}))
	st.Save(sess)
	cache.Save(sess.ID, 1, []string{"next?"})

	// Clearing recommendations never touches message history.
	cache.Clear(sess.ID)
	loaded, ok := st.Peek(sess.ID)
	require.True(t, ok)
	assert.Len(t, loaded.Messages, 2)

	// And deleting the session leaves other cache entries intact.
	cache.Save("other", 1, []string{"x"})
	st.Delete(sess.ID)
	assert.Equal(t, []string{"x"}, cache.Load("other", 1))
}

func TestRecommendationCache_EmptySaveIgnored(t *testing.T) {
	cache, _ := newTestRecCache(t)
	cache.Save("s1", 1, nil)
	assert.Nil(t, cache.Load("s1", 1))
}
