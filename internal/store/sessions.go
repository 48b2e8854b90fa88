// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/cfchat/cfchat-tui/internal/model"
)

// MaxSessions caps retained sessions per user; the least-recently
// updated beyond the cap are evicted on write.
const MaxSessions = 50

// =============================================================================
// SESSION STORE
// =============================================================================

// Store owns the persisted session data for one user.
//
// Every mutation is best-effort: a failed write is logged and the
// in-memory state carries on as authoritative. Reads of corrupt or
// missing keys degrade to empty.
type Store struct {
	kv     KV
	userID string

	// OnSync, when set, receives the metadata of every saved session.
	// The wired implementation is the client's fire-and-forget metadata
	// sync; it must never block or fail loudly.
	OnSync func(model.SessionMeta)
}

// NewStore creates a session store scoped to userID.
func NewStore(kv KV, userID string) *Store {
	return &Store{kv: kv, userID: userID}
}

func (s *Store) key(suffix string) string {
	return "cf." + s.userID + "." + suffix
}

// -----------------------------------------------------------------------------
// low-level JSON access (best-effort)
// -----------------------------------------------------------------------------

func (s *Store) getJSON(key string, v any) bool {
	data, err := s.kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			slog.Warn("store read failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("store key corrupt, ignoring", "key", key, "err", err)
		return false
	}
	return true
}

func (s *Store) setJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("store encode failed", "key", key, "err", err)
		return
	}
	if err := s.kv.Set(key, data); err != nil {
		slog.Warn("store write failed", "key", key, "err", err)
	}
}

func (s *Store) liveSessions() []model.Session {
	var sessions []model.Session
	s.getJSON(s.key("sessions"), &sessions)
	return sessions
}

func (s *Store) deletedSessions() []model.Session {
	var sessions []model.Session
	s.getJSON(s.key("deleted"), &sessions)
	return sessions
}

// =============================================================================
// SAVE
// =============================================================================

// Save upserts the session. The original createdAt survives updates,
// updatedAt is recomputed, the retention cap is enforced, and session
// metadata is handed to OnSync. Empty sessions are never persisted.
func (s *Store) Save(sess *model.Session) {
	if sess == nil || sess.IsEmpty() {
		return
	}
	sess.DeriveTitle()
	sess.UpdatedAt = time.Now()

	sessions := s.liveSessions()
	found := false
	for i := range sessions {
		if sessions[i].ID == sess.ID {
			sess.CreatedAt = sessions[i].CreatedAt
			sessions[i] = *sess
			found = true
			break
		}
	}
	if !found {
		sessions = append(sessions, *sess)
	}

	// Most recently updated first, then trim to the retention cap.
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	if len(sessions) > MaxSessions {
		evicted := sessions[MaxSessions:]
		sessions = sessions[:MaxSessions]
		for _, ev := range evicted {
			slog.Debug("evicting session beyond retention cap", "id", ev.ID)
		}
	}

	s.setJSON(s.key("sessions"), sessions)

	if s.OnSync != nil {
		s.OnSync(sess.Meta())
	}
}

// =============================================================================
// LIST / LOAD
// =============================================================================

// List returns metadata for all live sessions, most recently updated
// first. Sessions with no messages are filtered out.
func (s *Store) List() []model.SessionMeta {
	sessions := s.liveSessions()

	metas := make([]model.SessionMeta, 0, len(sessions))
	for i := range sessions {
		if sessions[i].IsEmpty() {
			continue
		}
		metas = append(metas, sessions[i].Meta())
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas
}

// Load returns the session with the given id and switches the active
// session pointer to it, so subsequent saves target it.
func (s *Store) Load(id string) (*model.Session, bool) {
	sess, ok := s.Peek(id)
	if !ok {
		return nil, false
	}
	s.SetActiveID(id)
	return sess, true
}

// Peek returns the session without touching the active pointer, for
// read-only display.
func (s *Store) Peek(id string) (*model.Session, bool) {
	sessions := s.liveSessions()
	for i := range sessions {
		if sessions[i].ID == id && !sessions[i].IsEmpty() {
			sess := sessions[i]
			return &sess, true
		}
	}
	return nil, false
}

// Search returns sessions whose title or first user message contains
// the query, case-insensitive.
func (s *Store) Search(query string) []model.SessionMeta {
	query = strings.ToLower(query)
	var results []model.SessionMeta
	for _, sess := range s.liveSessions() {
		if sess.IsEmpty() {
			continue
		}
		preview := ""
		for _, msg := range sess.Messages {
			if msg.IsUser() {
				preview = msg.Content
				break
			}
		}
		if strings.Contains(strings.ToLower(sess.Title), query) ||
			strings.Contains(strings.ToLower(preview), query) {
			results = append(results, sess.Meta())
		}
	}
	return results
}

// =============================================================================
// ACTIVE SESSION POINTER
// =============================================================================

// ActiveID returns the persisted active session id, or "".
func (s *Store) ActiveID() string {
	data, err := s.kv.Get(s.key("current"))
	if err != nil {
		return ""
	}
	return string(data)
}

// SetActiveID persists the active session pointer.
func (s *Store) SetActiveID(id string) {
	if err := s.kv.Set(s.key("current"), []byte(id)); err != nil {
		slog.Warn("failed to persist active session pointer", "err", err)
	}
}

// OpenActive returns the session the active pointer names, or a fresh
// empty session when the pointer is unset or dangling.
func (s *Store) OpenActive() *model.Session {
	if id := s.ActiveID(); id != "" {
		if sess, ok := s.Peek(id); ok {
			return sess
		}
	}
	sess := model.NewSession()
	s.SetActiveID(sess.ID)
	return sess
}

// =============================================================================
// SOFT DELETE / RESTORE / PURGE
// =============================================================================

// Delete soft-deletes the session: it moves to the deleted-set with a
// deletedAt stamp. When the deleted session was the active one, a new
// empty session is created and returned so the user is never left
// without an active conversation; otherwise the return is nil.
func (s *Store) Delete(id string) *model.Session {
	sessions := s.liveSessions()
	var removed *model.Session
	kept := sessions[:0]
	for i := range sessions {
		if sessions[i].ID == id {
			sess := sessions[i]
			removed = &sess
			continue
		}
		kept = append(kept, sessions[i])
	}

	if removed != nil {
		now := time.Now()
		removed.DeletedAt = &now
		deleted := append(s.deletedSessions(), *removed)
		s.setJSON(s.key("sessions"), kept)
		s.setJSON(s.key("deleted"), deleted)
	}

	if s.ActiveID() == id {
		fresh := model.NewSession()
		s.SetActiveID(fresh.ID)
		return fresh
	}
	return nil
}

// Deleted returns the soft-deleted sessions, most recently deleted
// first.
func (s *Store) Deleted() []model.Session {
	sessions := s.deletedSessions()
	sort.Slice(sessions, func(i, j int) bool {
		di, dj := sessions[i].DeletedAt, sessions[j].DeletedAt
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})
	return sessions
}

// Restore moves a soft-deleted session back into the live set.
func (s *Store) Restore(id string) bool {
	deleted := s.deletedSessions()
	kept := deleted[:0]
	var restored *model.Session
	for i := range deleted {
		if deleted[i].ID == id {
			sess := deleted[i]
			restored = &sess
			continue
		}
		kept = append(kept, deleted[i])
	}
	if restored == nil {
		return false
	}

	restored.DeletedAt = nil
	s.setJSON(s.key("deleted"), kept)
	s.Save(restored)
	return true
}

// PurgeDeleted permanently removes every soft-deleted session and
// returns how many were erased. Irreversible; callers must confirm
// with the user first.
func (s *Store) PurgeDeleted() int {
	n := len(s.deletedSessions())
	if err := s.kv.Delete(s.key("deleted")); err != nil {
		slog.Warn("failed to purge deleted sessions", "err", err)
	}
	return n
}

// =============================================================================
// CHANGE WATCHING
// =============================================================================

// Watch wires onChange to the backend's external-change signal if the
// backend supports one. No-op otherwise.
func (s *Store) Watch(onChange func()) error {
	if w, ok := s.kv.(Watchable); ok {
		return w.Watch(onChange)
	}
	return nil
}
