// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"path/filepath"
	"testing"
)

// kvConformance exercises the behavior every backend must share.
func kvConformance(t *testing.T, kv KV) {
	t.Helper()

	_, err := kv.Get("missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrKeyNotFound", err)
	}

	if err := kv.Set("cf.u1.sessions", []byte(`[1,2,3]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := kv.Get("cf.u1.sessions")
	if err != nil || string(got) != `[1,2,3]` {
		t.Errorf("Get = %q, %v", got, err)
	}

	// Overwrite
	if err := kv.Set("cf.u1.sessions", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, _ = kv.Get("cf.u1.sessions")
	if string(got) != `[]` {
		t.Errorf("after overwrite = %q", got)
	}

	// Delete, twice (second must not error)
	if err := kv.Delete("cf.u1.sessions"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := kv.Delete("cf.u1.sessions"); err != nil {
		t.Errorf("Delete(missing) err = %v", err)
	}
	if _, err := kv.Get("cf.u1.sessions"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV failed: %v", err)
	}
	defer kv.Close()
	kvConformance(t, kv)
}

func TestSQLiteKV(t *testing.T) {
	kv, err := NewSQLiteKV(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV failed: %v", err)
	}
	defer kv.Close()
	kvConformance(t, kv)
}
