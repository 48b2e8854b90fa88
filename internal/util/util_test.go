// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "data.json")

	if err := AtomicWriteFile(path, []byte(`{"a":1}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("unexpected content: %s", data)
	}

	// Overwrite must replace, not append
	if err := AtomicWriteFile(path, []byte(`{"b":2}`), 0644); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != `{"b":2}` {
		t.Errorf("overwrite content: %s", data)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after writes, got %d", len(entries))
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"ab", 2, "ab"},
		{"abcd", 2, "ab"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateWidth_CJK(t *testing.T) {
	// Each CJK rune is two columns wide
	got := TruncateWidth("日本語テキスト", 8)
	if got != "日本..." {
		t.Errorf("TruncateWidth = %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("a\r\nb\nc"); got != "a b c" {
		t.Errorf("CollapseSpace = %q", got)
	}
}
