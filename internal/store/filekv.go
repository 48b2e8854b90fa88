// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/cfchat/cfchat-tui/internal/util"
)

// =============================================================================
// FILE-BACKED KV
// =============================================================================

// FileKV stores each key as one JSON file in a directory.
// Writes are atomic (temp file + fsync + rename) so a crash never
// leaves a partially written key behind.
type FileKV struct {
	dir     string
	watcher *fsnotify.Watcher
}

// NewFileKV creates a file-backed KV rooted at dir.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &FileKV{dir: dir}, nil
}

// keyPath maps a key to its file. Keys are dot-separated identifiers
// generated by this package; path separators never appear in them.
func (f *FileKV) keyPath(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get implements KV.
func (f *FileKV) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set implements KV.
func (f *FileKV) Set(key string, value []byte) error {
	return util.AtomicWriteFile(f.keyPath(key), value, 0600)
}

// Delete implements KV.
func (f *FileKV) Delete(key string) error {
	err := os.Remove(f.keyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close implements KV.
func (f *FileKV) Close() error {
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}

// Watch starts watching the storage directory and invokes onChange
// whenever a key file is created, written, or removed. The signal fires
// for this process's own writes too; callers treat it as a cheap
// refresh hint.
func (f *FileKV) Watch(onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(f.dir); err != nil {
		w.Close()
		return err
	}
	f.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// Atomic writes land as a rename; temp files are noise.
				if strings.HasPrefix(filepath.Base(ev.Name), ".tmp-") {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("store watcher error", "err", err)
			}
		}
	}()

	return nil
}
