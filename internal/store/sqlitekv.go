// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SQLITE-BACKED KV
// =============================================================================

// SQLiteKV stores keys in a single kv table inside one database file.
// Useful where a directory of JSON files is awkward (shared app data
// dir, backup tooling).
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV opens (creating if needed) the database at path.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	// Single writer; the client is a single-process app.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

// Get implements KV.
func (s *SQLiteKV) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set implements KV.
func (s *SQLiteKV) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

// Delete implements KV.
func (s *SQLiteKV) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Close implements KV.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
