// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records read progress per topic so the board can mark
// unread topics and restore scroll position between runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed        = errors.New("history store closed")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- One row per topic the user has opened.
CREATE TABLE IF NOT EXISTS read_marks (
    topic_id INTEGER PRIMARY KEY,
    last_reply INTEGER NOT NULL DEFAULT 0, -- highest reply index seen
    read_at INTEGER NOT NULL               -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_read_marks_read_at ON read_marks(read_at);
`

const initMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`

// =============================================================================
// STORE
// =============================================================================

// Mark is the read progress for one topic.
type Mark struct {
	TopicID   int64
	LastReply int
	ReadAt    time.Time
}

// Config holds store configuration.
type Config struct {
	// DatabasePath is where to store the SQLite database.
	DatabasePath string
}

// DefaultConfig returns the default configuration rooted at dir
// (normally ~/.parley).
func DefaultConfig(dir string) *Config {
	return &Config{
		DatabasePath: filepath.Join(dir, "history.db"),
	}
}

// Store is a mutex-guarded handle on the read-history database.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens (creating if needed) the history database.
func Open(cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// READ MARKS
// =============================================================================

// MarkRead records that the user has read up to reply index lastReply in the
// topic. The stored index never goes backwards: re-reading an old reply does
// not make newer replies unread again.
func (s *Store) MarkRead(ctx context.Context, topicID int64, lastReply int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}
	if lastReply < 0 {
		lastReply = 0
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO read_marks (topic_id, last_reply, read_at)
		VALUES (?, ?, ?)
		ON CONFLICT(topic_id) DO UPDATE SET
			last_reply = MAX(last_reply, excluded.last_reply),
			read_at = excluded.read_at`,
		topicID, lastReply, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// Get returns the mark for a topic. The second return is false when the
// topic has never been opened.
func (s *Store) Get(ctx context.Context, topicID int64) (Mark, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return Mark{}, false, ErrClosed
	}

	var m Mark
	var readAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT topic_id, last_reply, read_at FROM read_marks WHERE topic_id = ?",
		topicID).Scan(&m.TopicID, &m.LastReply, &readAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Mark{}, false, nil
	}
	if err != nil {
		return Mark{}, false, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	m.ReadAt = time.Unix(readAt, 0)
	return m, true, nil
}

// GetAll returns marks for the given topics, keyed by topic ID. Topics with
// no mark are absent from the map.
func (s *Store) GetAll(ctx context.Context, topicIDs []int64) (map[int64]Mark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	marks := make(map[int64]Mark, len(topicIDs))
	if len(topicIDs) == 0 {
		return marks, nil
	}

	placeholders := strings.Repeat("?,", len(topicIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(topicIDs))
	for i, id := range topicIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT topic_id, last_reply, read_at FROM read_marks WHERE topic_id IN ("+placeholders+")",
		args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Mark
		var readAt int64
		if err := rows.Scan(&m.TopicID, &m.LastReply, &readAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		m.ReadAt = time.Unix(readAt, 0)
		marks[m.TopicID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return marks, nil
}

// Prune deletes marks older than maxAge and returns how many were removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, ErrClosed
	}

	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM read_marks WHERE read_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return n, nil
}
