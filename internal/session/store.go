// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	sessionFile = "session.json"
	secretFile  = "session.key"
	secretSize  = 32
)

var (
	// ErrNotLoggedIn indicates no session file exists.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrCorrupt indicates the session file exists but cannot be used.
	ErrCorrupt = errors.New("session file corrupt")
)

// Session is the persisted login state for one board server.
type Session struct {
	Server   string    `json:"server"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store reads and writes the session file under dir (normally ~/.parley).
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on first
// Save, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the session file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, sessionFile)
}

func (s *Store) secretPath() string {
	return filepath.Join(s.dir, secretFile)
}

// Save seals the token and writes the session file atomically with 0600
// permissions.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	secret, err := s.loadOrCreateSecret()
	if err != nil {
		return err
	}
	defer ZeroBytes(secret)

	sealed, err := seal(secret, sess.Token)
	if err != nil {
		return fmt.Errorf("failed to seal token: %w", err)
	}

	onDisk := sess
	onDisk.Token = sealed
	onDisk.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path())
}

// Load reads and unseals the session. A missing file returns ErrNotLoggedIn;
// a file that cannot be parsed or whose token cannot be unsealed returns an
// error wrapping ErrCorrupt.
func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if sess.Server == "" || sess.Token == "" {
		return nil, fmt.Errorf("%w: missing fields", ErrCorrupt)
	}

	secret, err := s.loadSecret()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer ZeroBytes(secret)

	token, err := unseal(secret, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	sess.Token = token

	return &sess, nil
}

// Clear removes the session file. The machine secret stays so a later login
// reuses it. A missing file is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// loadSecret reads the machine secret.
func (s *Store) loadSecret() ([]byte, error) {
	secret, err := os.ReadFile(s.secretPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read machine secret: %w", err)
	}
	if len(secret) != secretSize {
		return nil, fmt.Errorf("machine secret has wrong size %d", len(secret))
	}
	return secret, nil
}

// loadOrCreateSecret reads the machine secret, generating one on first use.
func (s *Store) loadOrCreateSecret() ([]byte, error) {
	secret, err := os.ReadFile(s.secretPath())
	if err == nil {
		if len(secret) != secretSize {
			return nil, fmt.Errorf("machine secret has wrong size %d", len(secret))
		}
		return secret, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read machine secret: %w", err)
	}

	secret = make([]byte, secretSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("failed to generate machine secret: %w", err)
	}
	if err := os.WriteFile(s.secretPath(), secret, 0o600); err != nil {
		return nil, fmt.Errorf("failed to store machine secret: %w", err)
	}
	return secret, nil
}
