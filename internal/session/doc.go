// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the logged-in board session between runs.
//
// The session file lives at ~/.parley/session.json and holds the server URL,
// the username, and the API token. The token is never written in the clear:
// it is sealed with AES-256-GCM under a key derived (PBKDF2-SHA-256) from a
// random per-machine secret kept next to the session file. Encrypted values
// carry an "ENC:" prefix so a plain-text token can never be mistaken for a
// sealed one.
//
// A missing session file simply means "not logged in". A file that exists
// but cannot be parsed or unsealed surfaces ErrCorrupt so callers can force
// a fresh login instead of limping along with a broken token.
package session
