// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	in := Session{
		Server:   "https://boards.example.com",
		Username: "kestrel",
		Token:    "tok_4f6a8b2c9d",
	}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in.Server, out.Server)
	assert.Equal(t, in.Username, out.Username)
	assert.Equal(t, in.Token, out.Token)
	assert.False(t, out.SavedAt.IsZero())
}

func TestTokenNotStoredInClear(t *testing.T) {
	store := NewStore(t.TempDir())

	token := "tok_secret_0123456789abcdef"
	require.NoError(t, store.Save(Session{
		Server:   "https://boards.example.com",
		Username: "kestrel",
		Token:    token,
	}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), token)
	assert.Contains(t, string(raw), EncryptedPrefix)
}

func TestSessionFilePermissions(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(Session{
		Server: "https://boards.example.com",
		Token:  "tok_x",
	}))

	fi, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLoadCorruptJSON(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{nope"), 0o600))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadMissingFields(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"),
		[]byte(`{"username":"kestrel"}`), 0o600))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadPlainTextTokenRejected(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// Seed a secret so the failure is the token format, not a missing key.
	require.NoError(t, store.Save(Session{Server: "https://b.example.com", Token: "tok"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"),
		[]byte(`{"server":"https://b.example.com","token":"tok_plain"}`), 0o600))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadTamperedToken(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(Session{
		Server: "https://boards.example.com",
		Token:  "tok_original",
	}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	// Flip a character inside the sealed blob.
	mangled := strings.Replace(string(raw), EncryptedPrefix, EncryptedPrefix+"AAAA", 1)
	require.NoError(t, os.WriteFile(store.Path(), []byte(mangled), 0o600))

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestLoadMissingSecret(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(Session{Server: "https://b.example.com", Token: "tok"}))
	require.NoError(t, os.Remove(filepath.Join(dir, "session.key")))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestClear(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(Session{Server: "https://b.example.com", Token: "tok"}))

	require.NoError(t, store.Clear())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// Clearing twice is fine.
	assert.NoError(t, store.Clear())
}

func TestSaveReusesSecret(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Save(Session{Server: "https://b.example.com", Token: "tok_1"}))
	first, err := os.ReadFile(filepath.Join(dir, "session.key"))
	require.NoError(t, err)

	require.NoError(t, store.Save(Session{Server: "https://b.example.com", Token: "tok_2"}))
	second, err := os.ReadFile(filepath.Join(dir, "session.key"))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok_2", out.Token)
}

func TestSealUnsealRoundTrip(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	sealed, err := seal(secret, "hello world")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, EncryptedPrefix))

	plain, err := unseal(secret, sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello world", plain)
}

func TestUnsealWrongSecret(t *testing.T) {
	sealed, err := seal([]byte("0123456789abcdef0123456789abcdef"), "hello")
	require.NoError(t, err)

	_, err = unseal([]byte("ffffffffffffffffffffffffffffffff"), sealed)
	assert.ErrorIs(t, err, ErrDecryptFailed)
}

func TestUnsealMalformed(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	for _, sealed := range []string{
		"tok_plain",
		"ENC:not-base64!!!",
		"ENC:" + "QUFBQQ==", // too short for salt+nonce
	} {
		_, err := unseal(secret, sealed)
		if !errors.Is(err, ErrInvalidSealed) {
			t.Errorf("unseal(%q) error = %v, want ErrInvalidSealed", sealed, err)
		}
	}
}

func TestSealProducesFreshCiphertext(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	a, err := seal(secret, "same plaintext")
	require.NoError(t, err)
	b, err := seal(secret, "same plaintext")
	require.NoError(t, err)

	// Fresh salt and nonce per seal; identical output would mean reuse.
	assert.NotEqual(t, a, b)
}
