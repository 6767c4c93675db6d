// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// EncryptedPrefix marks a sealed value (format: ENC:base64(salt|nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

// NonceSize is the AES-GCM nonce size (12 bytes / 96 bits).
const NonceSize = 12

// KeySize is the AES-256 key size (32 bytes / 256 bits).
const KeySize = 32

// SaltSize is the key-derivation salt size (32 bytes).
const SaltSize = 32

// PBKDF2Iterations is the PBKDF2-SHA-256 iteration count.
// OWASP 2023 recommends 600,000+ for adequate brute-force resistance.
const PBKDF2Iterations = 600000

var (
	// ErrDecryptFailed indicates unsealing failed (wrong key or tampered data).
	ErrDecryptFailed = errors.New("token decryption failed: authentication tag mismatch")
	// ErrInvalidSealed indicates the sealed value is malformed.
	ErrInvalidSealed = errors.New("invalid sealed token format")
)

// ZeroBytes zeros sensitive byte slices to limit key material lifetime in memory.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// deriveKey derives an AES-256 key from the machine secret and salt
// using PBKDF2-SHA-256.
func deriveKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, PBKDF2Iterations, KeySize, sha256.New)
}

// seal encrypts plaintext under a key derived from secret with a fresh salt
// and nonce, and returns the ENC:-prefixed base64 encoding of
// salt|nonce|ciphertext|tag.
func seal(secret []byte, plaintext string) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := deriveKey(secret, salt)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, SaltSize+NonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)

	return EncryptedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// unseal reverses seal. Values without the ENC: prefix are rejected as
// malformed rather than passed through, so a session file can never smuggle
// a plain-text token past the store.
func unseal(secret []byte, sealed string) (string, error) {
	if !strings.HasPrefix(sealed, EncryptedPrefix) {
		return "", ErrInvalidSealed
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSealed, err)
	}
	if len(data) < SaltSize+NonceSize {
		return "", ErrInvalidSealed
	}

	salt := data[:SaltSize]
	nonce := data[SaltSize : SaltSize+NonceSize]
	ciphertext := data[SaltSize+NonceSize:]

	key := deriveKey(secret, salt)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
