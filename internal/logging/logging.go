// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide slog logger.
//
// Parley is a full-screen terminal program, so logs never go to stdout or
// stderr while the interface is running. Init opens a log file (by default
// under ~/.parley/) and installs a text handler on it; before Init, and when
// the file cannot be opened, log calls are discarded.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu  sync.RWMutex
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// ParseLevel maps a config level string to a slog.Level. Unknown or empty
// strings map to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init opens path for appending and routes all subsequent log calls to it at
// the given level. It returns a close function that flushes nothing (slog
// text handlers are unbuffered) but releases the file handle.
func Init(path, level string) (func() error, error) {
	if path == "" {
		return nil, fmt.Errorf("empty log path")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: ParseLevel(level)})

	mu.Lock()
	log = slog.New(h)
	mu.Unlock()

	return func() error {
		mu.Lock()
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		mu.Unlock()
		return f.Close()
	}, nil
}

// Logger returns the current process logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs with slog-style key/value pairs.
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs with slog-style key/value pairs.
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs with slog-style key/value pairs.
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs with slog-style key/value pairs.
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}
