// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses parley's command line and implements the non-TUI
// commands: login, logout, status, version, and help. The default command
// (no arguments) opens the board interface, which lives in internal/ui.
package cli
