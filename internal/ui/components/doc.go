// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable visual pieces of the parley
// TUI: the mention suggestion popup, the block renderer that turns post
// markup into styled terminal text, the status bar, loading spinners, and
// the error banner.
//
// Components hold no board state. They are fed data by the composer and
// board models and only decide how it looks; width-aware truncation keeps
// every view inside the terminal regardless of what members name
// themselves.
package components
