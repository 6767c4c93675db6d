// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package board provides the main board view for the parley TUI.

The board package implements the browsing and posting interface on top of
the Bubble Tea framework: a keyboard-driven walk from categories to topics
to a scrollable reader, plus a compose screen that embeds the composer
component for writing topics and replies.

# Key Components

## Model (board.go)

The Model struct is the central Bubble Tea model for the application:
  - Board data (site, categories, topics, the open topic)
  - Navigation state (which screen is active, list selections, paging)
  - Read-history integration for unread markers
  - The embedded composer for posting

## Update Loop (update.go)

Handles all Bubble Tea messages:
  - Keyboard dispatch per screen
  - Fetch results (categories, topics, a topic with replies)
  - Posting results and composer notices
  - Window resizes and live config reloads

All fetches run as tea.Cmd goroutines and re-enter the loop as typed
messages; every result message is checked against the live navigation
state before it is applied, so a stale fetch can never clobber a screen
the member has already left.

## View Rendering (view.go)

Renders the active screen with the shared theme: header, category and
topic lists with unread and pinned markers, the reader viewport with
block-rendered reply bodies, the compose form, and the status bar.

## Lightbox (lightbox.go)

A trivial full-image-ref-or-none holder. The reader collects the image
blocks of the open topic; one key cycles the lightbox through them.

# Usage

	b := board.New(board.Config{
		Theme:  theme,
		Config: cfg,
		Client: client,
		Marks:  marks,
		Member: sess.Member,
	})
	p := tea.NewProgram(b, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
*/
package board
