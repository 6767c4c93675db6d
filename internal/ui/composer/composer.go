// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer implements the post editing surface: a multi-line
// buffer with @mention autocompletion, image attachment, and a live
// markup preview.
//
// The composer owns the buffer and the cursor as a rune offset. Every
// edit or cursor move re-runs the mention scanner; the suggestion list
// and fetch source are driven from whatever the scan reports. All async
// results (member searches, image uploads) are tagged when they leave and
// checked against live state when they return, so a stale response can
// change nothing.
package composer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/editor"
	"github.com/parleyhq/parley/internal/suggest"
	"github.com/parleyhq/parley/internal/ui/components"
	"github.com/parleyhq/parley/internal/ui/styles"
	"github.com/parleyhq/parley/internal/upload"
)

// =============================================================================
// MESSAGES
// =============================================================================

// NoticeMsg surfaces a user-facing composer event to the parent model,
// which owns the error banner and the status bar. Err is nil for plain
// status notes.
type NoticeMsg struct {
	Text string
	Err  error
}

// =============================================================================
// MODEL
// =============================================================================

// Config assembles a composer.
type Config struct {
	Theme *styles.Theme

	// Source issues member searches; nil disables suggestions.
	Source *suggest.Source

	// Pipeline uploads attached images; nil disables attachment.
	Pipeline *upload.Pipeline

	// MinQueryRunes is how many runes after the @ trigger a fetch.
	MinQueryRunes int

	// Preview toggles the live markup preview pane.
	Preview bool

	// Placeholder is shown while the buffer is empty.
	Placeholder string
}

// Model is the composer state. It is a value like other Bubble Tea
// components: Update returns the evolved copy.
type Model struct {
	theme *styles.Theme

	// Editing surface
	buffer  string
	cursor  int
	focused bool

	placeholder string

	// Mention machinery. suppressed holds the query whose popup the user
	// dismissed with esc; the scanner does not reopen the list until the
	// live query differs.
	list          *suggest.List
	source        *suggest.Source
	minQueryRunes int
	suppressed    string
	hasSuppressed bool

	// Upload machinery. attemptID tags the in-flight attempt; results
	// carrying any other tag are stale and discarded.
	pipeline    *upload.Pipeline
	attaching   bool
	attachInput textinput.Model
	attemptID   string
	uploadSpin  components.Spinner

	// Preview
	preview  bool
	renderer *components.BlockRenderer
	popup    *components.SuggestPopup

	width int
}

// New creates a composer.
func New(cfg Config) Model {
	if cfg.MinQueryRunes <= 0 {
		cfg.MinQueryRunes = 1
	}

	attach := textinput.New()
	attach.Placeholder = "path to image"
	attach.Prompt = ""
	attach.CharLimit = 4096

	return Model{
		theme:         cfg.Theme,
		placeholder:   cfg.Placeholder,
		list:          suggest.NewList(),
		source:        cfg.Source,
		minQueryRunes: cfg.MinQueryRunes,
		pipeline:      cfg.Pipeline,
		attachInput:   attach,
		uploadSpin:    components.NewUploadSpinner(),
		preview:       cfg.Preview,
		renderer:      components.NewBlockRenderer(cfg.Theme),
		popup:         components.NewSuggestPopup(cfg.Theme),
		width:         80,
	}
}

// Init satisfies the Bubble Tea component convention.
func (m Model) Init() tea.Cmd {
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Value returns the buffer.
func (m Model) Value() string { return m.buffer }

// Cursor returns the cursor as a rune offset into the buffer.
func (m Model) Cursor() int { return m.cursor }

// Focused reports whether the composer is consuming key input.
func (m Model) Focused() bool { return m.focused }

// Uploading reports whether an image upload is in flight.
func (m Model) Uploading() bool { return m.attemptID != "" }

// Attaching reports whether the attach-image prompt is open.
func (m Model) Attaching() bool { return m.attaching }

// SuggestionsVisible reports whether the mention popup occupies space.
func (m Model) SuggestionsVisible() bool { return m.list.Visible() }

// Empty reports whether the buffer has no content to post.
func (m Model) Empty() bool { return m.buffer == "" }

// Focus starts consuming key input.
func (m *Model) Focus() {
	m.focused = true
}

// Blur stops consuming key input, dismissing any open popup and the
// attach prompt. An in-flight upload keeps running.
func (m *Model) Blur() {
	m.focused = false
	m.list.Dismiss()
	m.hasSuppressed = false
	m.closeAttachPrompt()
}

// SetValue replaces the buffer and puts the cursor at its end.
func (m *Model) SetValue(s string) {
	m.buffer = s
	m.cursor = editor.RuneLen(s)
	m.list.Dismiss()
	m.hasSuppressed = false
}

// SetCursor moves the cursor, clamped into the buffer.
func (m *Model) SetCursor(offset int) tea.Cmd {
	n := editor.RuneLen(m.buffer)
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	m.cursor = offset
	return m.rescan()
}

// Reset clears the buffer and all transient state. A result from an
// upload started before the reset no longer matches any attempt and is
// discarded on arrival.
func (m *Model) Reset() {
	m.buffer = ""
	m.cursor = 0
	m.list.Dismiss()
	m.hasSuppressed = false
	m.attemptID = ""
	m.uploadSpin.Stop()
	m.closeAttachPrompt()
}

// SetSize updates the render width.
func (m *Model) SetSize(width int) {
	if width <= 0 {
		return
	}
	m.width = width

	popupWidth := width - 4
	if popupWidth > 48 {
		popupWidth = 48
	}
	m.popup.SetWidth(popupWidth)
	m.renderer.SetWidth(width - 4)
	m.attachInput.Width = width - 20
}

// closeAttachPrompt resets the picker so the next attempt starts clean.
func (m *Model) closeAttachPrompt() {
	m.attaching = false
	m.attachInput.SetValue("")
	m.attachInput.Blur()
}
