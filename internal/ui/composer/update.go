// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/editor"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/suggest"
	"github.com/parleyhq/parley/internal/upload"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages. Key input is consumed only while focused;
// async results are handled regardless, because uploads and searches
// outlive focus changes.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)

	case suggest.ResultMsg:
		return m.handleSuggestResult(msg)

	case upload.ResultMsg:
		return m.handleUploadResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.uploadSpin, cmd = m.uploadSpin.Update(msg)
		return m, cmd
	}

	if m.attaching {
		var cmd tea.Cmd
		m.attachInput, cmd = m.attachInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()

	// The attach prompt captures the keyboard while open.
	if m.attaching {
		return m.handleAttachKey(msg, key)
	}

	// Suggestion keys take the list only while it is open with
	// candidates; esc dismisses from any visible state. Everything else
	// falls through to editing.
	if m.list.State() == suggest.StateOpen {
		switch key {
		case "up":
			m.list.MoveUp()
			return m, nil
		case "down":
			m.list.MoveDown()
			return m, nil
		case "enter", "tab":
			return m.commitMention()
		case "esc":
			m.dismissSuggestions()
			return m, nil
		}
	} else if m.list.Visible() && key == "esc" {
		m.dismissSuggestions()
		return m, nil
	}

	switch key {
	case "ctrl+o":
		return m.openAttachPrompt()

	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.rescan()

	case "right":
		if m.cursor < editor.RuneLen(m.buffer) {
			m.cursor++
		}
		return m, m.rescan()

	case "up":
		m.cursorLineUp()
		return m, m.rescan()

	case "down":
		m.cursorLineDown()
		return m, m.rescan()

	case "home", "ctrl+a":
		start, _ := m.lineBounds()
		m.cursor = start
		return m, m.rescan()

	case "end", "ctrl+e":
		_, end := m.lineBounds()
		m.cursor = end
		return m, m.rescan()

	case "backspace":
		if m.cursor > 0 {
			m.buffer, m.cursor = editor.Splice(m.buffer, m.cursor-1, m.cursor, "")
		}
		return m, m.rescan()

	case "delete":
		if m.cursor < editor.RuneLen(m.buffer) {
			m.buffer, m.cursor = editor.Splice(m.buffer, m.cursor, m.cursor+1, "")
		}
		return m, m.rescan()

	case "enter":
		return m.insert("\n")
	}

	switch msg.Type {
	case tea.KeyRunes:
		return m.insert(string(msg.Runes))
	case tea.KeySpace:
		return m.insert(" ")
	}

	return m, nil
}

// insert splices text at the cursor.
func (m Model) insert(text string) (Model, tea.Cmd) {
	m.buffer, m.cursor = editor.InsertAt(m.buffer, m.cursor, text)
	return m, m.rescan()
}

// handleAttachKey drives the image path prompt.
func (m Model) handleAttachKey(msg tea.KeyMsg, key string) (Model, tea.Cmd) {
	switch key {
	case "esc":
		m.closeAttachPrompt()
		return m, nil

	case "enter":
		path := strings.TrimSpace(m.attachInput.Value())
		m.closeAttachPrompt()
		if path == "" || m.pipeline == nil {
			return m, nil
		}
		id, cmd := m.pipeline.Start(path, m.cursor)
		m.attemptID = id
		logging.Info("image upload started",
			"attempt", id, "path", path, "at", m.cursor)
		return m, tea.Batch(cmd, m.uploadSpin.Start())
	}

	var cmd tea.Cmd
	m.attachInput, cmd = m.attachInput.Update(msg)
	return m, cmd
}

// openAttachPrompt opens the path prompt. Starting a new attempt while
// one is in flight is allowed; the old attempt's result arrives with a
// tag that no longer matches and is discarded.
func (m Model) openAttachPrompt() (Model, tea.Cmd) {
	if m.pipeline == nil {
		return m, nil
	}
	m.attaching = true
	m.attachInput.SetValue("")
	m.attachInput.Focus()
	return m, textinput.Blink
}

// =============================================================================
// MENTION FLOW
// =============================================================================

// rescan re-runs the mention scanner against the current buffer and
// cursor and reconciles the suggestion list with what it reports. It
// returns a fetch command when a new query needs candidates.
func (m *Model) rescan() tea.Cmd {
	tok, ok := editor.ScanMention(m.buffer, m.cursor)
	if !ok {
		m.list.Dismiss()
		m.hasSuppressed = false
		return nil
	}

	// The popup was dismissed for exactly this query; stay closed until
	// the query changes.
	if m.hasSuppressed {
		if tok.Query == m.suppressed {
			return nil
		}
		m.hasSuppressed = false
	}

	// A bare @ or a query under the configured minimum shows nothing and
	// fetches nothing.
	if editor.RuneLen(tok.Query) < m.minQueryRunes {
		m.list.Dismiss()
		return nil
	}

	if m.list.Visible() && m.list.Query() == tok.Query {
		return nil
	}

	if m.source == nil {
		m.list.Dismiss()
		return nil
	}

	m.list.BeginLoading(tok.Query)
	logging.Debug("fetching mention candidates", "query", tok.Query)
	return m.source.Fetch(tok.Query)
}

// dismissSuggestions closes the popup and remembers the query so the
// scanner does not immediately reopen it.
func (m *Model) dismissSuggestions() {
	m.suppressed = m.list.Query()
	m.hasSuppressed = true
	m.list.Dismiss()
}

// commitMention replaces the live token with the selected candidate and
// a trailing space, and moves the cursor after it. The trailing space
// ends the token, so the scanner leaves the list closed.
func (m Model) commitMention() (Model, tea.Cmd) {
	candidate, ok := m.list.Selected()
	if !ok {
		return m, nil
	}
	tok, ok := editor.ScanMention(m.buffer, m.cursor)
	if !ok {
		// The list outlived its token somehow; close it and move on.
		m.list.Dismiss()
		return m, nil
	}

	m.buffer, m.cursor = editor.Splice(m.buffer, tok.Start, tok.End, "@"+candidate.DisplayName+" ")
	m.list.Dismiss()
	m.hasSuppressed = false
	logging.Debug("mention committed",
		"member", candidate.DisplayName, "cursor", m.cursor)
	return m, m.rescan()
}

// handleSuggestResult applies a member search outcome if it is still
// relevant. The list enforces the staleness rule: the result's query must
// match the live one and the list must not have been dismissed meanwhile.
func (m Model) handleSuggestResult(msg suggest.ResultMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		if m.list.Fail(msg.Query) {
			logging.Warn("member search failed",
				"query", msg.Query, "seq", msg.Seq, "error", msg.Err)
		} else {
			logging.Debug("discarding stale search failure",
				"query", msg.Query, "seq", msg.Seq)
		}
		return m, nil
	}

	if !m.list.Resolve(msg.Query, msg.Candidates) {
		logging.Debug("discarding stale suggestion result",
			"query", msg.Query, "seq", msg.Seq, "candidates", len(msg.Candidates))
	}
	return m, nil
}

// =============================================================================
// UPLOAD FLOW
// =============================================================================

// handleUploadResult finishes an upload attempt. Results for attempts
// other than the in-flight one are stale and change nothing. On success
// the image literal is spliced at the offset captured when the attempt
// started, clamped into whatever the buffer looks like now; on failure
// the buffer is left untouched and the failure is surfaced to the parent.
func (m Model) handleUploadResult(msg upload.ResultMsg) (Model, tea.Cmd) {
	if msg.AttemptID != m.attemptID {
		logging.Debug("discarding stale upload result",
			"attempt", msg.AttemptID, "err", msg.Err != nil)
		return m, nil
	}

	m.attemptID = ""
	m.uploadSpin.Stop()

	if msg.Err != nil {
		logging.Warn("image upload failed", "attempt", msg.AttemptID, "error", msg.Err)
		err := msg.Err
		return m, func() tea.Msg {
			return NoticeMsg{Err: err}
		}
	}

	// Insert at the captured offset (clamped by the editor) and keep the
	// author's cursor where they left it, shifted when the literal lands
	// at or before it.
	lit := editor.RuneLen(msg.Literal)
	buf, end := editor.InsertAt(m.buffer, msg.At, msg.Literal)
	m.buffer = buf
	if end-lit <= m.cursor {
		m.cursor += lit
	}
	logging.Info("image attached",
		"attempt", msg.AttemptID, "thumb", msg.Image.ThumbRef, "cursor", m.cursor)

	cmd := m.rescan()
	return m, tea.Batch(cmd, func() tea.Msg {
		return NoticeMsg{Text: "image attached"}
	})
}

// =============================================================================
// LINE-AWARE CURSOR MOVEMENT
// =============================================================================

// lineBounds returns the rune offsets of the start and end of the line
// the cursor is on. end excludes the newline.
func (m Model) lineBounds() (int, int) {
	runes := []rune(m.buffer)
	start := m.cursor
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	end := m.cursor
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	return start, end
}

// cursorLineUp moves the cursor to the previous line, keeping the column
// where possible.
func (m *Model) cursorLineUp() {
	runes := []rune(m.buffer)
	start, _ := m.lineBounds()
	if start == 0 {
		m.cursor = 0
		return
	}
	col := m.cursor - start

	prevEnd := start - 1 // the newline
	prevStart := prevEnd
	for prevStart > 0 && runes[prevStart-1] != '\n' {
		prevStart--
	}
	if col > prevEnd-prevStart {
		col = prevEnd - prevStart
	}
	m.cursor = prevStart + col
}

// cursorLineDown moves the cursor to the next line, keeping the column
// where possible.
func (m *Model) cursorLineDown() {
	runes := []rune(m.buffer)
	start, end := m.lineBounds()
	if end >= len(runes) {
		m.cursor = len(runes)
		return
	}
	col := m.cursor - start

	nextStart := end + 1 // past the newline
	nextEnd := nextStart
	for nextEnd < len(runes) && runes[nextEnd] != '\n' {
		nextEnd++
	}
	if col > nextEnd-nextStart {
		col = nextEnd - nextStart
	}
	m.cursor = nextStart + col
}
