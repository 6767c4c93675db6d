// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/parleyhq/parley/internal/ui/styles"
	"github.com/parleyhq/parley/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is one key hint shown under the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the single-line bar at the bottom of the board views. It
// shows where the user is, who they are logged in as, and either a
// transient note or an error. Narrow terminals get fewer segments.
//
// Raw text is truncated to its cell budget before styling; measuring after
// styling would count escape bytes as width.
type StatusBar struct {
	theme     *styles.Theme
	width     int
	board     string
	location  string
	member    string
	note      string
	errText   string
	shortcuts []Shortcut
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		theme: theme,
		width: 80,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	if width > 0 {
		s.width = width
	}
}

// SetBoard sets the board name segment.
func (s *StatusBar) SetBoard(name string) {
	s.board = name
}

// SetLocation sets the breadcrumb segment, e.g. "general > Weekly thread".
func (s *StatusBar) SetLocation(loc string) {
	s.location = loc
}

// SetMember sets the logged-in member segment.
func (s *StatusBar) SetMember(name string) {
	s.member = name
}

// SetNote sets a transient note. Cleared by ClearMessages.
func (s *StatusBar) SetNote(note string) {
	s.note = note
}

// SetError sets an error message, which takes precedence over any note.
func (s *StatusBar) SetError(err string) {
	s.errText = err
}

// ClearMessages clears the note and error.
func (s *StatusBar) ClearMessages() {
	s.note = ""
	s.errText = ""
}

// SetShortcuts sets the key hints rendered by ViewShortcuts.
func (s *StatusBar) SetShortcuts(shortcuts []Shortcut) {
	s.shortcuts = shortcuts
}

// View renders the bar, padded to the full width.
func (s *StatusBar) View() string {
	var line string
	switch s.theme.GetLayoutMode() {
	case styles.LayoutNarrow:
		line = s.viewNarrow()
	case styles.LayoutMedium:
		line = s.viewMedium()
	default:
		line = s.viewWide()
	}
	return s.theme.StatusBar.Width(s.width).MaxWidth(s.width).Render(line)
}

// message renders the error or note segment, empty when there is neither.
func (s *StatusBar) message(budget int) string {
	if s.errText != "" {
		text := util.TruncateWidth(s.errText, budget)
		return s.theme.StatusError.Render(styles.StatusIndicators.Error + " " + text)
	}
	if s.note != "" {
		return s.theme.StatusNote.Render(util.TruncateWidth(s.note, budget))
	}
	return ""
}

// viewNarrow shows only the most urgent segment.
func (s *StatusBar) viewNarrow() string {
	if msg := s.message(s.width - 4); msg != "" {
		return msg
	}
	return util.TruncateWidth(s.location, s.width-2)
}

// viewMedium shows the breadcrumb plus the note or error.
func (s *StatusBar) viewMedium() string {
	parts := []string{util.TruncateWidth(s.location, s.width/2)}
	if msg := s.message(s.width / 3); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, " | ")
}

// viewWide shows board, breadcrumb, message, and member.
func (s *StatusBar) viewWide() string {
	parts := make([]string, 0, 4)
	if s.board != "" {
		parts = append(parts, util.TruncateWidth(s.board, 20))
	}
	if s.location != "" {
		parts = append(parts, util.TruncateWidth(s.location, s.width/2))
	}
	if msg := s.message(s.width / 3); msg != "" {
		parts = append(parts, msg)
	}
	if s.member != "" {
		parts = append(parts, "@"+util.TruncateWidth(s.member, 20))
	}
	return strings.Join(parts, " | ")
}

// ViewShortcuts renders the key hints as a separate line. Empty when no
// shortcuts are set or the terminal is narrow.
func (s *StatusBar) ViewShortcuts() string {
	if len(s.shortcuts) == 0 || s.theme.GetLayoutMode() == styles.LayoutNarrow {
		return ""
	}

	parts := make([]string, 0, len(s.shortcuts))
	for _, sc := range s.shortcuts {
		parts = append(parts,
			s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	return lipgloss.NewStyle().MaxWidth(s.width).Render(strings.Join(parts, "  "))
}
