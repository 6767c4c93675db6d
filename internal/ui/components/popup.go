// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/parleyhq/parley/internal/suggest"
	"github.com/parleyhq/parley/internal/ui/styles"
	"github.com/parleyhq/parley/internal/util"
)

// =============================================================================
// SUGGESTION POPUP COMPONENT
// =============================================================================

// SuggestPopup renders the mention suggestion list above the composer. It
// holds no list state of its own: the controller in internal/suggest is the
// single source of truth, and the popup just draws whatever state it is in.
type SuggestPopup struct {
	theme      *styles.Theme
	maxVisible int
	width      int
}

// NewSuggestPopup creates a popup with room for eight visible candidates.
func NewSuggestPopup(theme *styles.Theme) *SuggestPopup {
	return &SuggestPopup{
		theme:      theme,
		maxVisible: 8,
		width:      44,
	}
}

// SetWidth sets the popup width in terminal cells.
func (p *SuggestPopup) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	p.width = width
}

// SetMaxVisible sets how many candidates are shown before scrolling.
func (p *SuggestPopup) SetMaxVisible(max int) {
	if max > 0 {
		p.maxVisible = max
	}
}

// View renders the popup for the controller's current state. A closed list
// renders nothing.
func (p *SuggestPopup) View(list *suggest.List) string {
	if list == nil || !list.Visible() {
		return ""
	}

	var content string
	switch list.State() {
	case suggest.StateLoading:
		content = p.theme.SuggestNote.Render(
			util.TruncateWidth("searching @"+list.Query()+"...", p.width-4))
	case suggest.StateEmpty:
		content = p.theme.SuggestNote.Render(
			util.TruncateWidth("no members match @"+list.Query(), p.width-4))
	case suggest.StateOpen:
		content = p.viewCandidates(list)
	default:
		return ""
	}

	box := p.theme.SuggestPopup.
		Width(p.width).
		MaxWidth(p.width)

	return box.Render(content)
}

// viewCandidates renders the open list with a sliding window centered on
// the selection.
func (p *SuggestPopup) viewCandidates(list *suggest.List) string {
	candidates := list.Candidates()
	selected := list.SelectedIndex()

	start := 0
	end := len(candidates)
	if len(candidates) > p.maxVisible {
		start = selected - p.maxVisible/2
		if start < 0 {
			start = 0
		}
		end = start + p.maxVisible
		if end > len(candidates) {
			end = len(candidates)
			start = end - p.maxVisible
			if start < 0 {
				start = 0
			}
		}
	}

	rows := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		rows = append(rows, p.viewCandidate(candidates[i].DisplayName, list.Query(), i == selected))
	}

	note := "tab/enter mention  esc dismiss"
	if len(candidates) > p.maxVisible {
		note = hintCount(selected+1, len(candidates)) + "  " + note
	}
	rows = append(rows, p.theme.SuggestNote.Render(util.TruncateWidth(note, p.width-4)))

	return strings.Join(rows, "\n")
}

// viewCandidate renders one row: a selection indicator and the display
// name, with the part matching the live query emphasized.
func (p *SuggestPopup) viewCandidate(name, query string, isSelected bool) string {
	indicator := " "
	if isSelected {
		indicator = ">"
	}

	nameWidth := p.width - 6
	display := util.TruncateWidth(name, nameWidth)

	var rendered string
	if matched, rest, ok := splitPrefixFold(display, query); ok && !isSelected {
		rendered = p.theme.SuggestMatch.Render(matched) + p.theme.SuggestItem.Render(rest)
	} else if isSelected {
		rendered = p.theme.SuggestSelected.Render(util.PadWidth(display, nameWidth))
	} else {
		rendered = p.theme.SuggestItem.Render(display)
	}

	indicatorStyle := lipgloss.NewStyle().
		Width(2).
		Foreground(styles.Cyan)

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		indicatorStyle.Render(indicator),
		rendered,
	)
}

// splitPrefixFold splits name into the run matching query (case-folded)
// and the remainder. ok is false when the query is not a prefix of the
// name, in which case the caller renders the name plain.
func splitPrefixFold(name, query string) (string, string, bool) {
	if query == "" {
		return "", name, false
	}
	nameRunes := []rune(name)
	queryRunes := []rune(query)
	if len(queryRunes) > len(nameRunes) {
		return "", name, false
	}
	head := string(nameRunes[:len(queryRunes)])
	if !strings.EqualFold(head, query) {
		return "", name, false
	}
	return head, string(nameRunes[len(queryRunes):]), true
}

// hintCount formats "k of n" for the scroll hint.
func hintCount(k, n int) string {
	return strconv.Itoa(k) + " of " + strconv.Itoa(n)
}
