// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the editing surface: the input box, then whichever of the
// suggestion popup, attach prompt, upload spinner, and preview pane are
// active.
func (m Model) View() string {
	sections := []string{m.viewInput()}

	if m.list.Visible() {
		if popup := m.popup.View(m.list); popup != "" {
			sections = append(sections, popup)
		}
	}

	if m.attaching {
		sections = append(sections, m.viewAttachPrompt())
	}

	if m.Uploading() {
		sections = append(sections, " "+m.uploadSpin.View())
	}

	if m.preview && m.buffer != "" {
		sections = append(sections, m.viewPreview())
	}

	return strings.Join(sections, "\n")
}

// viewInput renders the buffer with a block cursor at the cursor offset.
// The buffer is plain text here; formatting only appears in the preview
// pane and in posted replies.
func (m Model) viewInput() string {
	container := m.theme.InputContainer.Width(m.width - 2)

	if m.buffer == "" {
		line := m.theme.InputPrompt.Render("> ")
		if m.focused {
			line += m.theme.InputCursor.Render(" ")
		}
		if m.placeholder != "" {
			line += m.theme.InputPlaceholder.Render(m.placeholder)
		}
		return container.Render(line)
	}

	lines := strings.Split(m.buffer, "\n")

	// Locate the cursor's line and column in rune terms.
	cursorLine, cursorCol := 0, 0
	remaining := m.cursor
	for i, line := range lines {
		n := len([]rune(line))
		if remaining <= n {
			cursorLine, cursorCol = i, remaining
			break
		}
		remaining -= n + 1 // the newline
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		if i == 0 {
			b.WriteString(m.theme.InputPrompt.Render("> "))
		} else {
			b.WriteString("  ")
		}

		if m.focused && i == cursorLine {
			b.WriteString(m.renderCursorLine(line, cursorCol))
		} else {
			b.WriteString(m.theme.InputText.Render(line))
		}
	}

	return container.Render(b.String())
}

// renderCursorLine splits one line around the cursor column and renders
// the rune under the cursor as a block.
func (m Model) renderCursorLine(line string, col int) string {
	runes := []rune(line)
	if col > len(runes) {
		col = len(runes)
	}

	left := string(runes[:col])
	under := " "
	right := ""
	if col < len(runes) {
		under = string(runes[col])
		right = string(runes[col+1:])
	}

	var b strings.Builder
	if left != "" {
		b.WriteString(m.theme.InputText.Render(left))
	}
	b.WriteString(m.theme.InputCursor.Render(under))
	if right != "" {
		b.WriteString(m.theme.InputText.Render(right))
	}
	return b.String()
}

func (m Model) viewAttachPrompt() string {
	prompt := m.theme.InputPrompt.Render("Attach image: ")
	hint := m.theme.InputPlaceholder.Render("  enter to upload, esc to cancel")
	return lipgloss.JoinHorizontal(lipgloss.Top, prompt, m.attachInput.View()) + "\n" + hint
}

// viewPreview renders the buffer through the same block renderer used
// for posted replies, so what the author sees is what readers get.
func (m Model) viewPreview() string {
	label := m.theme.PreviewLabel.Render("preview")
	body := m.renderer.RenderBuffer(m.buffer)
	if body == "" {
		body = m.theme.InputPlaceholder.Render("(nothing to preview)")
	}
	return m.theme.PreviewPane.Width(m.width - 2).Render(label + "\n" + body)
}
