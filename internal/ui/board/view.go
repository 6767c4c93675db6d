// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// view.go - rendering for the board screens.
//
// Layout: header (1 line) + content + status bar (1 line) + shortcut help
// (1 line, optional). Overlays (lightbox, error banner, loading spinner)
// replace the content area rather than stacking on top of it.
//
// All member-authored text (titles, names, ranks, image refs) passes
// through components.Sanitize before styling, and raw text is truncated
// before styles are applied so escape sequences never count as width.

package board

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/markup"
	"github.com/parleyhq/parley/internal/ui/components"
	"github.com/parleyhq/parley/internal/util"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// View renders the complete board interface.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.viewHeader()
	status := m.status.View()
	shortcuts := ""
	if m.conf.UI.ShowHelpBar {
		shortcuts = m.status.ViewShortcuts()
	}

	chrome := lipgloss.Height(header) + lipgloss.Height(status)
	if shortcuts != "" {
		chrome += lipgloss.Height(shortcuts)
	}
	contentHeight := m.height - chrome
	if contentHeight < 1 {
		contentHeight = 1
	}

	content := m.viewContent(contentHeight)

	sections := []string{header, content, status}
	if shortcuts != "" {
		sections = append(sections, shortcuts)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewContent(height int) string {
	switch {
	case m.lightbox.Visible():
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.viewLightbox())
	case m.banner.Visible():
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.banner.View())
	case m.loading:
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.spin.View())
	}

	var body string
	switch m.state {
	case StateCategories:
		body = m.viewCategories()
	case StateTopics:
		body = m.viewTopics()
	case StateReader:
		body = m.reader.View()
	case StateCompose:
		body = m.viewCompose()
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(height).
		MaxHeight(height).
		Render(body)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) viewHeader() string {
	board := "parley"
	if m.haveSite && m.site.Name != "" {
		board = components.Sanitize(m.site.Name)
	}

	brand := m.theme.HeaderBrand.Render(util.TruncateWidth(board, 24))

	avail := m.width - 2 - lipgloss.Width(brand) - 2
	if avail < 8 {
		avail = 8
	}
	title := m.theme.HeaderTitle.Render(util.TruncateWidth(m.headerLocation(), avail))

	return m.theme.Header.Width(m.width).Render(brand + "  " + title)
}

func (m Model) headerLocation() string {
	switch m.state {
	case StateTopics:
		loc := components.Sanitize(m.category.Name)
		if m.page > 1 {
			loc += " (page " + strconv.Itoa(m.page) + ")"
		}
		return loc
	case StateReader:
		return components.Sanitize(m.topic.Title)
	case StateCompose:
		if m.composeKind == composeTopic {
			return "new topic in " + components.Sanitize(m.category.Name)
		}
		return "reply to " + components.Sanitize(m.topic.Title)
	default:
		return "categories"
	}
}

// =============================================================================
// CATEGORY LIST
// =============================================================================

func (m Model) viewCategories() string {
	if len(m.categories) == 0 {
		return m.theme.ListMeta.Render("  no categories yet")
	}

	var b strings.Builder
	for i, cat := range m.categories {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.viewCategoryItem(cat, i == m.catIndex))
	}
	return b.String()
}

func (m Model) viewCategoryItem(cat api.Category, selected bool) string {
	name := components.Sanitize(cat.Name)
	meta := strconv.Itoa(cat.TopicCount) + " topics"

	avail := m.width - 4
	nameW := avail - len(meta) - 1
	if nameW < 8 {
		nameW = 8
	}

	if selected {
		line := util.PadWidth(name, nameW) + " " + meta
		return m.theme.ListItemSelected.Render(util.TruncateWidth(line, avail))
	}

	line := m.theme.ListTitle.Render(util.PadWidth(name, nameW)) +
		" " + m.theme.ListMeta.Render(meta)
	out := m.theme.ListItem.Render(line)

	if !m.conf.UI.CompactLists && cat.Description != "" {
		desc := util.TruncateWidth(components.Sanitize(cat.Description), avail-2)
		out += "\n" + m.theme.ListItem.Render("  "+m.theme.ListMeta.Render(desc))
	}
	return out
}

// =============================================================================
// TOPIC LIST
// =============================================================================

func (m Model) viewTopics() string {
	if len(m.topics) == 0 {
		return m.theme.ListMeta.Render("  no topics yet; n starts one")
	}

	var b strings.Builder
	for i, t := range m.topics {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.viewTopicItem(t, i == m.topicIndex))
	}

	if m.hasMore {
		b.WriteString("\n")
		b.WriteString(m.theme.ListMeta.Render("  ] more topics"))
	}
	return b.String()
}

// viewTopicItem renders one topic row. The two-rune marker column shows ^
// for pinned topics and * for unread ones.
func (m Model) viewTopicItem(t api.Topic, selected bool) string {
	title := components.Sanitize(t.Title)
	meta := "by " + components.Sanitize(t.Author.DisplayName) +
		", " + strconv.Itoa(t.ReplyCount) + " replies"
	if !t.CreatedAt.IsZero() {
		meta += ", " + relTime(t.CreatedAt)
	}

	pin, star := " ", " "
	if t.Pinned {
		pin = "^"
	}
	if m.isUnread(t) {
		star = "*"
	}

	avail := m.width - 4 - 3 // marker column
	titleW := avail * 6 / 10
	if titleW < 12 {
		titleW = 12
	}
	metaW := avail - titleW - 1
	if metaW < 0 {
		metaW = 0
	}

	if selected {
		line := pin + star + " " + util.PadWidth(title, titleW) + " " + util.TruncateWidth(meta, metaW)
		return m.theme.ListItemSelected.Render(util.TruncateWidth(line, m.width-4))
	}

	marker := m.theme.PinnedMarker.Render(pin) + m.theme.UnreadMarker.Render(star)
	line := marker + " " + m.theme.ListTitle.Render(util.PadWidth(title, titleW)) +
		" " + m.theme.ListMeta.Render(util.TruncateWidth(meta, metaW))
	return m.theme.ListItem.Render(line)
}

// isUnread reports whether the topic has replies the member has not seen.
func (m Model) isUnread(t api.Topic) bool {
	if m.marks == nil {
		return false
	}
	mark, ok := m.unread[t.ID]
	if !ok {
		return true
	}
	return mark.LastReply < t.ReplyCount
}

// =============================================================================
// READER
// =============================================================================

// buildReader renders the open topic into the viewport, recording the line
// each reply starts on (for scroll restore) and collecting image blocks for
// the lightbox, in reading order.
func (m *Model) buildReader() {
	var b strings.Builder
	var images []imageItem
	offsets := make([]int, 0, len(m.topic.Replies))

	newlines := 0
	write := func(s string) {
		b.WriteString(s)
		newlines += strings.Count(s, "\n")
	}

	write(m.theme.ListTitle.Bold(true).Render(components.Sanitize(m.topic.Title)))
	write("\n")
	write(m.authorLine(m.topic.Author, m.topic.CreatedAt))
	write("\n\n")

	blocks := markup.Render(m.topic.Body)
	write(m.renderer.Render(blocks))
	images = appendImages(images, blocks)

	for i, reply := range m.topic.Replies {
		write("\n\n")
		offsets = append(offsets, newlines)
		write(m.theme.ReplyDivider.Render(strings.Repeat("-", m.dividerWidth())))
		write("\n")
		write(m.authorLine(reply.Author, reply.CreatedAt))
		write(m.theme.ReplyMeta.Render("  #" + strconv.Itoa(i+1)))
		write("\n")

		rblocks := markup.Render(reply.Body)
		write(m.renderer.Render(rblocks))
		images = appendImages(images, rblocks)
	}

	m.replyOffsets = offsets
	m.images = images
	if m.imageIndex >= len(images) {
		m.imageIndex = 0
	}
	if len(images) == 0 {
		m.lightbox.Dismiss()
	}

	m.reader.Width = m.width
	m.reader.Height = m.contentHeight()
	m.reader.SetContent(b.String())
}

func (m Model) authorLine(who api.Member, at time.Time) string {
	line := m.theme.ReplyAuthor.Render(components.Sanitize(who.DisplayName))
	if who.Username != "" {
		line += " " + m.theme.MentionText.Render("@"+components.Sanitize(who.Username))
	}
	if who.Rank != "" {
		line += " " + m.theme.ReplyRank.Render("["+components.Sanitize(who.Rank)+"]")
	}
	if !at.IsZero() {
		line += " " + m.theme.ReplyMeta.Render(relTime(at))
	}
	return line
}

func (m Model) dividerWidth() int {
	w := m.width - 8
	if w < 8 {
		w = 8
	}
	if w > 72 {
		w = 72
	}
	return w
}

func appendImages(images []imageItem, blocks []markup.Block) []imageItem {
	for _, blk := range blocks {
		if blk.Kind == markup.BlockImage {
			images = append(images, imageItem{Alt: blk.Alt, Full: blk.Full})
		}
	}
	return images
}

// =============================================================================
// COMPOSE
// =============================================================================

func (m Model) viewCompose() string {
	var b strings.Builder

	if m.composeKind == composeTopic {
		label := m.theme.ReplyMeta.Render("Title ")
		if m.titleFocused {
			label = m.theme.InputPrompt.Render("Title ")
		}
		b.WriteString(label + m.titleInput.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.composer.View())

	if m.posting {
		b.WriteString("\n " + m.spin.View())
	}
	return b.String()
}

// =============================================================================
// LIGHTBOX OVERLAY
// =============================================================================

func (m Model) viewLightbox() string {
	alt := components.Sanitize(m.lightbox.Alt())
	if alt == "" {
		alt = "image"
	}
	pos := fmt.Sprintf("%d of %d", m.imageIndex+1, len(m.images))

	w := m.width - 12
	if w > 76 {
		w = 76
	}
	if w < 24 {
		w = 24
	}
	inner := w - 6 // box padding and borders

	var b strings.Builder
	b.WriteString(m.theme.LightboxTitle.Render(util.TruncateWidth(alt, inner-10)))
	b.WriteString("  ")
	b.WriteString(m.theme.ReplyMeta.Render(pos))
	b.WriteString("\n\n")
	b.WriteString(m.theme.LightboxBody.Render(util.TruncateWidth(components.Sanitize(m.lightbox.Ref()), inner)))
	b.WriteString("\n\n")
	b.WriteString(m.theme.LightboxHint.Render("o next image  esc close"))

	return m.theme.LightboxBox.Width(w).Render(b.String())
}

// =============================================================================
// HELPERS
// =============================================================================

// relTime formats a timestamp relative to now, the way board readers
// expect ("3h ago"), falling back to a date for anything older than a
// month.
func relTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	case d < 30*24*time.Hour:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	}
	return t.Format("Jan 2, 2006")
}
