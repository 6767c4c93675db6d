// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// update.go - message dispatch and keyboard handling for the board.

package board

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/history"
	"github.com/parleyhq/parley/internal/logging"
	"github.com/parleyhq/parley/internal/suggest"
	"github.com/parleyhq/parley/internal/ui/components"
	"github.com/parleyhq/parley/internal/ui/composer"
	"github.com/parleyhq/parley/internal/ui/styles"
	"github.com/parleyhq/parley/internal/upload"
	"github.com/parleyhq/parley/internal/util"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SiteMsg:
		return m.applySite(msg)

	case CategoriesMsg:
		return m.applyCategories(msg)

	case TopicsMsg:
		return m.applyTopics(msg)

	case TopicMsg:
		return m.applyTopic(msg)

	case MarksMsg:
		if msg.Err != nil {
			logging.Warn("loading read marks failed", "error", msg.Err)
			return m, nil
		}
		for id, mark := range msg.Marks {
			m.unread[id] = mark
		}
		return m, nil

	case ReadRecordedMsg:
		if msg.Err != nil {
			logging.Warn("recording read position failed",
				"topic", msg.TopicID, "error", msg.Err)
		}
		return m, nil

	case PostedMsg:
		return m.applyPosted(msg)

	case ConfigReloadMsg:
		return m.applyConfigReload(msg)

	case composer.NoticeMsg:
		if msg.Err != nil {
			m.banner.ShowError(msg.Err)
		} else if msg.Text != "" {
			m.status.SetNote(msg.Text)
		}
		return m, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		m.composer, cmd = m.composer.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case suggest.ResultMsg, upload.ResultMsg:
		// The composer checks these against its live query/attempt no
		// matter which screen is up; uploads can outlive the compose
		// screen.
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	// Remaining component messages (cursor blinks and the like).
	if m.state == StateCompose {
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		cmds = append(cmds, cmd)
		m.titleInput, cmd = m.titleInput.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// =============================================================================
// KEYBOARD DISPATCH
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// A visible error banner eats the next esc.
	if m.banner.Visible() && msg.String() == "esc" {
		m.banner.Dismiss()
		return m, nil
	}

	switch m.state {
	case StateCategories:
		return m.keysCategories(msg)
	case StateTopics:
		return m.keysTopics(msg)
	case StateReader:
		return m.keysReader(msg)
	case StateCompose:
		return m.keysCompose(msg)
	}
	return m, nil
}

func (m Model) keysCategories(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.catIndex > 0 {
			m.catIndex--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.catIndex < len(m.categories)-1 {
			m.catIndex++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.categories) == 0 {
			return m, nil
		}
		return m.openCategory(m.categories[m.catIndex])

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.spin.SetMessage("Fetching categories")
		return m, tea.Batch(m.fetchCategories(), m.spin.Start())
	}
	return m, nil
}

func (m Model) keysTopics(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.enterState(StateCategories)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.topicIndex > 0 {
			m.topicIndex--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.topicIndex < len(m.topics)-1 {
			m.topicIndex++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(m.topics) == 0 {
			return m, nil
		}
		return m.openTopic(m.topics[m.topicIndex].ID)

	case key.Matches(msg, m.keys.NewTopic):
		return m.startCompose(composeTopic)

	case key.Matches(msg, m.keys.NextPage):
		if !m.hasMore {
			return m, nil
		}
		return m.loadTopicsPage(m.page + 1)

	case key.Matches(msg, m.keys.PrevPage):
		if m.page <= 1 {
			return m, nil
		}
		return m.loadTopicsPage(m.page - 1)

	case key.Matches(msg, m.keys.Refresh):
		return m.loadTopicsPage(m.page)
	}
	return m, nil
}

func (m Model) keysReader(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The lightbox overlay is modal: it only answers cycle and dismiss.
	if m.lightbox.Visible() {
		switch {
		case key.Matches(msg, m.keys.Image):
			m.cycleImage()
		case key.Matches(msg, m.keys.Back):
			m.lightbox.Dismiss()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.enterState(StateTopics)
		return m, nil

	case key.Matches(msg, m.keys.Reply):
		return m.startCompose(composeReply)

	case key.Matches(msg, m.keys.Image):
		m.cycleImage()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.reader.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.reader.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.reader, cmd = m.reader.Update(msg)
	return m, cmd
}

func (m Model) keysCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.posting {
		return m, nil
	}

	// While the suggestion popup or the attach prompt is up, the composer
	// owns the contested keys (esc, tab, enter, arrows).
	composerBusy := m.composer.SuggestionsVisible() || m.composer.Attaching()

	switch {
	case key.Matches(msg, m.keys.Post):
		return m.submitCompose()

	case msg.String() == "esc" && !composerBusy:
		return m.cancelCompose()

	case key.Matches(msg, m.keys.Field) && m.composeKind == composeTopic && !composerBusy:
		var cmd tea.Cmd
		if m.titleFocused {
			cmd = m.focusBody()
		} else {
			cmd = m.focusTitle()
		}
		return m, cmd
	}

	if m.titleFocused {
		if msg.String() == "enter" || msg.String() == "down" {
			return m, m.focusBody()
		}
		var cmd tea.Cmd
		m.titleInput, cmd = m.titleInput.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

// =============================================================================
// NAVIGATION
// =============================================================================

// enterState switches screens and refreshes the status bar for it.
func (m *Model) enterState(s State) {
	m.state = s
	m.status.ClearMessages()
	m.status.SetShortcuts(m.keys.shortcutsFor(s))

	switch s {
	case StateTopics:
		m.status.SetLocation(components.Sanitize(m.category.Name))
	case StateReader:
		m.status.SetLocation(util.TruncateWidth(components.Sanitize(m.topic.Title), 40))
	case StateCompose:
		if m.composeKind == composeTopic {
			m.status.SetLocation("new topic")
		} else {
			m.status.SetLocation("reply")
		}
	default:
		m.status.SetLocation("categories")
	}
}

func (m Model) openCategory(cat api.Category) (tea.Model, tea.Cmd) {
	m.category = cat
	m.topics = nil
	m.topicIndex = 0
	m.page = 1
	m.hasMore = false
	m.enterState(StateTopics)
	m.loading = true
	m.spin.SetMessage("Fetching topics")
	return m, tea.Batch(m.fetchTopics(cat.ID, 1), m.spin.Start())
}

func (m Model) openTopic(id int64) (tea.Model, tea.Cmd) {
	m.enterState(StateReader)
	m.topicID = id
	m.topic = api.Topic{}
	m.images = nil
	m.imageIndex = 0
	m.lightbox.Dismiss()
	m.loading = true
	m.spin.SetMessage("Fetching topic")
	return m, tea.Batch(m.fetchTopic(id), m.spin.Start())
}

func (m Model) loadTopicsPage(page int) (tea.Model, tea.Cmd) {
	m.loading = true
	m.spin.SetMessage("Fetching topics")
	return m, tea.Batch(m.fetchTopics(m.category.ID, page), m.spin.Start())
}

// =============================================================================
// COMPOSE FLOW
// =============================================================================

func (m Model) startCompose(kind composeKind) (tea.Model, tea.Cmd) {
	m.composeKind = kind
	m.posting = false
	m.composer.Reset()
	m.banner.Dismiss()
	m.enterState(StateCompose)

	var cmd tea.Cmd
	if kind == composeTopic {
		m.titleInput.SetValue("")
		cmd = m.focusTitle()
	} else {
		cmd = m.focusBody()
	}
	return m, cmd
}

func (m *Model) focusTitle() tea.Cmd {
	m.titleFocused = true
	m.composer.Blur()
	m.titleInput.Focus()
	return textinput.Blink
}

func (m *Model) focusBody() tea.Cmd {
	m.titleFocused = false
	m.titleInput.Blur()
	m.composer.Focus()
	return nil
}

func (m Model) cancelCompose() (tea.Model, tea.Cmd) {
	m.composer.Blur()
	m.titleInput.Blur()
	if m.composeKind == composeReply {
		m.enterState(StateReader)
	} else {
		m.enterState(StateTopics)
	}
	return m, nil
}

func (m Model) submitCompose() (tea.Model, tea.Cmd) {
	if m.composer.Uploading() {
		m.status.SetNote("wait for the image upload to finish")
		return m, nil
	}

	body := strings.TrimSpace(m.composer.Value())

	if m.composeKind == composeTopic {
		title := strings.TrimSpace(m.titleInput.Value())
		if title == "" {
			m.status.SetError("a topic needs a title")
			return m, nil
		}
		if body == "" {
			m.status.SetError("a topic needs a body")
			return m, nil
		}
		m.posting = true
		m.spin.SetMessage("Posting topic")
		return m, tea.Batch(m.createTopic(m.category.ID, title, body), m.spin.Start())
	}

	if body == "" {
		m.status.SetError("nothing to post")
		return m, nil
	}
	m.posting = true
	m.spin.SetMessage("Posting reply")
	return m, tea.Batch(m.createReply(m.topicID, body), m.spin.Start())
}

// =============================================================================
// MESSAGE APPLICATION
// =============================================================================

func (m Model) applySite(msg SiteMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// The banner line is decoration; browsing works without it.
		logging.Warn("fetching site info failed", "error", msg.Err)
		return m, nil
	}
	m.site = msg.Site
	m.haveSite = true
	if msg.Site.Name != "" {
		m.status.SetBoard(msg.Site.Name)
	}
	return m, nil
}

func (m Model) applyCategories(msg CategoriesMsg) (tea.Model, tea.Cmd) {
	if m.state == StateCategories {
		m.loading = false
		m.spin.Stop()
	}
	if msg.Err != nil {
		logging.Error("fetching categories failed", "error", msg.Err)
		if m.state == StateCategories {
			m.banner.ShowError(msg.Err)
		}
		return m, nil
	}
	m.categories = msg.Categories
	if m.catIndex >= len(m.categories) {
		m.catIndex = 0
	}
	return m, nil
}

func (m Model) applyTopics(msg TopicsMsg) (tea.Model, tea.Cmd) {
	if m.state != StateTopics || msg.CategoryID != m.category.ID {
		logging.Debug("discarding stale topics result",
			"category", msg.CategoryID, "page", msg.Page)
		return m, nil
	}
	m.loading = false
	m.spin.Stop()
	if msg.Err != nil {
		logging.Error("fetching topics failed",
			"category", msg.CategoryID, "error", msg.Err)
		m.banner.ShowError(msg.Err)
		return m, nil
	}

	m.topics = msg.Topics
	m.page = msg.Page
	m.hasMore = msg.HasMore
	if m.topicIndex >= len(m.topics) {
		m.topicIndex = 0
	}

	ids := make([]int64, len(msg.Topics))
	for i, t := range msg.Topics {
		ids[i] = t.ID
	}
	return m, m.fetchMarks(ids)
}

func (m Model) applyTopic(msg TopicMsg) (tea.Model, tea.Cmd) {
	if m.state != StateReader || msg.TopicID != m.topicID {
		logging.Debug("discarding stale topic result", "topic", msg.TopicID)
		return m, nil
	}
	m.loading = false
	m.spin.Stop()
	if msg.Err != nil {
		logging.Error("fetching topic failed", "topic", msg.TopicID, "error", msg.Err)
		m.banner.ShowError(msg.Err)
		return m, nil
	}

	prior, reopened := m.unread[msg.Topic.ID]

	m.topic = msg.Topic
	m.status.SetLocation(util.TruncateWidth(components.Sanitize(msg.Topic.Title), 40))
	m.buildReader()
	m.reader.GotoTop()

	// Reopening a partly-read topic lands on the first unread reply
	// instead of the top.
	if reopened && prior.LastReply > 0 && prior.LastReply < len(m.replyOffsets) {
		m.reader.SetYOffset(m.replyOffsets[prior.LastReply])
	}

	lastReply := len(msg.Topic.Replies)
	if msg.Topic.ReplyCount > lastReply {
		lastReply = msg.Topic.ReplyCount
	}
	m.unread[msg.Topic.ID] = history.Mark{
		TopicID:   msg.Topic.ID,
		LastReply: lastReply,
		ReadAt:    time.Now(),
	}
	return m, m.recordRead(msg.Topic.ID, lastReply)
}

func (m Model) applyPosted(msg PostedMsg) (tea.Model, tea.Cmd) {
	if m.state != StateCompose || !m.posting {
		logging.Debug("discarding stale post result", "topic", msg.TopicID)
		return m, nil
	}
	m.posting = false
	m.spin.Stop()
	if msg.Err != nil {
		// Keep the draft; the member decides whether to retry.
		logging.Error("posting failed", "error", msg.Err)
		m.banner.ShowError(msg.Err)
		return m, nil
	}

	m.composer.Reset()
	m.titleInput.Blur()

	if msg.Kind == composeTopic {
		m.enterState(StateTopics)
		m.status.SetNote("topic posted")
		m.loading = true
		m.spin.SetMessage("Fetching topics")
		return m, tea.Batch(m.fetchTopics(m.category.ID, 1), m.spin.Start())
	}

	m.enterState(StateReader)
	m.status.SetNote("reply posted")
	m.topicID = msg.TopicID
	m.loading = true
	m.spin.SetMessage("Fetching topic")
	return m, tea.Batch(m.fetchTopic(msg.TopicID), m.spin.Start())
}

func (m Model) applyConfigReload(msg ConfigReloadMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	m.conf = msg.Config

	// Swap the theme in place so every component holding the pointer
	// picks up the new accent.
	*m.theme = *styles.NewTheme(msg.Config.UI.Accent)
	m.theme.SetSize(m.width, m.height)
	if m.state == StateReader {
		m.buildReader()
	}

	logging.Info("configuration reloaded")
	m.status.SetNote("configuration reloaded")
	return m, nil
}

// =============================================================================
// LIGHTBOX
// =============================================================================

// cycleImage opens the lightbox on the topic's first image, or advances to
// the next one when it is already open.
func (m *Model) cycleImage() {
	if len(m.images) == 0 {
		m.status.SetNote("no images in this topic")
		return
	}
	if m.lightbox.Visible() {
		m.imageIndex = (m.imageIndex + 1) % len(m.images)
	} else {
		m.imageIndex = 0
	}
	item := m.images[m.imageIndex]
	m.lightbox.Open(item.Alt, item.Full)
}
