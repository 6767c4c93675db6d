// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// msgs.go - message types and fetch commands for the board.
//
// Every fetch runs in a tea.Cmd goroutine with a bounded context and
// re-enters the event loop as one of these messages. Messages carry enough
// of their originating request (category, page, topic id) for the update
// loop to drop results the member has already navigated away from.

package board

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/history"
)

// historyTimeout bounds local read-history queries. The store is a local
// SQLite file; anything slower than this is effectively broken.
const historyTimeout = 2 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// SiteMsg carries the board's name and MOTD.
type SiteMsg struct {
	Site api.Site
	Err  error
}

// CategoriesMsg carries the category list.
type CategoriesMsg struct {
	Categories []api.Category
	Err        error
}

// TopicsMsg carries one page of a category's topics.
type TopicsMsg struct {
	CategoryID int64
	Page       int
	Topics     []api.Topic
	HasMore    bool
	Err        error
}

// TopicMsg carries one topic with its replies.
type TopicMsg struct {
	TopicID int64
	Topic   api.Topic
	Err     error
}

// MarksMsg carries read-history marks for the topics on screen.
type MarksMsg struct {
	Marks map[int64]history.Mark
	Err   error
}

// ReadRecordedMsg reports the outcome of persisting a read position.
type ReadRecordedMsg struct {
	TopicID int64
	Err     error
}

// PostedMsg reports the outcome of creating a topic or reply.
type PostedMsg struct {
	Kind    composeKind
	TopicID int64
	Err     error
}

// ConfigReloadMsg delivers a re-parsed configuration from the file watcher.
type ConfigReloadMsg struct {
	Config *config.Config
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) fetchSite() tea.Cmd {
	client, timeout := m.client, m.conf.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		site, err := client.Site(ctx)
		if err != nil {
			return SiteMsg{Err: err}
		}
		return SiteMsg{Site: *site}
	}
}

func (m Model) fetchCategories() tea.Cmd {
	client, timeout := m.client, m.conf.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		categories, err := client.Categories(ctx)
		return CategoriesMsg{Categories: categories, Err: err}
	}
}

func (m Model) fetchTopics(categoryID int64, page int) tea.Cmd {
	client, timeout := m.client, m.conf.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		result, err := client.Topics(ctx, categoryID, page)
		if err != nil {
			return TopicsMsg{CategoryID: categoryID, Page: page, Err: err}
		}
		return TopicsMsg{
			CategoryID: categoryID,
			Page:       result.Page,
			Topics:     result.Topics,
			HasMore:    result.HasMore,
		}
	}
}

func (m Model) fetchTopic(id int64) tea.Cmd {
	client, timeout := m.client, m.conf.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		topic, err := client.Topic(ctx, id)
		if err != nil {
			return TopicMsg{TopicID: id, Err: err}
		}
		return TopicMsg{TopicID: id, Topic: *topic}
	}
}

// fetchMarks loads read-history marks for the listed topics. With no
// history store every topic simply renders without markers.
func (m Model) fetchMarks(topicIDs []int64) tea.Cmd {
	if m.marks == nil || len(topicIDs) == 0 {
		return nil
	}
	store := m.marks
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		marks, err := store.GetAll(ctx, topicIDs)
		return MarksMsg{Marks: marks, Err: err}
	}
}

// recordRead persists that the member has read the topic up to lastReply.
func (m Model) recordRead(topicID int64, lastReply int) tea.Cmd {
	if m.marks == nil {
		return nil
	}
	store := m.marks
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		err := store.MarkRead(ctx, topicID, lastReply)
		return ReadRecordedMsg{TopicID: topicID, Err: err}
	}
}

func (m Model) createTopic(categoryID int64, title, body string) tea.Cmd {
	client, timeout := m.client, m.conf.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		topic, err := client.CreateTopic(ctx, categoryID, title, body)
		if err != nil {
			return PostedMsg{Kind: composeTopic, Err: err}
		}
		return PostedMsg{Kind: composeTopic, TopicID: topic.ID}
	}
}

func (m Model) createReply(topicID int64, body string) tea.Cmd {
	client, timeout := m.client, m.conf.ServerTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := client.CreateReply(ctx, topicID, body)
		return PostedMsg{Kind: composeReply, TopicID: topicID, Err: err}
	}
}
