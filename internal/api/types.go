// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "time"

// Member is a board account.
type Member struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Rank        string `json:"rank,omitempty"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
}

// Candidate is a suggestion target returned by member search. Candidates
// are ephemeral: the composer re-fetches them on every query change and
// never caches them across mention tokens.
type Candidate struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
}

// Session is the result of a successful login.
type Session struct {
	Token  string `json:"token"`
	Member Member `json:"member"`
}

// UploadedImage is the pair of references returned by the upload endpoint.
// The two refs are independent paths: a thumbnail for inline display and
// the full-size original for the lightbox.
type UploadedImage struct {
	ThumbRef string `json:"thumb_ref"`
	FullRef  string `json:"full_ref"`
}

// Category is one board section.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TopicCount  int    `json:"topic_count"`
}

// Topic is a discussion thread. Replies is populated only by the topic
// detail endpoint, never by list endpoints.
type Topic struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Author     Member    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	ReplyCount int       `json:"reply_count"`
	Pinned     bool      `json:"pinned,omitempty"`
	Replies    []Reply   `json:"replies,omitempty"`
}

// Reply is one post inside a topic.
type Reply struct {
	ID        int64     `json:"id"`
	TopicID   int64     `json:"topic_id"`
	Author    Member    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TopicPage is one page of a category's topic list.
type TopicPage struct {
	Topics  []Topic `json:"topics"`
	Page    int     `json:"page"`
	HasMore bool    `json:"has_more"`
}

// Site describes the board itself. Motd is server-authored Markdown shown
// by the status command; it is not parley post markup.
type Site struct {
	Name string `json:"name"`
	Motd string `json:"motd,omitempty"`
}

// apiError is the error envelope the board returns on failures.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
