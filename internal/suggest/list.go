// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import "github.com/parleyhq/parley/internal/api"

// State identifies where the suggestion list is in its lifecycle.
type State int

const (
	// StateClosed means no list is showing and no fetch is relevant.
	StateClosed State = iota
	// StateLoading means a fetch for the current query is in flight.
	StateLoading
	// StateOpen means candidates are showing with one highlighted.
	StateOpen
	// StateEmpty means the fetch finished with nothing to offer (either
	// no matches or a failed fetch, which is treated identically).
	StateEmpty
)

// String returns a short name for logging.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateOpen:
		return "open"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// List owns the suggestion list for the one live mention token. All
// methods are total: transitions that do not apply in the current state
// are no-ops, never panics. The zero value is a closed list.
type List struct {
	state      State
	query      string
	candidates []api.Candidate
	selected   int
}

// NewList returns a closed list.
func NewList() *List {
	return &List{}
}

// State returns the current lifecycle state.
func (l *List) State() State { return l.state }

// Query returns the query the current state belongs to. Empty when
// closed.
func (l *List) Query() string { return l.query }

// Candidates returns the open list's candidates, nil otherwise.
func (l *List) Candidates() []api.Candidate { return l.candidates }

// SelectedIndex returns the highlighted index while open.
func (l *List) SelectedIndex() int { return l.selected }

// Selected returns the highlighted candidate while the list is open.
func (l *List) Selected() (api.Candidate, bool) {
	if l.state != StateOpen || len(l.candidates) == 0 {
		return api.Candidate{}, false
	}
	return l.candidates[l.selected], true
}

// Visible reports whether the list occupies screen space at all.
func (l *List) Visible() bool { return l.state != StateClosed }

// BeginLoading moves the list to Loading for query, clearing whatever
// candidates the previous query produced. An empty query closes the list
// instead: a bare @ never fetches.
func (l *List) BeginLoading(query string) {
	if query == "" {
		l.Dismiss()
		return
	}
	l.state = StateLoading
	l.query = query
	l.candidates = nil
	l.selected = 0
}

// Resolve applies fetched candidates if they are still relevant: the list
// must not be closed and the originating query must equal the live one.
// It reports whether the result was applied; a false return is a stale
// response the caller may want to log and must otherwise ignore.
func (l *List) Resolve(query string, candidates []api.Candidate) bool {
	if l.state == StateClosed || query != l.query {
		return false
	}
	if len(candidates) == 0 {
		l.state = StateEmpty
		l.candidates = nil
		l.selected = 0
		return true
	}
	l.state = StateOpen
	l.candidates = candidates
	l.selected = 0
	return true
}

// Fail degrades the list to Empty under the same staleness rule as
// Resolve. Callers log the underlying error; the list does not carry it.
func (l *List) Fail(query string) bool {
	if l.state == StateClosed || query != l.query {
		return false
	}
	l.state = StateEmpty
	l.candidates = nil
	l.selected = 0
	return true
}

// MoveDown advances the highlight, wrapping past the last candidate to
// the first.
func (l *List) MoveDown() {
	if l.state != StateOpen || len(l.candidates) == 0 {
		return
	}
	l.selected = (l.selected + 1) % len(l.candidates)
}

// MoveUp retreats the highlight, wrapping past the first candidate to the
// last.
func (l *List) MoveUp() {
	if l.state != StateOpen || len(l.candidates) == 0 {
		return
	}
	l.selected = (l.selected - 1 + len(l.candidates)) % len(l.candidates)
}

// Dismiss closes the list from any state. Closing is sticky: responses
// that arrive afterwards are stale by definition and Resolve rejects
// them until BeginLoading opens a new lifecycle.
func (l *List) Dismiss() {
	l.state = StateClosed
	l.query = ""
	l.candidates = nil
	l.selected = 0
}
