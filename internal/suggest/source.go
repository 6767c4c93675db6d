// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package suggest

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/parleyhq/parley/internal/api"
)

// Searcher is the slice of the board client the source needs. Tests
// substitute a stub.
type Searcher interface {
	SearchMembers(ctx context.Context, query string, limit int) ([]api.Candidate, error)
}

// ResultMsg carries one search outcome back into the event loop. Query is
// the raw query the fetch was issued for, exactly as the token scanner
// produced it; receivers compare it against the live token before
// applying Candidates. Seq increases monotonically per fetch and exists
// for logging.
type ResultMsg struct {
	Query      string
	Seq        uint64
	Candidates []api.Candidate
	Err        error
}

// SourceConfig tunes the fetch boundary.
type SourceConfig struct {
	// Timeout bounds one fetch, including any time spent waiting on the
	// rate limiter (default: 8s).
	Timeout time.Duration

	// Limit is the maximum number of candidates requested (default: 8).
	Limit int

	// MinInterval is the pacing between fetches once the burst is spent
	// (default: 100ms).
	MinInterval time.Duration

	// Burst is how many fetches may go out back-to-back (default: 3).
	Burst int
}

// DefaultSourceConfig returns the default fetch configuration.
func DefaultSourceConfig() *SourceConfig {
	return &SourceConfig{
		Timeout:     8 * time.Second,
		Limit:       8,
		MinInterval: 100 * time.Millisecond,
		Burst:       3,
	}
}

// Source issues member searches for the suggestion list. Fetches are
// paced by a rate limiter as a courtesy to the board; correctness against
// out-of-order responses comes from the query tag on every ResultMsg, not
// from pacing.
type Source struct {
	searcher Searcher
	limiter  *rate.Limiter
	timeout  time.Duration
	limit    int
	seq      atomic.Uint64
}

// NewSource creates a source over the given searcher.
func NewSource(searcher Searcher, cfg *SourceConfig) *Source {
	if cfg == nil {
		cfg = DefaultSourceConfig()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.Limit == 0 {
		cfg.Limit = 8
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 100 * time.Millisecond
	}
	if cfg.Burst == 0 {
		cfg.Burst = 3
	}
	return &Source{
		searcher: searcher,
		limiter:  rate.NewLimiter(rate.Every(cfg.MinInterval), cfg.Burst),
		timeout:  cfg.Timeout,
		limit:    cfg.Limit,
	}
}

// Fetch returns a command that runs the search off the event loop and
// delivers a ResultMsg. The query is NFC-normalized before it goes to the
// server so composed and decomposed input search the same; the message
// still carries the raw query for staleness comparison.
func (s *Source) Fetch(query string) tea.Cmd {
	seq := s.seq.Add(1)
	normalized := norm.NFC.String(query)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.limiter.Wait(ctx); err != nil {
			return ResultMsg{Query: query, Seq: seq, Err: err}
		}
		candidates, err := s.searcher.SearchMembers(ctx, normalized, s.limit)
		return ResultMsg{Query: query, Seq: seq, Candidates: candidates, Err: err}
	}
}
