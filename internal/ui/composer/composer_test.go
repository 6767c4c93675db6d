// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/suggest"
	"github.com/parleyhq/parley/internal/upload"
	"github.com/parleyhq/parley/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

type stubSearcher struct{}

func (stubSearcher) SearchMembers(_ context.Context, _ string, _ int) ([]api.Candidate, error) {
	return nil, nil
}

type stubUploader struct{}

func (stubUploader) UploadImage(_ context.Context, _ string, _ io.Reader) (*api.UploadedImage, error) {
	return &api.UploadedImage{ThumbRef: "t.png", FullRef: "f.png"}, nil
}

func testComposer(t *testing.T, minQueryRunes int) Model {
	t.Helper()
	m := New(Config{
		Theme: styles.NewTheme(""),
		Source: suggest.NewSource(stubSearcher{}, &suggest.SourceConfig{
			Timeout:     time.Second,
			Limit:       8,
			MinInterval: time.Nanosecond,
			Burst:       100,
		}),
		Pipeline:      upload.NewPipeline(stubUploader{}, nil),
		MinQueryRunes: minQueryRunes,
		Placeholder:   "say something",
	})
	m.Focus()
	return m
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeString(m Model, s string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, r := range s {
		if r == ' ' {
			m, cmd = m.Update(key(tea.KeySpace))
			continue
		}
		m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m, cmd
}

func candidates(names ...string) []api.Candidate {
	out := make([]api.Candidate, len(names))
	for i, name := range names {
		out[i] = api.Candidate{ID: int64(i + 1), DisplayName: name}
	}
	return out
}

// =============================================================================
// EDITING
// =============================================================================

func TestEditingBasics(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "hello")
	if m.Value() != "hello" || m.Cursor() != 5 {
		t.Fatalf("after typing: buffer %q cursor %d", m.Value(), m.Cursor())
	}

	m, _ = m.Update(key(tea.KeyLeft))
	m, _ = m.Update(key(tea.KeyBackspace))
	if m.Value() != "helo" || m.Cursor() != 3 {
		t.Fatalf("after backspace: buffer %q cursor %d", m.Value(), m.Cursor())
	}

	m, _ = m.Update(key(tea.KeyDelete))
	if m.Value() != "hel" {
		t.Fatalf("after delete: buffer %q", m.Value())
	}

	m, _ = m.Update(key(tea.KeyEnter))
	m, _ = typeString(m, "second")
	if m.Value() != "hel\nsecond" {
		t.Fatalf("after newline: buffer %q", m.Value())
	}

	m, _ = m.Update(key(tea.KeyHome))
	if m.Cursor() != 4 {
		t.Errorf("home should go to start of line, cursor %d", m.Cursor())
	}
	m, _ = m.Update(key(tea.KeyEnd))
	if m.Cursor() != 10 {
		t.Errorf("end should go to end of line, cursor %d", m.Cursor())
	}

	m, _ = m.Update(key(tea.KeyUp))
	if m.Cursor() != 3 {
		t.Errorf("up should keep the column, clamped to the line, cursor %d", m.Cursor())
	}
	m, _ = m.Update(key(tea.KeyDown))
	if m.Cursor() != 7 {
		t.Errorf("down should keep the column, cursor %d", m.Cursor())
	}
}

func TestUnfocusedIgnoresKeys(t *testing.T) {
	m := testComposer(t, 1)
	m.Blur()

	m, cmd := typeString(m, "ignored")
	if m.Value() != "" || cmd != nil {
		t.Errorf("blurred composer accepted input: %q", m.Value())
	}
}

// =============================================================================
// MENTIONS
// =============================================================================

func TestMentionFlow(t *testing.T) {
	m := testComposer(t, 1)

	m, cmd := typeString(m, "hi @jo")
	if cmd == nil {
		t.Fatal("typing a mention query should start a fetch")
	}
	if m.list.State() != suggest.StateLoading {
		t.Fatalf("list state = %v, want loading", m.list.State())
	}

	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Candidates: candidates("john", "jordan")})
	if m.list.State() != suggest.StateOpen {
		t.Fatalf("list state = %v, want open", m.list.State())
	}
	if view := m.View(); !strings.Contains(view, "john") || !strings.Contains(view, "jordan") {
		t.Errorf("view should list candidates:\n%s", view)
	}

	m, _ = m.Update(key(tea.KeyEnter))
	if m.Value() != "hi @john " {
		t.Errorf("buffer = %q, want %q", m.Value(), "hi @john ")
	}
	if m.Cursor() != 9 {
		t.Errorf("cursor = %d, want 9 (after the trailing space)", m.Cursor())
	}
	if m.SuggestionsVisible() {
		t.Error("list should close after committing")
	}
}

func TestMentionTabCommitsHighlighted(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "@jo")
	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Candidates: candidates("john", "jordan")})

	m, _ = m.Update(key(tea.KeyDown))
	m, _ = m.Update(key(tea.KeyTab))
	if m.Value() != "@jordan " {
		t.Errorf("buffer = %q, want %q", m.Value(), "@jordan ")
	}
}

func TestBareAtShowsNothing(t *testing.T) {
	m := testComposer(t, 1)

	m, cmd := typeString(m, "@")
	if cmd != nil {
		t.Error("a bare @ must not fetch")
	}
	if m.SuggestionsVisible() {
		t.Error("a bare @ must not open the popup")
	}
}

func TestMinQueryRunes(t *testing.T) {
	m := testComposer(t, 2)

	m, cmd := typeString(m, "@j")
	if cmd != nil || m.SuggestionsVisible() {
		t.Error("query below the minimum must stay silent")
	}

	m, cmd = typeString(m, "o")
	if cmd == nil {
		t.Error("reaching the minimum should fetch")
	}
	if m.list.State() != suggest.StateLoading {
		t.Errorf("list state = %v, want loading", m.list.State())
	}
}

func TestDismissalSticky(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "@jo")
	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Candidates: candidates("john")})

	m, _ = m.Update(key(tea.KeyEsc))
	if m.SuggestionsVisible() {
		t.Fatal("esc should close the popup")
	}

	// A rescan that lands on the same query keeps the popup closed.
	m, cmd := m.Update(key(tea.KeyRight))
	if cmd != nil || m.SuggestionsVisible() {
		t.Error("dismissed query must not reopen")
	}

	// Changing the query lifts the dismissal.
	m, cmd = typeString(m, "h")
	if cmd == nil {
		t.Error("a changed query should fetch again")
	}
	if m.list.State() != suggest.StateLoading {
		t.Errorf("list state = %v, want loading after query change", m.list.State())
	}
}

func TestDismissWhileLoading(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "@jo")
	m, _ = m.Update(key(tea.KeyEsc))
	if m.SuggestionsVisible() {
		t.Fatal("esc should close a loading popup")
	}

	// The late result must not resurrect the dismissed popup.
	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Candidates: candidates("john")})
	if m.SuggestionsVisible() {
		t.Error("result for a dismissed query must be discarded")
	}
}

func TestStaleSuggestionDiscarded(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "@jo")
	m, _ = typeString(m, "h") // query is now "joh"

	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Candidates: candidates("john")})
	if m.list.State() != suggest.StateLoading {
		t.Fatalf("stale result applied; state = %v", m.list.State())
	}

	m, _ = m.Update(suggest.ResultMsg{Query: "joh", Candidates: candidates("john")})
	if m.list.State() != suggest.StateOpen {
		t.Fatalf("live result dropped; state = %v", m.list.State())
	}
}

func TestSearchFailure(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "@jo")
	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Err: errors.New("boom")})
	if m.list.State() != suggest.StateEmpty {
		t.Errorf("failed live search should show the empty state, got %v", m.list.State())
	}

	// A stale failure changes nothing.
	m, _ = typeString(m, "h")
	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Err: errors.New("boom")})
	if m.list.State() != suggest.StateLoading {
		t.Errorf("stale failure applied; state = %v", m.list.State())
	}
}

func TestSuggestionKeysOnlyWhenOpen(t *testing.T) {
	m := testComposer(t, 1)

	// While loading, enter edits text instead of committing.
	m, _ = typeString(m, "@jo")
	m, _ = m.Update(key(tea.KeyEnter))
	if m.Value() != "@jo\n" {
		t.Errorf("enter while loading should insert a newline, buffer %q", m.Value())
	}
}

func TestBlurDismissesSuggestions(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "@jo")
	m, _ = m.Update(suggest.ResultMsg{Query: "jo", Candidates: candidates("john")})
	m.Blur()
	if m.SuggestionsVisible() {
		t.Error("blur should close the popup")
	}
}

// =============================================================================
// UPLOADS
// =============================================================================

func TestUploadInsertsAtCapturedOffset(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "look ")
	m, _ = m.Update(key(tea.KeyCtrlO))
	if !m.Attaching() {
		t.Fatal("ctrl+o should open the attach prompt")
	}

	m, _ = typeString(m, "/tmp/cat.png")
	if m.Value() != "look " {
		t.Fatalf("path input leaked into the buffer: %q", m.Value())
	}

	m, cmd := m.Update(key(tea.KeyEnter))
	if m.Attaching() {
		t.Error("prompt should close once the attempt starts")
	}
	if !m.Uploading() {
		t.Fatal("attempt should be in flight")
	}
	if cmd == nil {
		t.Fatal("starting an attempt should produce commands")
	}
	attempt := m.attemptID

	// The author keeps typing while the upload runs.
	m, _ = typeString(m, "more")

	m, noticeCmd := m.Update(upload.ResultMsg{
		AttemptID: attempt,
		At:        5,
		Image:     api.UploadedImage{ThumbRef: "t.png", FullRef: "f.png"},
		Literal:   "![cat](t.png|f.png)",
	})
	if m.Uploading() {
		t.Error("attempt should be settled")
	}
	want := "look ![cat](t.png|f.png)more"
	if m.Value() != want {
		t.Errorf("buffer = %q, want %q", m.Value(), want)
	}
	if m.Cursor() != len([]rune(want)) {
		t.Errorf("cursor = %d, want %d (kept at the author's position)", m.Cursor(), len([]rune(want)))
	}

	if noticeCmd == nil {
		t.Fatal("success should surface a notice")
	}
	notice, ok := noticeCmd().(NoticeMsg)
	if !ok || notice.Err != nil || notice.Text == "" {
		t.Errorf("unexpected notice %#v", notice)
	}
}

func TestUploadOffsetClampedToShrunkBuffer(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "hello world")
	m, _ = m.Update(key(tea.KeyCtrlO))
	m, _ = typeString(m, "/tmp/cat.png")
	m, _ = m.Update(key(tea.KeyEnter))
	attempt := m.attemptID

	for i := 0; i < 6; i++ {
		m, _ = m.Update(key(tea.KeyBackspace))
	}
	if m.Value() != "hello" {
		t.Fatalf("setup: buffer %q", m.Value())
	}

	m, _ = m.Update(upload.ResultMsg{AttemptID: attempt, At: 11, Literal: "[img]"})
	if m.Value() != "hello[img]" {
		t.Errorf("buffer = %q, want %q", m.Value(), "hello[img]")
	}
}

func TestUploadFailureLeavesBufferAlone(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "text")
	m, _ = m.Update(key(tea.KeyCtrlO))
	m, _ = typeString(m, "/tmp/huge.png")
	m, _ = m.Update(key(tea.KeyEnter))
	attempt := m.attemptID

	m, cmd := m.Update(upload.ResultMsg{AttemptID: attempt, Err: upload.ErrTooLarge})
	if m.Value() != "text" {
		t.Errorf("failure must not touch the buffer, got %q", m.Value())
	}
	if m.Uploading() {
		t.Error("attempt should be settled after failure")
	}
	if cmd == nil {
		t.Fatal("failure should surface a notice")
	}
	notice, ok := cmd().(NoticeMsg)
	if !ok || !errors.Is(notice.Err, upload.ErrTooLarge) {
		t.Errorf("unexpected notice %#v", notice)
	}
}

func TestStaleUploadDiscarded(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = m.Update(key(tea.KeyCtrlO))
	m, _ = typeString(m, "/tmp/a.png")
	m, _ = m.Update(key(tea.KeyEnter))
	first := m.attemptID

	// A second attempt replaces the first.
	m, _ = m.Update(key(tea.KeyCtrlO))
	m, _ = typeString(m, "/tmp/b.png")
	m, _ = m.Update(key(tea.KeyEnter))

	m, cmd := m.Update(upload.ResultMsg{AttemptID: first, At: 0, Literal: "[a]"})
	if m.Value() != "" {
		t.Errorf("stale result changed the buffer: %q", m.Value())
	}
	if cmd != nil {
		t.Error("stale result should not surface a notice")
	}
	if !m.Uploading() {
		t.Error("the second attempt should still be in flight")
	}
}

func TestResetAbandonsUpload(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = typeString(m, "draft")
	m, _ = m.Update(key(tea.KeyCtrlO))
	m, _ = typeString(m, "/tmp/a.png")
	m, _ = m.Update(key(tea.KeyEnter))
	attempt := m.attemptID

	m.Reset()
	if m.Value() != "" || m.Uploading() {
		t.Fatalf("reset left state behind: %q uploading=%v", m.Value(), m.Uploading())
	}

	m, cmd := m.Update(upload.ResultMsg{AttemptID: attempt, At: 0, Literal: "[a]"})
	if m.Value() != "" || cmd != nil {
		t.Error("result for an abandoned attempt must be discarded")
	}
}

func TestAttachPromptEscCancels(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = m.Update(key(tea.KeyCtrlO))
	m, _ = typeString(m, "/tmp/a.png")
	m, _ = m.Update(key(tea.KeyEsc))
	if m.Attaching() {
		t.Fatal("esc should close the prompt")
	}
	if m.Uploading() {
		t.Error("cancelling must not start an attempt")
	}

	// The prompt comes back empty next time.
	m, _ = m.Update(key(tea.KeyCtrlO))
	if got := m.attachInput.Value(); got != "" {
		t.Errorf("prompt should reset, still shows %q", got)
	}
}

func TestAttachPromptEmptyPathIsNoop(t *testing.T) {
	m := testComposer(t, 1)

	m, _ = m.Update(key(tea.KeyCtrlO))
	m, _ = m.Update(key(tea.KeyEnter))
	if m.Attaching() || m.Uploading() {
		t.Error("an empty path should close the prompt and start nothing")
	}
}

// =============================================================================
// VIEW
// =============================================================================

func TestViewShowsPlaceholderWhenEmpty(t *testing.T) {
	m := testComposer(t, 1)
	if view := m.View(); !strings.Contains(view, "say something") {
		t.Errorf("empty composer should show its placeholder:\n%s", view)
	}
}

func TestViewPreviewRendersMarkup(t *testing.T) {
	m := New(Config{
		Theme:   styles.NewTheme(""),
		Preview: true,
	})
	m.Focus()
	m.SetSize(80)

	m, _ = typeString(m, "see **bold** text")
	view := m.View()
	if !strings.Contains(view, "preview") {
		t.Fatalf("preview pane missing:\n%s", view)
	}
	if !strings.Contains(view, "bold") {
		t.Errorf("preview should render the buffer:\n%s", view)
	}
}
