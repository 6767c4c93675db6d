// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parley TUI.
package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme("")

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Verify styles are initialized by rendering a test string
	renderedApp := theme.App.Render("test")
	if renderedApp == "" {
		t.Error("NewTheme() should initialize App style")
	}

	if theme.Accent() == nil {
		t.Error("NewTheme() should set an accent color")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme("#7aa2f7")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"ListItem", theme.ListItem},
		{"ListItemSelected", theme.ListItemSelected},
		{"ReplyAuthor", theme.ReplyAuthor},
		{"MentionText", theme.MentionText},
		{"CodeSpan", theme.CodeSpan},
		{"InputContainer", theme.InputContainer},
		{"SuggestPopup", theme.SuggestPopup},
		{"StatusBar", theme.StatusBar},
		{"ErrorBanner", theme.ErrorBanner},
		{"LightboxBox", theme.LightboxBox},
	}

	for _, s := range styles {
		// An uninitialized style would just return the input unchanged
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

// =============================================================================
// ACCENT COLOR TESTS
// =============================================================================

func TestAccentColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  lipgloss.TerminalColor
	}{
		{"valid lowercase", "#7aa2f7", lipgloss.Color("#7aa2f7")},
		{"valid uppercase", "#FF00AA", lipgloss.Color("#FF00AA")},
		{"empty falls back", "", Blue},
		{"missing hash", "7aa2f7", Blue},
		{"too short", "#fff", Blue},
		{"too long", "#7aa2f7ff", Blue},
		{"bad hex digit", "#7aa2g7", Blue},
		{"named color rejected", "rebeccapurple", Blue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AccentColor(tc.input)
			if got != tc.want {
				t.Errorf("AccentColor(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestThemeUsesConfiguredAccent(t *testing.T) {
	theme := NewTheme("#ff0000")
	if theme.Accent() != lipgloss.Color("#ff0000") {
		t.Errorf("Accent() = %v, want #ff0000", theme.Accent())
	}
}

// =============================================================================
// THEME SIZE TESTS
// =============================================================================

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme("")

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{200, 60},
		{40, 10},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, tc.height)
		if theme.Width != tc.width {
			t.Errorf("SetSize(%d, %d) Width = %d, want %d", tc.width, tc.height, theme.Width, tc.width)
		}
		if theme.Height != tc.height {
			t.Errorf("SetSize(%d, %d) Height = %d, want %d", tc.width, tc.height, theme.Height, tc.height)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme("")

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{80, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{150, LayoutWide},
		{200, LayoutWide},
	}

	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		got := theme.GetLayoutMode()
		if got != tc.want {
			t.Errorf("GetLayoutMode() with width %d = %v, want %v", tc.width, got, tc.want)
		}
	}
}

// =============================================================================
// STATUS INDICATOR TESTS
// =============================================================================

func TestStatusIndicatorsAreASCII(t *testing.T) {
	indicators := []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Unread,
	}

	for _, ind := range indicators {
		if ind == "" {
			t.Error("status indicator should not be empty")
		}
		for _, c := range ind {
			if c > 127 {
				t.Errorf("indicator %q contains non-ASCII rune %q", ind, c)
			}
		}
	}
}

func TestRenderHelpersIncludeIndicator(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"success", RenderSuccess("saved"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("careful"), StatusIndicators.Warning},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !strings.Contains(tc.got, tc.want) {
				t.Errorf("rendered message %q missing indicator %q", tc.got, tc.want)
			}
		})
	}
}
