// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parley TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the board interface.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	accent lipgloss.TerminalColor

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style
	HeaderBrand lipgloss.Style

	// ==========================================================================
	// LIST STYLES (categories, topics)
	// ==========================================================================

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListTitle        lipgloss.Style
	ListMeta         lipgloss.Style
	UnreadMarker     lipgloss.Style
	PinnedMarker     lipgloss.Style

	// ==========================================================================
	// READER STYLES (topic view)
	// ==========================================================================

	ReplyAuthor  lipgloss.Style
	ReplyRank    lipgloss.Style
	ReplyMeta    lipgloss.Style
	ReplyBody    lipgloss.Style
	ReplyDivider lipgloss.Style
	MentionText  lipgloss.Style
	Link         lipgloss.Style
	CodeSpan     lipgloss.Style
	ImageTag     lipgloss.Style

	// ==========================================================================
	// COMPOSER STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	InputCursor      lipgloss.Style
	PreviewPane      lipgloss.Style
	PreviewLabel     lipgloss.Style

	// ==========================================================================
	// SUGGESTION POPUP STYLES
	// ==========================================================================

	SuggestPopup    lipgloss.Style
	SuggestItem     lipgloss.Style
	SuggestSelected lipgloss.Style
	SuggestMatch    lipgloss.Style
	SuggestNote     lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusNote   lipgloss.Style
	StatusError  lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner     lipgloss.Style
	LoadingText lipgloss.Style

	// ==========================================================================
	// ERROR BANNER STYLES
	// ==========================================================================

	ErrorBanner  lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style

	// ==========================================================================
	// LIGHTBOX OVERLAY STYLES
	// ==========================================================================

	LightboxBox   lipgloss.Style
	LightboxTitle lipgloss.Style
	LightboxBody  lipgloss.Style
	LightboxHint  lipgloss.Style
}

// NewTheme creates a theme with runtime terminal detection. The accent is a
// hex color from configuration; invalid or empty values fall back to Blue.
func NewTheme(accent string) *Theme {
	t := &Theme{
		ColorProfile: termenv.ColorProfile(),
		IsDark:       termenv.HasDarkBackground(),
	}
	t.HasTrueColor = t.ColorProfile == termenv.TrueColor
	t.accent = AccentColor(accent)
	t.initStyles()
	return t
}

// AccentColor parses a hex accent string, falling back to Blue when the
// value is not a #RRGGBB color.
func AccentColor(hex string) lipgloss.TerminalColor {
	if !validHexColor(hex) {
		return Blue
	}
	return lipgloss.Color(hex)
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Accent returns the configured accent color.
func (t *Theme) Accent() lipgloss.TerminalColor {
	return t.accent
}

// initStyles builds all the lipgloss styles from the palette.
func (t *Theme) initStyles() {
	// Application container
	t.App = lipgloss.NewStyle().
		Background(Surface)

	t.Container = lipgloss.NewStyle().
		Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Bold(true).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(t.accent).
		Bold(true)

	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.HeaderBrand = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	// Lists
	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ListItemSelected = lipgloss.NewStyle().
		Background(t.accent).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.ListTitle = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ListMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UnreadMarker = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.PinnedMarker = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Reader
	t.ReplyAuthor = lipgloss.NewStyle().
		Foreground(t.accent).
		Bold(true)

	t.ReplyRank = lipgloss.NewStyle().
		Foreground(Amber)

	t.ReplyMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ReplyBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.ReplyDivider = lipgloss.NewStyle().
		Foreground(Overlay)

	t.MentionText = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Link = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)

	t.CodeSpan = lipgloss.NewStyle().
		Background(CodeSpanBg).
		Foreground(CodeSpanFg)

	t.ImageTag = lipgloss.NewStyle().
		Background(ImageTagBg).
		Foreground(ImageTagFg).
		Padding(0, 1)

	// Composer
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputCursor = lipgloss.NewStyle().
		Background(TextPrimary).
		Foreground(TextInverse)

	t.PreviewPane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PreviewLabel = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Suggestion popup
	t.SuggestPopup = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SuggestItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SuggestSelected = lipgloss.NewStyle().
		Background(t.accent).
		Foreground(TextInverse).
		Bold(true)

	t.SuggestMatch = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.SuggestNote = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusNote = lipgloss.NewStyle().
		Foreground(Emerald)

	t.StatusError = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Spinner and loading
	t.Spinner = lipgloss.NewStyle().
		Foreground(t.accent)

	t.LoadingText = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Error banner
	t.ErrorBanner = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Background(RoseDeep).
		Padding(0, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	// Lightbox overlay
	t.LightboxBox = lipgloss.NewStyle().
		Background(Surface).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(t.accent).
		Padding(1, 2)

	t.LightboxTitle = lipgloss.NewStyle().
		Foreground(t.accent).
		Bold(true)

	t.LightboxBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.LightboxHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
