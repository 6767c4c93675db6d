// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/ui/styles"
	"github.com/parleyhq/parley/internal/upload"
)

// =============================================================================
// ERROR BANNER COMPONENT
// =============================================================================

// ErrorBanner is the dismissable error box shown above the composer and
// the board lists. Upload failures, posting failures, and fetch failures
// all land here; suggestion fetch failures deliberately do not (the
// popup degrades to its empty state instead).
type ErrorBanner struct {
	theme   *styles.Theme
	width   int
	title   string
	message string
	visible bool
}

// NewErrorBanner creates a hidden banner.
func NewErrorBanner(theme *styles.Theme) *ErrorBanner {
	return &ErrorBanner{
		theme: theme,
		width: 60,
	}
}

// SetWidth updates the banner width.
func (b *ErrorBanner) SetWidth(width int) {
	if width > 0 {
		b.width = width
	}
}

// Show displays the banner with a title and message.
func (b *ErrorBanner) Show(title, message string) {
	b.title = title
	b.message = message
	b.visible = true
}

// ShowError displays err with a title chosen from its type. Validation
// failures read differently from transport failures, so members know
// whether to fix the file or retry.
func (b *ErrorBanner) ShowError(err error) {
	if err == nil {
		return
	}

	title := "Error"
	switch {
	case errors.Is(err, upload.ErrTooLarge), errors.Is(err, upload.ErrUnsupportedType):
		title = "Cannot attach image"
	case errors.Is(err, api.ErrUnauthorized):
		title = "Session expired"
	case errors.Is(err, api.ErrUnreachable), errors.Is(err, api.ErrTimeout):
		title = "Board unreachable"
	}
	b.Show(title, err.Error())
}

// Dismiss hides the banner.
func (b *ErrorBanner) Dismiss() {
	b.visible = false
	b.title = ""
	b.message = ""
}

// Visible reports whether the banner is showing.
func (b *ErrorBanner) Visible() bool {
	return b.visible
}

// View renders the banner box, or nothing while hidden.
func (b *ErrorBanner) View() string {
	if !b.visible {
		return ""
	}

	title := b.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + b.title)
	message := b.theme.ErrorMessage.Render(b.message)
	hint := b.theme.ShortcutDesc.Render("esc to dismiss")

	return b.theme.ErrorBanner.
		Width(b.width).
		MaxWidth(b.width).
		Render(title + "\n" + message + "\n" + hint)
}
