// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the parley board TUI.

All colors use Lip Gloss AdaptiveColor so the same palette works on light
and dark terminals without configuration.

# Color System (colors.go)

Accent colors carry meaning across the interface:

  - Blue - default accent for mentions, links, and selections
  - Cyan - category names and shortcut keys
  - Emerald - success states and unread markers
  - Amber - warnings and pinned topics
  - Rose - errors and failed uploads

Surfaces layer from Base outward (Surface, SurfaceDim, SurfaceBright,
Overlay) and text follows a four-step hierarchy (TextPrimary through
TextInverse).

# Theme System (theme.go)

The Theme struct performs runtime terminal detection and exposes one
lipgloss.Style per visual element:

	theme := styles.NewTheme(cfg.UI.Accent)
	if theme.IsDark {
		// dark terminal detected
	}

The accent argument is the user-configured hex color; invalid values fall
back to the palette Blue. Call SetSize on window resize and GetLayoutMode
to pick between narrow, medium, and wide layouts.
*/
package styles
