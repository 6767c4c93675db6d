// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides string helpers shared by the parley views.
package util

import "github.com/mattn/go-runewidth"

// Board content is arbitrary UTF-8: display names, topic titles, and post
// bodies mix scripts freely. Everything here measures display cells with
// go-runewidth, so CJK and other wide runes count as two columns and a
// string is never cut mid-rune.

// TruncateWidth shortens s to at most maxWidth display cells, appending
// "..." when anything was cut. Very small budgets get a bare cut with no
// ellipsis.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadWidth pads s with spaces on the right to exactly width display cells,
// truncating first if it is already wider.
func PadWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = TruncateWidth(s, width)
	return runewidth.FillRight(s, width)
}

// StringWidth returns the display width of s in terminal cells.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}
