// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import "unicode/utf8"

// Splice replaces the rune range [start, end) of buffer with replacement
// and returns the new buffer together with the cursor offset immediately
// after the inserted text (start + rune length of replacement).
//
// Offsets are clamped into [0, rune length] and swapped when inverted, so
// the operation never fails. A caller holding an offset captured before an
// async operation completed can still apply it safely after the buffer has
// been edited underneath it.
func Splice(buffer string, start, end int, replacement string) (string, int) {
	runes := []rune(buffer)
	start = clampOffset(start, len(runes))
	end = clampOffset(end, len(runes))
	if end < start {
		start, end = end, start
	}

	rep := []rune(replacement)
	out := make([]rune, 0, len(runes)-(end-start)+len(rep))
	out = append(out, runes[:start]...)
	out = append(out, rep...)
	out = append(out, runes[end:]...)
	return string(out), start + len(rep)
}

// InsertAt inserts text at a single offset (a zero-width splice) and
// returns the new buffer and cursor offset.
func InsertAt(buffer string, offset int, text string) (string, int) {
	return Splice(buffer, offset, offset, text)
}

// RuneLen returns the rune length of s, the unit all offsets in this
// package are expressed in.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func clampOffset(off, max int) int {
	if off < 0 {
		return 0
	}
	if off > max {
		return max
	}
	return off
}
