// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package editor

import "unicode"

// Token is a live @mention span ending at the cursor.
type Token struct {
	// Query is the text between the @ and the cursor. It is empty for a
	// bare @ (allowed; the suggestion layer decides whether to fetch).
	Query string
	// Start is the rune offset of the @.
	Start int
	// End is the rune offset the token runs to, which is always the
	// cursor position the scan was performed at.
	End int
}

// ScanMention inspects the rune suffix of buffer ending at cursor and
// reports the live @mention token, if any.
//
// A token exists when the suffix matches an @ followed by zero or more
// word runes, and the @ sits at the start of the buffer or after a rune
// that is not a word rune. foo@bar is an address, not a mention: the @ is
// preceded by a word rune and never opens a token. Whitespace between the
// @-word and the cursor, or a cursor outside the buffer, yields no token.
//
// The scan has no memory; callers re-run it after every buffer or cursor
// change and treat a false result as the token being closed.
func ScanMention(buffer string, cursor int) (Token, bool) {
	runes := []rune(buffer)
	if cursor < 0 || cursor > len(runes) {
		return Token{}, false
	}

	i := cursor - 1
	for i >= 0 && isWordRune(runes[i]) {
		i--
	}
	if i < 0 || runes[i] != '@' {
		return Token{}, false
	}
	if i > 0 && isWordRune(runes[i-1]) {
		return Token{}, false
	}

	return Token{
		Query: string(runes[i+1 : cursor]),
		Start: i,
		End:   cursor,
	}, true
}

// isWordRune reports whether r can appear in a mention query: letters,
// digits, underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
