// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package editor provides the text-buffer primitives shared by the parley
composer: rune-offset splicing and @mention token scanning.

All offsets in this package are rune offsets, never byte offsets. The
composer's buffer is plain UTF-8 text, and counting runes keeps cursor
arithmetic correct for multi-byte input.

# Splicing

Splice replaces a rune range with literal text and returns the cursor
offset that follows the inserted text. It is total: out-of-range offsets
are clamped, inverted ranges are reordered, and no input fails. Callers
that captured an offset before an async operation (an image upload, for
example) can apply it against the current buffer even if the buffer has
shrunk in the meantime.

# Mention scanning

ScanMention is a pure function over (buffer, cursor). It is re-run from
scratch on every buffer or cursor change; there is no incremental scanner
state to invalidate. At most one token is live at a time, and its absence
is a normal result, not an error.
*/
package editor
