// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package markup parses parley's inline post markup into renderable blocks.

The format is deliberately small and line-oriented; it is the persisted
representation of post bodies, so parsing must round-trip the literal text
exactly and must never fail:

	![alt](thumbRef|fullRef)   image, must occupy the whole line
	**bold**                   bold span
	*italic*                   italic span
	`code`                     inline code span
	[text](url)                link span

Render is total and deterministic. Malformed markup stays literal text; an
empty line becomes a paragraph holding a single non-breaking space so
vertical structure survives presentation.

The inline passes run in a fixed order: bold, then italic, then code, then
link. Bold must run before italic because both use the asterisk: an
italic-first pass would split **bold** into two italic fragments around a
stray asterisk. Each pass subdivides only text that no earlier pass
claimed, which is what makes the ordering observable rather than an
accident of implementation.

Spans carry data only (kind, literal text, href). Styling is the caller's
concern, and every presenter must escape or strip control sequences from
the literal text before styling it, so post content can never smuggle
terminal escapes or other active content into the output.
*/
package markup
