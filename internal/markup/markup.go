// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "strings"

// BlockKind discriminates the two block shapes a rendered line can take.
type BlockKind int

const (
	// BlockLine is a paragraph of inline spans.
	BlockLine BlockKind = iota
	// BlockImage is a whole-line image literal.
	BlockImage
)

// SpanKind discriminates inline spans within a BlockLine.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanBold
	SpanItalic
	SpanCode
	SpanLink
)

// Span is one styled run of a line. Text always holds the literal content
// with the markup delimiters stripped. Links carry their target in Href.
// A bold span whose content itself contains later-pass markup carries the
// decorated form in Inner; Text still holds the raw content either way.
type Span struct {
	Kind  SpanKind
	Text  string
	Href  string // SpanLink only
	Inner []Span // SpanBold only; nil when the content is a single plain run
}

// Block is one rendered line of a buffer.
type Block struct {
	Kind  BlockKind
	Spans []Span // BlockLine
	Alt   string // BlockImage
	Thumb string // BlockImage
	Full  string // BlockImage
}

// nbsp keeps empty lines from collapsing to zero height in presentation.
const nbsp = " "

// Render parses buffer into its block model, one block per line. It is
// pure, total and deterministic: no input fails, malformed markup stays
// literal text, and equal buffers always yield equal blocks.
//
// A single trailing newline terminates the final line rather than opening
// an empty one; interior empty lines become non-breaking-space paragraphs.
func Render(buffer string) []Block {
	lines := strings.Split(buffer, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		if img, ok := parseImageLine(line); ok {
			blocks = append(blocks, img)
			continue
		}
		if line == "" {
			blocks = append(blocks, Block{
				Kind:  BlockLine,
				Spans: []Span{{Kind: SpanText, Text: nbsp}},
			})
			continue
		}
		blocks = append(blocks, Block{Kind: BlockLine, Spans: renderSpans(line)})
	}
	return blocks
}

// ImageLiteral builds the markup token for an uploaded image, the inverse
// of what parseImageLine accepts. The upload pipeline splices this (plus a
// terminating newline) into the buffer.
func ImageLiteral(alt, thumbRef, fullRef string) string {
	var b strings.Builder
	b.Grow(len(alt) + len(thumbRef) + len(fullRef) + 6)
	b.WriteString("![")
	b.WriteString(alt)
	b.WriteString("](")
	b.WriteString(thumbRef)
	b.WriteString("|")
	b.WriteString(fullRef)
	b.WriteString(")")
	return b.String()
}

// parseImageLine matches a line consisting entirely of ![alt](thumb|full).
// Alt is any run of non-] runes and may be empty; the refs are non-empty
// and contain neither ) nor |. Anything else is not an image line.
func parseImageLine(line string) (Block, bool) {
	rest, ok := strings.CutPrefix(line, "![")
	if !ok {
		return Block{}, false
	}
	alt, rest, ok := strings.Cut(rest, "](")
	if !ok || strings.Contains(alt, "]") {
		return Block{}, false
	}
	refs, ok := strings.CutSuffix(rest, ")")
	if !ok {
		return Block{}, false
	}
	thumb, full, ok := strings.Cut(refs, "|")
	if !ok || thumb == "" || full == "" {
		return Block{}, false
	}
	if strings.ContainsAny(thumb, ")|") || strings.ContainsAny(full, ")|") {
		return Block{}, false
	}
	return Block{Kind: BlockImage, Alt: alt, Thumb: thumb, Full: full}, true
}

// renderSpans runs the inline passes over one line in their fixed order.
// Bold goes first and owns every **...** pair; the later passes subdivide
// only the text bold left plain. The later passes also decorate the
// content of each bold span, which is how **a*b*c** becomes one bold span
// with an italic b inside instead of three stray asterisks.
func renderSpans(line string) []Span {
	spans := passBold(line)
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Kind == SpanBold {
			s.Inner = boldInner(s.Text)
			out = append(out, s)
			continue
		}
		out = append(out, applyLaterPasses(s.Text)...)
	}
	return out
}

// applyLaterPasses runs italic, code and link over plain text, in that
// order. Each pass only touches text the earlier passes left plain.
func applyLaterPasses(text string) []Span {
	spans := []Span{{Kind: SpanText, Text: text}}
	spans = applyPass(spans, passItalic)
	spans = applyPass(spans, passCode)
	spans = applyPass(spans, passLink)
	return spans
}

// boldInner decorates bold content with the later passes. It returns nil
// when the content is a single plain run, the common case.
func boldInner(text string) []Span {
	spans := applyLaterPasses(text)
	if len(spans) == 1 && spans[0].Kind == SpanText {
		return nil
	}
	return spans
}

// applyPass re-runs pass over every still-plain span and leaves decorated
// spans untouched.
func applyPass(spans []Span, pass func(string) []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Kind != SpanText {
			out = append(out, s)
			continue
		}
		out = append(out, pass(s.Text)...)
	}
	return out
}

// passBold splits text into plain and bold spans. A bold run is **content**
// with at least one rune of content; the content may itself contain single
// asterisks, which the italic pass claims later.
func passBold(text string) []Span {
	var out []Span
	plainFrom := 0
	i := 0
	for {
		open := strings.Index(text[i:], "**")
		if open < 0 {
			break
		}
		open += i
		if open+3 > len(text) {
			break
		}
		closing := strings.Index(text[open+3:], "**")
		if closing < 0 {
			break
		}
		closing += open + 3

		if open > plainFrom {
			out = append(out, Span{Kind: SpanText, Text: text[plainFrom:open]})
		}
		out = append(out, Span{Kind: SpanBold, Text: text[open+2 : closing]})
		plainFrom = closing + 2
		i = closing + 2
	}
	return finishPass(out, text, plainFrom)
}

// passItalic extracts *content* runs. The content is everything up to the
// next asterisk, so it can never contain one, and it must be non-empty: a
// doubled marker leaves the first asterisk literal and scanning resumes at
// the second, which may open a run of its own.
func passItalic(text string) []Span {
	return passDelim(text, '*', SpanItalic)
}

// passCode extracts `content` runs under the same rules as passItalic.
func passCode(text string) []Span {
	return passDelim(text, '`', SpanCode)
}

func passDelim(text string, marker byte, kind SpanKind) []Span {
	var out []Span
	plainFrom := 0
	i := 0
	for {
		open := strings.IndexByte(text[i:], marker)
		if open < 0 {
			break
		}
		open += i
		closing := strings.IndexByte(text[open+1:], marker)
		if closing < 0 {
			break
		}
		closing += open + 1
		if closing == open+1 {
			i = open + 1
			continue
		}

		if open > plainFrom {
			out = append(out, Span{Kind: SpanText, Text: text[plainFrom:open]})
		}
		out = append(out, Span{Kind: kind, Text: text[open+1 : closing]})
		plainFrom = closing + 1
		i = closing + 1
	}
	return finishPass(out, text, plainFrom)
}

// passLink extracts [text](url) runs. The text part is everything up to
// the first ] and the url everything up to the first ), both non-empty. A
// bracket without the full shape behind it stays literal.
func passLink(text string) []Span {
	var out []Span
	plainFrom := 0
	i := 0
	for {
		open := strings.IndexByte(text[i:], '[')
		if open < 0 {
			break
		}
		open += i
		closeBracket := strings.IndexByte(text[open+1:], ']')
		if closeBracket < 0 {
			break
		}
		closeBracket += open + 1
		label := text[open+1 : closeBracket]
		if label == "" || closeBracket+1 >= len(text) || text[closeBracket+1] != '(' {
			i = open + 1
			continue
		}
		closeParen := strings.IndexByte(text[closeBracket+2:], ')')
		if closeParen < 0 {
			i = open + 1
			continue
		}
		closeParen += closeBracket + 2
		href := text[closeBracket+2 : closeParen]
		if href == "" {
			i = open + 1
			continue
		}

		if open > plainFrom {
			out = append(out, Span{Kind: SpanText, Text: text[plainFrom:open]})
		}
		out = append(out, Span{Kind: SpanLink, Text: label, Href: href})
		plainFrom = closeParen + 1
		i = closeParen + 1
	}
	return finishPass(out, text, plainFrom)
}

// finishPass flushes the trailing plain run and guarantees a non-empty
// result for non-empty input.
func finishPass(out []Span, text string, plainFrom int) []Span {
	if plainFrom < len(text) {
		out = append(out, Span{Kind: SpanText, Text: text[plainFrom:]})
	}
	if out == nil {
		return []Span{{Kind: SpanText, Text: text}}
	}
	return out
}
