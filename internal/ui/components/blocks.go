// Copyright (c) 2025 Parley Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/parleyhq/parley/internal/markup"
	"github.com/parleyhq/parley/internal/ui/styles"
	"github.com/parleyhq/parley/internal/util"
)

// =============================================================================
// BLOCK RENDERER
// =============================================================================

// BlockRenderer turns the markup block model into styled terminal text.
// The block model carries data only; everything presentational lives here:
// span styling, syntax highlighting of code spans, OSC 8 hyperlinks, and
// the image tags the lightbox keys off.
//
// All literal text is sanitized before styling. Post bodies come from
// other members, and a body is not allowed to smuggle escape sequences
// into the terminal.
type BlockRenderer struct {
	theme      *styles.Theme
	width      int
	hyperlinks bool
}

// NewBlockRenderer creates a renderer. Hyperlink escapes are on by
// default; terminals that do not support OSC 8 ignore them.
func NewBlockRenderer(theme *styles.Theme) *BlockRenderer {
	return &BlockRenderer{
		theme:      theme,
		width:      0,
		hyperlinks: true,
	}
}

// SetWidth sets the wrap width for paragraphs. Zero disables wrapping.
func (r *BlockRenderer) SetWidth(width int) {
	if width < 0 {
		width = 0
	}
	r.width = width
}

// SetHyperlinks enables or disables OSC 8 hyperlink escapes around links.
// When off, the href is shown in parentheses after the link text instead.
func (r *BlockRenderer) SetHyperlinks(on bool) {
	r.hyperlinks = on
}

// RenderBuffer parses buffer through the markup renderer and renders the
// resulting blocks. The composer preview pane uses this directly.
func (r *BlockRenderer) RenderBuffer(buffer string) string {
	return r.Render(markup.Render(buffer))
}

// Render renders blocks to styled text, one terminal line group per block.
func (r *BlockRenderer) Render(blocks []markup.Block) string {
	if len(blocks) == 0 {
		return ""
	}

	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case markup.BlockImage:
			lines = append(lines, r.renderImage(b))
		default:
			lines = append(lines, r.renderLine(b))
		}
	}
	return strings.Join(lines, "\n")
}

// renderImage renders an image block as a placeholder tag. The full
// resolution ref is deliberately absent: it belongs to the lightbox.
func (r *BlockRenderer) renderImage(b markup.Block) string {
	alt := Sanitize(b.Alt)
	if alt == "" {
		alt = "image"
	}

	budget := r.width
	if budget < 20 {
		budget = 80
	}
	tag := r.theme.ImageTag.Render(util.TruncateWidth("[image: "+alt+"]", budget-10))
	ref := r.theme.ReplyMeta.Render(util.TruncateWidth(Sanitize(b.Thumb), budget/3))

	return tag + " " + ref
}

// renderLine renders a paragraph of spans.
func (r *BlockRenderer) renderLine(b markup.Block) string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(r.renderSpan(s, false))
	}

	line := sb.String()
	if r.width > 0 {
		line = lipgloss.NewStyle().Width(r.width).Render(line)
	}
	return line
}

// renderSpan renders one span. bold is set when the span sits inside a
// bold span's content, so nested emphasis keeps the weight.
func (r *BlockRenderer) renderSpan(s markup.Span, bold bool) string {
	switch s.Kind {
	case markup.SpanBold:
		if len(s.Inner) == 0 {
			return lipgloss.NewStyle().Bold(true).Render(Sanitize(s.Text))
		}
		var sb strings.Builder
		for _, inner := range s.Inner {
			sb.WriteString(r.renderSpan(inner, true))
		}
		return sb.String()

	case markup.SpanItalic:
		return lipgloss.NewStyle().Bold(bold).Italic(true).Render(Sanitize(s.Text))

	case markup.SpanCode:
		return r.renderCode(Sanitize(s.Text))

	case markup.SpanLink:
		return r.renderLink(Sanitize(s.Text), sanitizeHref(s.Href))

	default:
		text := Sanitize(s.Text)
		if bold {
			return lipgloss.NewStyle().Bold(true).Render(text)
		}
		return text
	}
}

// renderLink renders a link span, as an OSC 8 hyperlink when enabled.
func (r *BlockRenderer) renderLink(text, href string) string {
	styled := r.theme.Link.Render(text)
	if href == "" {
		return styled
	}
	if r.hyperlinks {
		return termenv.Hyperlink(href, styled)
	}
	return styled + r.theme.ReplyMeta.Render(" ("+href+")")
}

// renderCode renders an inline code span with syntax highlighting. Inline
// spans carry no language marker, so the lexer is guessed from content;
// highlighting that fails falls back to the plain code style.
func (r *BlockRenderer) renderCode(code string) string {
	if code == "" {
		return ""
	}

	highlighted, ok := highlightCode(code)
	if !ok {
		return r.theme.CodeSpan.Render(code)
	}
	return r.theme.CodeSpan.Render(highlighted)
}

// highlightCode applies chroma highlighting, returning ok=false when the
// pipeline cannot produce output.
func highlightCode(code string) (string, bool) {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", false
	}

	out := strings.TrimRight(buf.String(), "\n")
	if out == "" {
		return "", false
	}
	return out, true
}

// =============================================================================
// SANITIZATION
// =============================================================================

// Sanitize strips control runes from member-authored text so it can never
// inject escape sequences. Tabs become two spaces; U+00A0 and all other
// printing runes pass through.
func Sanitize(s string) string {
	if !strings.ContainsFunc(s, isControlRune) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\t' {
			sb.WriteString("  ")
			continue
		}
		if isControlRune(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// isControlRune reports C0 controls, DEL, and C1 controls. U+00A0 and
// above are content.
func isControlRune(r rune) bool {
	return r < 0x20 || r == 0x7F || (r >= 0x80 && r <= 0x9F)
}

// sanitizeHref strips control runes and whitespace from a link target.
func sanitizeHref(href string) string {
	href = Sanitize(href)
	return strings.TrimSpace(href)
}
