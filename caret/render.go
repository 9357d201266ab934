// Package caret maps the logical caret of the canonical buffer onto the
// rendered line and keeps it out of atomic regions.
//
// The rendered line is the canonical buffer with digit groups separated,
// binary operators and '=' padded with single spaces. Separators and
// padding are cosmetic: the logical caret counts every other rune.
package caret

import (
	"strings"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/numfmt"
)

// Renderer renders canonical buffers with one set of grouping rules.
type Renderer struct {
	Format numfmt.Formatter
}

func NewRenderer(f numfmt.Formatter) Renderer { return Renderer{Format: f} }

// Placement is a rendered line and the caret offset inside it, in runes.
type Placement struct {
	Text  string
	Caret int
}

// Render formats a buffer for display. Separators and padding already in
// the input are dropped first, so a rendered line renders to itself.
func (r Renderer) Render(canonical string) string {
	rs := []rune(calc.StripCosmetic(canonical))
	var (
		b    strings.Builder
		word []rune
	)
	flush := func() {
		if len(word) > 0 {
			b.WriteString(r.renderWord(string(word)))
			word = word[:0]
		}
	}

	for i, c := range rs {
		switch {
		case calc.IsOperator(c) && !isExponentSign(rs, i):
			flush()
			op, _ := calc.ParseOp(c)
			if i == 0 {
				b.WriteRune(rune(op))
				continue
			}
			b.WriteByte(' ')
			b.WriteRune(rune(op))
			b.WriteByte(' ')
		case c == '=':
			flush()
			b.WriteString(" = ")
		case c == '%':
			flush()
			b.WriteRune(c)
		default:
			word = append(word, c)
		}
	}
	flush()
	return b.String()
}

func (r Renderer) renderWord(w string) string {
	body := strings.TrimPrefix(w, string(numfmt.Minus))
	if body == "" {
		return w
	}
	for _, c := range body {
		if (c < '0' || c > '9') && c != '.' {
			return w
		}
	}
	return r.Format.Group(w)
}

func isExponentSign(rs []rune, i int) bool {
	return (rs[i] == '+' || rs[i] == '-') && i > 0 && (rs[i-1] == 'e' || rs[i-1] == 'E')
}

// RenderAndRelocate renders the buffer and places the logical caret in the
// result, snapped out of any atomic region.
func (r Renderer) RenderAndRelocate(canonical string, logical int) Placement {
	text := r.Render(canonical)
	return Placement{Text: text, Caret: Snap(text, ToRendered(text, logical))}
}

func isCosmetic(c rune) bool { return c == numfmt.GroupSep || c == ' ' }

// ToRendered walks the rendered text counting non-cosmetic runes and
// returns the offset right after the logical-th one.
func ToRendered(text string, logical int) int {
	rs := []rune(text)
	if logical <= 0 {
		return 0
	}
	n := 0
	for i, c := range rs {
		if isCosmetic(c) {
			continue
		}
		n++
		if n == logical {
			return i + 1
		}
	}
	return len(rs)
}

// ToLogical counts the non-cosmetic runes before a rendered offset.
func ToLogical(text string, offset int) int {
	rs := []rune(text)
	offset = clamp(offset, 0, len(rs))
	n := 0
	for _, c := range rs[:offset] {
		if !isCosmetic(c) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
