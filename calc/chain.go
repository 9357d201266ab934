package calc

import (
	"github.com/maxBezel/billpad/numfmt"
)

// Block is a chained "=literal" span of a canonical buffer, in rune
// offsets. Eq is the index of '='; End is one past the literal.
type Block struct {
	Eq  int
	End int
}

// Inside reports whether a caret at c sits strictly within the block, where
// it may not edit.
func (b Block) Inside(c int) bool { return c > b.Eq && c < b.End }

// Blocks locates every frozen block of a canonical buffer.
func Blocks(buffer string) []Block {
	rs := []rune(buffer)
	var out []Block
	for i := 0; i < len(rs); i++ {
		if rs[i] != '=' {
			continue
		}
		j := i + 1
		for j < len(rs) && !literalStop(rs, j) {
			j++
		}
		out = append(out, Block{Eq: i, End: j})
		i = j - 1
	}
	return out
}

// literalStop reports whether rs[j] ends a frozen literal. The sign of an
// exponent belongs to the literal.
func literalStop(rs []rune, j int) bool {
	r := rs[j]
	switch {
	case r == '=' || r == '%':
		return true
	case IsOperator(r):
		return !(j > 0 && (rs[j-1] == 'e' || rs[j-1] == 'E'))
	}
	return false
}

// BlockAt returns the block whose literal ends exactly at c.
func BlockAt(buffer string, c int) (Block, bool) {
	for _, b := range Blocks(buffer) {
		if b.End == c {
			return b, true
		}
	}
	return Block{}, false
}

// Calculator runs the tokenize, resolve and evaluate stages with one set of
// formatting constants and one grand total.
type Calculator struct {
	Format numfmt.Formatter
	Total  GrandTotal
}

func New(f numfmt.Formatter, total GrandTotal) Calculator {
	return Calculator{Format: f, Total: total}
}

// Compute evaluates a buffer and returns the resolved tokens it folded.
func (c Calculator) Compute(buffer string) (float64, []Token, error) {
	toks := resolve(c.Format, Tokenize(buffer), c.Total)
	v, err := evaluate(c.Format, toks)
	return v, toks, err
}

// Literal is the frozen text written after '=' for a computed prefix.
func (c Calculator) Literal(v float64, err error) string {
	if err != nil {
		return numfmt.ErrorText
	}
	return numfmt.Canonical(c.Format.Display(v))
}

// Refresh recomputes every frozen literal from everything before its '='.
// A caret past a rewritten literal moves with it; a caret inside one is
// moved to the literal's end.
func (c Calculator) Refresh(buffer string, caret int) (string, int) {
	for k := 0; ; k++ {
		blocks := Blocks(buffer)
		if k >= len(blocks) {
			return buffer, caret
		}
		b := blocks[k]
		rs := []rune(buffer)

		v, _, err := c.Compute(string(rs[:b.Eq]))
		lit := []rune(c.Literal(v, err))
		oldLen := b.End - b.Eq - 1
		newEnd := b.Eq + 1 + len(lit)

		switch {
		case caret >= b.End:
			caret += len(lit) - oldLen
		case caret > b.Eq:
			caret = newEnd
		}

		next := make([]rune, 0, len(rs)-oldLen+len(lit))
		next = append(next, rs[:b.Eq+1]...)
		next = append(next, lit...)
		next = append(next, rs[b.End:]...)
		buffer = string(next)
	}
}
