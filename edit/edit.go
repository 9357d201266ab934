// Package edit validates keystrokes against the canonical edit buffer.
//
// The buffer holds no cosmetic characters, so the caret is a plain rune
// index into it. Every operation takes a State and returns the next one;
// a rejected keystroke returns ErrRejected with the state unchanged.
package edit

import (
	"errors"
	"unicode"

	"github.com/maxBezel/billpad/calc"
)

var ErrRejected = errors.New("keystroke rejected")

// State is the uncommitted line and its logical caret.
type State struct {
	Buffer string
	Caret  int
}

func (s State) Empty() bool { return s.Buffer == "" }

type Kind int

const (
	KindUnknown Kind = iota
	KindDigit
	KindDot
	KindOperator
	KindPercent
	KindEquals
)

func KindOf(r rune) Kind {
	switch {
	case r >= '0' && r <= '9':
		return KindDigit
	case r == '.':
		return KindDot
	case calc.IsOperator(r):
		return KindOperator
	case r == '%':
		return KindPercent
	case r == '=':
		return KindEquals
	}
	return KindUnknown
}

// Clear is the long-press gesture: the whole line goes.
func Clear() State { return State{} }

// Insert applies one keystroke at the caret.
func Insert(s State, r rune) (State, error) {
	rs := []rune(s.Buffer)
	c := clamp(s.Caret, 0, len(rs))
	for _, b := range calc.Blocks(s.Buffer) {
		if b.Inside(c) {
			return s, ErrRejected
		}
	}

	switch KindOf(r) {
	case KindDigit:
		if afterValue(s.Buffer, rs, c) {
			return splice(rs, c, c, '×', r), nil
		}
		return splice(rs, c, c, r), nil
	case KindDot:
		return insertDot(s, rs, c)
	case KindOperator:
		op, _ := calc.ParseOp(r)
		return insertOperator(s, rs, c, rune(op))
	case KindPercent:
		return insertPercent(s, rs, c)
	case KindEquals:
		return insertEquals(s, rs, c)
	}
	return s, ErrRejected
}

func insertDot(s State, rs []rune, c int) (State, error) {
	if afterValue(s.Buffer, rs, c) {
		return splice(rs, c, c, '×', '0', '.'), nil
	}
	start, end := segment(rs, c)
	for _, r := range rs[start:end] {
		if r == '.' {
			return s, ErrRejected
		}
	}
	if start == c {
		return splice(rs, c, c, '0', '.'), nil
	}
	return splice(rs, c, c, '.'), nil
}

func insertOperator(s State, rs []rune, c int, op rune) (State, error) {
	next, hasNext := at(rs, c)
	if c == 0 {
		if op != '-' || (hasNext && calc.IsOperator(next)) {
			return s, ErrRejected
		}
		return splice(rs, c, c, op), nil
	}

	prev := rs[c-1]
	switch {
	case calc.IsOperator(prev):
		// a lone leading minus is a sign, not an operator to replace
		if c-1 == 0 || prev == op {
			return s, ErrRejected
		}
		return splice(rs, c-1, c, op), nil
	case prev == '=':
		return s, ErrRejected
	case hasNext && calc.IsOperator(next):
		return s, ErrRejected
	}
	return splice(rs, c, c, op), nil
}

func insertPercent(s State, rs []rune, c int) (State, error) {
	if c == 0 {
		return s, ErrRejected
	}
	if _, ok := calc.BlockAt(s.Buffer, c); ok {
		return s, ErrRejected
	}
	prev := rs[c-1]
	if isDigit(prev) || prev == '.' || prev == '%' {
		return splice(rs, c, c, '%'), nil
	}
	return s, ErrRejected
}

func insertEquals(s State, rs []rune, c int) (State, error) {
	if len(rs) == 0 || c != len(rs) {
		return s, ErrRejected
	}
	if _, ok := calc.BlockAt(s.Buffer, c); ok {
		return s, ErrRejected
	}
	last := rs[len(rs)-1]
	if !isDigit(last) && last != '.' && last != '%' {
		return s, ErrRejected
	}
	return splice(rs, c, c, '='), nil
}

// InsertOperand places a whole number literal at the caret, as a shortcut
// result or a quick-discount base. After an operand a × is put first.
func InsertOperand(s State, literal string) (State, error) {
	rs := []rune(s.Buffer)
	c := clamp(s.Caret, 0, len(rs))
	lit := []rune(literal)
	if len(lit) == 0 {
		return s, ErrRejected
	}
	for _, b := range calc.Blocks(s.Buffer) {
		if b.Inside(c) {
			return s, ErrRejected
		}
	}
	if next, ok := at(rs, c); ok && !calc.IsOperator(next) {
		return s, ErrRejected
	}
	if c > 0 && !calc.IsOperator(rs[c-1]) {
		lit = append([]rune{'×'}, lit...)
	}
	return splice(rs, c, c, lit...), nil
}

// Backspace removes one logical unit before the caret. A chained block is
// one unit: with the caret at its end, or inside it, "=literal" goes at once.
func Backspace(s State) (State, error) {
	rs := []rune(s.Buffer)
	c := clamp(s.Caret, 0, len(rs))
	if c == 0 {
		return s, ErrRejected
	}
	for _, b := range calc.Blocks(s.Buffer) {
		if c == b.End || b.Inside(c) {
			return splice(rs, b.Eq, b.End), nil
		}
	}

	// dropping the × after a block would glue the next operand onto its
	// frozen literal
	if calc.IsOperator(rs[c-1]) {
		if _, ok := calc.BlockAt(s.Buffer, c-1); ok {
			if next, ok := at(rs, c); ok && (isDigit(next) || next == '.') {
				return s, ErrRejected
			}
		}
	}
	// a percent run left without its number goes with the last digit
	end := c
	if isDigit(rs[c-1]) || rs[c-1] == '.' {
		if c-2 < 0 || (!isDigit(rs[c-2]) && rs[c-2] != '.') {
			for end < len(rs) && rs[end] == '%' {
				end++
			}
		}
	}
	return splice(rs, c-1, end), nil
}

// Move shifts the caret by delta runes, jumping over frozen literals.
func Move(s State, delta int) State {
	rs := []rune(s.Buffer)
	c := clamp(s.Caret+delta, 0, len(rs))
	for _, b := range calc.Blocks(s.Buffer) {
		if !b.Inside(c) {
			continue
		}
		if delta < 0 {
			c = b.Eq
		} else {
			c = b.End
		}
	}
	return State{Buffer: s.Buffer, Caret: c}
}

// Place puts the caret at c, clamped, and moves it out of a frozen literal
// to the nearer edge.
func Place(s State, c int) State {
	rs := []rune(s.Buffer)
	c = clamp(c, 0, len(rs))
	for _, b := range calc.Blocks(s.Buffer) {
		if b.Inside(c) {
			if c-b.Eq < b.End-c {
				c = b.Eq
			} else {
				c = b.End
			}
		}
	}
	return State{Buffer: s.Buffer, Caret: c}
}

// afterValue reports whether the caret directly follows a finished operand
// (a percent or a frozen literal) that a new number must not extend.
func afterValue(buffer string, rs []rune, c int) bool {
	if c == 0 {
		return false
	}
	if rs[c-1] == '%' {
		return true
	}
	b, ok := calc.BlockAt(buffer, c)
	return ok && b.End > b.Eq+1
}

// segment returns the bounds of the number around c.
func segment(rs []rune, c int) (int, int) {
	start, end := c, c
	for start > 0 && !isDelim(rs[start-1]) {
		start--
	}
	for end < len(rs) && !isDelim(rs[end]) {
		end++
	}
	return start, end
}

func isDelim(r rune) bool {
	return calc.IsOperator(r) || r == '%' || r == '='
}

func isDigit(r rune) bool { return r < unicode.MaxASCII && unicode.IsDigit(r) }

func at(rs []rune, i int) (rune, bool) {
	if i < 0 || i >= len(rs) {
		return 0, false
	}
	return rs[i], true
}

// splice replaces rs[from:to] with ins and leaves the caret after ins.
func splice(rs []rune, from, to int, ins ...rune) State {
	out := make([]rune, 0, len(rs)-(to-from)+len(ins))
	out = append(out, rs[:from]...)
	out = append(out, ins...)
	out = append(out, rs[to:]...)
	return State{Buffer: string(out), Caret: from + len(ins)}
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
