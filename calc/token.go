// Package calc implements the flat billing arithmetic of the calculator:
// tokenizing the edit buffer, resolving percent tokens and folding the
// result strictly left to right.
package calc

import (
	"math"
	"strings"

	"github.com/maxBezel/billpad/numfmt"
)

// Kind discriminates the token union.
type Kind int

const (
	KindNumber   Kind = iota // digits, optional '.', optional exponent
	KindOperator             // + - × ÷
	KindPercent              // operand followed by one or more '%'
	KindEquals               // chained "=" boundary with its frozen literal
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "NUMBER"
	case KindOperator:
		return "OPERATOR"
	case KindPercent:
		return "PERCENT"
	case KindEquals:
		return "EQUALS"
	default:
		return "UNKNOWN"
	}
}

// Op is one of the four operator glyphs.
type Op rune

const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '×'
	Div Op = '÷'
)

// ParseOp maps an operator rune, including the ASCII aliases '*' and '/'.
func ParseOp(r rune) (Op, bool) {
	switch r {
	case '+':
		return Add, true
	case '-':
		return Sub, true
	case '×', '*':
		return Mul, true
	case '÷', '/':
		return Div, true
	}
	return 0, false
}

// IsOperator reports whether r splits operands in a canonical buffer.
func IsOperator(r rune) bool {
	switch r {
	case '+', '-', '×', '÷', '*', '/':
		return true
	}
	return false
}

// Token is a single lexical unit of the edit buffer.
type Token struct {
	Kind Kind

	// Raw is the number text, the percent magnitude or the frozen literal.
	Raw string

	Op       Op
	Implicit bool // × inserted between adjacent operands

	Depth    int // consecutive '%' on one operand
	Value    float64
	Resolved bool
}

func Number(raw string) Token { return Token{Kind: KindNumber, Raw: raw} }
func Operator(op Op) Token { return Token{Kind: KindOperator, Op: op} }
func Percent(raw string, d int) Token { return Token{Kind: KindPercent, Raw: raw, Depth: d} }
func Equals(literal string) Token { return Token{Kind: KindEquals, Raw: literal} }

func implicitMul() Token { return Token{Kind: KindOperator, Op: Mul, Implicit: true} }

// producesValue reports whether the token ends an operand.
func (t Token) producesValue() bool {
	return t.Kind == KindNumber || t.Kind == KindPercent || t.Kind == KindEquals
}

// Number returns the numeric value substituted for the token in the fold.
// An unresolved percent falls back to its plain scale.
func (t Token) Number() float64 {
	switch t.Kind {
	case KindNumber, KindEquals:
		return numfmt.Parse(t.Raw)
	case KindPercent:
		if t.Resolved {
			return t.Value
		}
		return scale(t)
	}
	return math.NaN()
}

func (t Token) String() string {
	switch t.Kind {
	case KindNumber:
		return t.Raw
	case KindOperator:
		return string(t.Op)
	case KindPercent:
		return t.Raw + strings.Repeat("%", t.Depth)
	case KindEquals:
		return "=" + t.Raw
	}
	return "?"
}

// Join renders tokens with single spaces, values substituted for percents.
func Join(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == KindPercent && t.Resolved {
			parts = append(parts, numfmt.Canonical(numfmt.Display(t.Value)))
			continue
		}
		parts = append(parts, t.String())
	}
	return strings.Join(parts, " ")
}
