package calc

import (
	"strings"
)

// Exponent markers are swapped for private-use runes while splitting so
// "1.5e+20" stays one operand.
const (
	sentinelPlus  = '\uE000'
	sentinelMinus = '\uE001'
)

var (
	cosmetic = strings.NewReplacer(",", "", " ", "", "\t", "", "\u00a0", "")

	protectExp = strings.NewReplacer(
		"e+", "e"+string(sentinelPlus), "e-", "e"+string(sentinelMinus),
		"E+", "E"+string(sentinelPlus), "E-", "E"+string(sentinelMinus),
	)
	restoreExp = strings.NewReplacer(
		string(sentinelPlus), "+", string(sentinelMinus), "-",
	)
)

// StripCosmetic removes grouping separators and padding.
func StripCosmetic(s string) string { return cosmetic.Replace(s) }

// Tokenize splits a canonical or rendered buffer into tokens. A trailing
// operator is kept; the evaluator drops it.
func Tokenize(buffer string) []Token {
	rs := []rune(protectExp.Replace(StripCosmetic(buffer)))

	var (
		toks []Token
		num  []rune
	)
	flush := func() {
		if len(num) > 0 {
			toks = append(toks, Number(restoreExp.Replace(string(num))))
			num = num[:0]
		}
	}

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case IsOperator(r):
			flush()
			op, _ := ParseOp(r)
			toks = append(toks, Operator(op))

		case r == '%':
			depth := 1
			for i+1 < len(rs) && rs[i+1] == '%' {
				depth++
				i++
			}
			if len(num) == 0 {
				// stray percent with no operand
				continue
			}
			toks = append(toks, Percent(restoreExp.Replace(string(num)), depth))
			num = num[:0]

		case r == '=':
			flush()
			j := i + 1
			for j < len(rs) && !IsOperator(rs[j]) && rs[j] != '=' && rs[j] != '%' {
				j++
			}
			toks = append(toks, Equals(restoreExp.Replace(string(rs[i+1:j]))))
			i = j - 1

		default:
			num = append(num, r)
		}
	}
	flush()

	return insertImplicit(toks)
}

// insertImplicit puts a × between two operands with nothing between them,
// e.g. a percent result directly followed by a new number.
func insertImplicit(toks []Token) []Token {
	if len(toks) < 2 {
		return toks
	}
	out := make([]Token, 0, len(toks)+2)
	for i, t := range toks {
		if i > 0 && toks[i-1].producesValue() && (t.Kind == KindNumber || t.Kind == KindPercent) {
			out = append(out, implicitMul())
		}
		out = append(out, t)
	}
	return out
}
