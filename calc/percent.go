package calc

import (
	"math"

	"github.com/maxBezel/billpad/numfmt"
)

// GrandTotal reads the sum of previously committed rows.
type GrandTotal func() float64

// Resolve returns a copy of tokens with every percent given a value.
//
// A percent right before × or ÷ is a plain scale of what follows. A leading
// percent, or one right after a leading minus, is a share of the grand
// total. After a binary + or - it is a share of the subtotal before that
// operator. Anywhere else it is a plain scale. Stacked percents (50%%) are
// always a plain scale.
func Resolve(tokens []Token, total GrandTotal) []Token {
	return resolve(numfmt.Default(), tokens, total)
}

func resolve(f numfmt.Formatter, tokens []Token, total GrandTotal) []Token {
	out := make([]Token, len(tokens))
	copy(out, tokens)
	for i := range out {
		if out[i].Kind != KindPercent {
			continue
		}
		out[i].Value = f.Clean(percentValue(f, out, i, total))
		out[i].Resolved = true
	}
	return out
}

func percentValue(f numfmt.Formatter, toks []Token, i int, total GrandTotal) float64 {
	t := toks[i]
	ratio := numfmt.Parse(t.Raw) / 100

	if t.Depth > 1 || scalesNext(toks, i) {
		return scale(t)
	}

	switch {
	case i == 0 || (i == 1 && isOp(toks[0], Sub)):
		var g float64
		if total != nil {
			g = total()
		}
		if g == 0 || math.IsNaN(g) {
			return ratio
		}
		return math.Abs(g) * ratio

	case i >= 2 && (isOp(toks[i-1], Add) || isOp(toks[i-1], Sub)):
		sub, err := evaluate(f, toks[:i-1])
		if err != nil {
			return math.NaN()
		}
		return math.Abs(sub) * ratio
	}
	return ratio
}

// scale divides the magnitude by 100 once per stacked '%'.
func scale(t Token) float64 {
	depth := t.Depth
	if depth < 1 {
		depth = 1
	}
	return numfmt.Parse(t.Raw) * math.Pow(0.01, float64(depth))
}

func scalesNext(toks []Token, i int) bool {
	return i+1 < len(toks) && (isOp(toks[i+1], Mul) || isOp(toks[i+1], Div))
}

func isOp(t Token, op Op) bool {
	return t.Kind == KindOperator && t.Op == op
}
