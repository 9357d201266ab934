package calc

import (
	"math"

	"github.com/maxBezel/billpad/numfmt"
)

// Evaluate folds tokens strictly left to right, without precedence, and
// cleans the result with the default formatter.
func Evaluate(tokens []Token) (float64, error) {
	return evaluate(numfmt.Default(), tokens)
}

func evaluate(f numfmt.Formatter, tokens []Token) (float64, error) {
	end := len(tokens)
	for end > 0 && tokens[end-1].Kind == KindOperator {
		end--
	}
	tokens = tokens[:end]
	if len(tokens) == 0 {
		return 0, nil
	}

	var (
		acc       float64
		pending   = Add
		expecting = true // next value token is an operand of pending
		started   bool
		divByZero bool
	)

	for _, t := range tokens {
		switch t.Kind {
		case KindOperator:
			// a leading + × ÷ has nothing to apply to; after two operators
			// in a row the later one wins
			if started || t.Op == Sub {
				pending = t.Op
			}
			expecting = true

		case KindEquals:
			// the accumulator carries through the boundary; a dangling
			// operator right before it is dropped
			if started {
				pending = Add
				expecting = false
			}

		default:
			if !expecting {
				pending = Mul
			}
			v := t.Number()
			if pending == Div && v == 0 {
				divByZero = true
			}
			acc = apply(acc, pending, v)
			expecting = false
			started = true
		}
	}

	switch {
	case divByZero:
		return 0, &NumericError{Reason: ReasonDivByZero}
	case math.IsNaN(acc):
		return 0, &NumericError{Reason: ReasonNaN}
	case math.IsInf(acc, 0):
		return 0, &NumericError{Reason: ReasonOverflow}
	}
	return f.Clean(acc), nil
}

func apply(acc float64, op Op, v float64) float64 {
	switch op {
	case Add:
		return acc + v
	case Sub:
		return acc - v
	case Mul:
		return acc * v
	case Div:
		return acc / v
	}
	return math.NaN()
}
