// Package numfmt renders calculator values for display and reads them back.
//
// Display strings group the integer part (Indian 3-2-2 grouping by default)
// and use U+2212 as the negative sign so a negative value is never confused
// with the subtraction operator. Magnitudes at or above MaxPlainMagnitude
// degrade to scientific notation with a fixed mantissa.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	// Minus is the negative sign glyph used in display strings.
	Minus = '−'
	// GroupSep separates digit groups in display strings.
	GroupSep = ','
	// ErrorText is shown instead of a value that could not be computed.
	ErrorText = "Error"

	// float64 carries no fractional digits worth rounding above this.
	cleanLimit = 1e15
)

type Grouping int

const (
	// Indian groups the last three digits, then pairs: 12,34,567.
	Indian Grouping = iota
	// Western groups in threes: 1,234,567.
	Western
)

func (g Grouping) String() string {
	switch g {
	case Indian:
		return "indian"
	case Western:
		return "western"
	default:
		return "unknown"
	}
}

func ParseGrouping(s string) (Grouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "indian", "in":
		return Indian, nil
	case "western", "intl", "en":
		return Western, nil
	}
	return Indian, fmt.Errorf("unknown grouping %q", s)
}

// Formatter holds the magnitude and precision constants of the calculator.
type Formatter struct {
	Grouping          Grouping
	MaxPlainMagnitude float64
	MantissaDigits    int
	RoundingDigits    int
}

func Default() Formatter {
	return Formatter{
		Grouping:          Indian,
		MaxPlainMagnitude: 1e15,
		MantissaDigits:    8,
		RoundingDigits:    12,
	}
}

// Display renders v with the shortest exact decimal, grouped.
func (f Formatter) Display(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorText
	}
	if f.needsScientific(v) {
		return f.Scientific(v)
	}
	return f.Group(strconv.FormatFloat(v, 'f', -1, 64))
}

// Billing renders v with exactly two decimals, grouped.
func (f Formatter) Billing(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorText
	}
	if math.Abs(v) >= f.MaxPlainMagnitude {
		return f.Scientific(v)
	}
	if math.Abs(v) < 0.005 {
		v = 0
	}
	return f.Group(strconv.FormatFloat(v, 'f', 2, 64))
}

func (f Formatter) needsScientific(v float64) bool {
	a := math.Abs(v)
	if a >= f.MaxPlainMagnitude {
		return true
	}
	return a != 0 && a < math.Pow10(-f.RoundingDigits)
}

// Scientific renders v with MantissaDigits digits after the point and the
// display minus sign.
func (f Formatter) Scientific(v float64) string {
	s := strconv.FormatFloat(math.Abs(v), 'e', f.MantissaDigits, 64)
	if v < 0 {
		return string(Minus) + s
	}
	return s
}

// Group inserts group separators into a plain decimal string. The sign may
// be ASCII '-' or Minus and is always written back as Minus. Strings with an
// exponent are returned with only the sign normalized.
func (f Formatter) Group(s string) string {
	sign, body := splitSign(s)
	if strings.ContainsAny(body, "eE") {
		return sign + body
	}

	intPart, frac, hasDot := strings.Cut(body, ".")
	intPart = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, intPart)

	var b strings.Builder
	b.WriteString(sign)
	switch f.Grouping {
	case Western:
		b.WriteString(insertSep(intPart, 3, 3))
	default:
		b.WriteString(insertSep(intPart, 3, 2))
	}
	if hasDot {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func splitSign(s string) (string, string) {
	switch {
	case strings.HasPrefix(s, "-"):
		return string(Minus), s[1:]
	case strings.HasPrefix(s, string(Minus)):
		return string(Minus), s[len(string(Minus)):]
	}
	return "", s
}

// insertSep groups a digits-only string: the rightmost group has first
// digits, every group to its left has rest digits.
func insertSep(s string, first, rest int) string {
	n := len(s)
	if n <= first {
		return s
	}
	head, tail := s[:n-first], s[n-first:]
	lead := len(head) % rest
	if lead == 0 {
		lead = rest
	}

	var b strings.Builder
	b.Grow(n + n/rest + 1)
	b.WriteString(head[:lead])
	for i := lead; i < len(head); i += rest {
		b.WriteRune(GroupSep)
		b.WriteString(head[i : i+rest])
	}
	b.WriteRune(GroupSep)
	b.WriteString(tail)
	return b.String()
}

// Canonical strips separators and whitespace, keeping digits, signs, the
// decimal point and exponent markers.
func Canonical(display string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '+', r == Minus, r == 'e', r == 'E':
			return r
		}
		return -1
	}, display)
}

// Parse reads a canonical or display string. An empty operand reads as 0;
// anything unparseable reads as NaN.
func Parse(s string) float64 {
	c := strings.ReplaceAll(Canonical(s), string(Minus), "-")
	switch c {
	case "", ".", "-", "-.":
		return 0
	}
	v, err := strconv.ParseFloat(c, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Clean rounds away float noise below RoundingDigits decimals.
func (f Formatter) Clean(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if math.IsInf(v, 0) || math.Abs(v) >= cleanLimit {
		return v
	}
	p := math.Pow10(f.RoundingDigits)
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

var std = Default()

func Display(v float64) string { return std.Display(v) }
func Billing(v float64) string { return std.Billing(v) }
func Group(s string) string { return std.Group(s) }
func Clean(v float64) float64 { return std.Clean(v) }
