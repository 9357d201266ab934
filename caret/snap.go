package caret

import (
	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/numfmt"
)

type RegionKind int

const (
	RegionSeparator RegionKind = iota // a single group separator
	RegionPadding                     // an operator with its padding spaces
	RegionFrozen                      // " = literal" of a chained result
)

// Region is an atomic span [Start, End) of rendered text.
type Region struct {
	Kind  RegionKind
	Start int
	End   int
}

// Contains reports whether offset sits strictly inside the region.
func (r Region) Contains(offset int) bool { return offset > r.Start && offset < r.End }

// ghost runes are padding and operator glyphs the caret slides over.
func isGhost(c rune) bool { return c == ' ' || calc.IsOperator(c) }

// Regions lists every atomic region of a rendered line, left to right.
func Regions(text string) []Region {
	rs := []rune(text)
	var out []Region
	for i := 0; i < len(rs); i++ {
		switch {
		case rs[i] == '=':
			start, end := frozenBounds(rs, i)
			out = append(out, Region{Kind: RegionFrozen, Start: start, End: end})
			i = end - 1
		case rs[i] == numfmt.GroupSep:
			out = append(out, Region{Kind: RegionSeparator, Start: i, End: i + 1})
		case isGhost(rs[i]) && !isExponentSign(rs, i):
			j := i
			for j < len(rs) && isGhost(rs[j]) {
				j++
			}
			if j < len(rs) && rs[j] == '=' {
				// padding before '=' belongs to the frozen block
				i = j - 1
				continue
			}
			out = append(out, Region{Kind: RegionPadding, Start: i, End: j})
			i = j - 1
		}
	}
	return out
}

// frozenBounds spans the space before '=', the '=', its padding and the
// literal up to the next space.
func frozenBounds(rs []rune, eq int) (int, int) {
	start := eq
	if start > 0 && rs[start-1] == ' ' {
		start--
	}
	end := eq + 1
	for end < len(rs) && rs[end] == ' ' {
		end++
	}
	for end < len(rs) && rs[end] != ' ' {
		end++
	}
	return start, end
}

// Snap moves a rendered offset out of atomic regions:
//   - inside a frozen block it goes to the nearer edge, ties to the right;
//   - right after a group separator it steps left of it;
//   - touching a run of ghost runes it goes to the run's start when that is
//     strictly nearer than the inner edge, and to the inner edge otherwise.
//
// Snap is idempotent.
func Snap(text string, offset int) int {
	rs := []rune(text)
	off := clamp(offset, 0, len(rs))

	for _, reg := range Regions(text) {
		if reg.Kind == RegionFrozen && reg.Contains(off) {
			if off-reg.Start < reg.End-off {
				return reg.Start
			}
			return reg.End
		}
	}

	if off > 0 && rs[off-1] == numfmt.GroupSep {
		return off - 1
	}

	before := off > 0 && isGhost(rs[off-1]) && !isExponentSign(rs, off-1)
	after := off < len(rs) && isGhost(rs[off]) && !isExponentSign(rs, off)
	if !before && !after {
		return off
	}

	start, end := off, off
	for start > 0 && isGhost(rs[start-1]) {
		start--
	}
	for end < len(rs) && isGhost(rs[end]) {
		end++
	}
	inner := end
	for inner > start && rs[inner-1] == ' ' {
		inner--
	}

	if abs(off-start) < abs(off-inner) {
		return start
	}
	return inner
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
