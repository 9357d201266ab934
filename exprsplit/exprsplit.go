package exprsplit

import (
	"errors"
	"strings"
	"unicode"
)

/*
Split
-----
Typed calculator input is a billing expression followed by a free-text
note: "1,250 + 18% lunch with team".

The scanner walks left to right with two states:
  - expectOperand: a number, or a leading '-' before anything was read;
  - expectOperator: + - × ÷ (or * /), or '%' which stays in this state.

Numbers are digits with at most one '.', a '.' needs a digit on one side,
and ',' is allowed between digits as a group separator. Spaces between
tokens are skipped. Every time the scanner is in expectOperator the end
of the last token is remembered; the first character that does not fit
ends the expression and everything after the last good end is the note.

There are no parentheses, no exponents and no '=': chained results are
typed on the keypad, not in text.
*/

var ErrNoExpression = errors.New("no valid expression found")

type state int

const (
	expectOperand state = iota
	expectOperator
)

type scanner struct {
	r []rune
	n int
	i int
}

func newScanner(s string) *scanner { rr := []rune(s); return &scanner{r: rr, n: len(rr)} }
func (s *scanner) eof() bool       { return s.i >= s.n }
func (s *scanner) cur() rune {
	if s.eof() {
		return 0
	}
	return s.r[s.i]
}
func (s *scanner) advance() { s.i++ }
func (s *scanner) skipSpaces() {
	for !s.eof() && unicode.IsSpace(s.r[s.i]) {
		s.i++
	}
}
func (s *scanner) digitAt(j int) bool { return j >= 0 && j < s.n && isDigit(s.r[j]) }

func (s *scanner) scanNumber() bool {
	start := s.i
	seenDigit := false
	seenDot := false

	for !s.eof() {
		rc := s.r[s.i]
		switch {
		case isDigit(rc):
			seenDigit = true
			s.i++
		case rc == '.':
			if seenDot || (!s.digitAt(s.i-1) && !s.digitAt(s.i+1)) {
				goto done
			}
			seenDot = true
			s.i++
		case rc == ',':
			if seenDot || !s.digitAt(s.i-1) || !s.digitAt(s.i+1) {
				goto done
			}
			s.i++
		default:
			goto done
		}
	}

done:
	if !seenDigit {
		s.i = start
		return false
	}
	return true
}

func (s *scanner) startsOperand(j int) bool {
	if j >= s.n {
		return false
	}
	r := s.r[j]
	return isDigit(r) || (r == '.' && s.digitAt(j+1))
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isOperator(r rune) bool {
	switch r {
	case '+', '-', '×', '÷', '*', '/':
		return true
	}
	return false
}

func isMinus(r rune) bool { return r == '-' || r == '−' }

// Split returns the leading billing expression of text and the note after
// it, both trimmed.
func Split(text string) (string, string, error) {
	sc := newScanner(text)
	st := expectOperand
	lastGood := -1

	markGood := func() {
		if st == expectOperator {
			lastGood = sc.i
		}
	}

	sc.skipSpaces()
	leading := true

scan:
	for !sc.eof() {
		r := sc.cur()

		if st == expectOperand {
			if leading && isMinus(r) {
				sc.advance()
				sc.skipSpaces()
				if !sc.startsOperand(sc.i) {
					break scan
				}
				leading = false
				continue
			}
			leading = false

			if !sc.scanNumber() {
				break scan
			}
			st = expectOperator
			markGood()
			sc.skipSpaces()
			if sc.startsOperand(sc.i) {
				break scan
			}
			continue
		}

		switch {
		case r == '%':
			sc.advance()
			markGood()
			sc.skipSpaces()
		case isOperator(r):
			sc.advance()
			st = expectOperand
			sc.skipSpaces()
		default:
			break scan
		}
	}

	if lastGood < 0 {
		return "", "", ErrNoExpression
	}

	rs := []rune(text)
	return strings.TrimSpace(string(rs[:lastGood])), strings.TrimSpace(string(rs[lastGood:])), nil
}
