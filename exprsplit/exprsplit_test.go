package exprsplit_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/maxBezel/billpad/exprsplit"
	"github.com/maxBezel/billpad/session"
)

func TestSplit_Table(t *testing.T) {
	tests := []struct {
		in   string
		expr string
		note string
	}{
		{"42", "42", ""},
		{"  42  ", "42", ""},
		{"12+5 lunch", "12+5", "lunch"},
		{"1,234.50 × 2 rent", "1,234.50 × 2", "rent"},
		{"12*3/4", "12*3/4", ""},
		{"   7÷8  \t  blah", "7÷8", "blah"},

		{"-3+4", "-3+4", ""},
		{"- 3 + 4 tail", "- 3 + 4", "tail"},
		{"−3 + 1", "−3 + 1", ""},
		{"5 ×-3", "5", "×-3"},

		{".5 + .25", ".5 + .25", ""},
		{"3..14 текст", "3.", ".14 текст"},
		{"1.2.3", "1.2", ".3"},
		{"1,", "1", ","},
		{"1,2,3 x", "1,2,3", "x"},

		{"10% off", "10%", "off"},
		{"200 + 10% tip", "200 + 10%", "tip"},
		{"50%%", "50%%", ""},
		{"10%5", "10%", "5"},
		{"10% × 5", "10% × 5", ""},

		{"5+ x", "5", "+ x"},
		{"7 7", "7", "7"},
		{"12 + 5 = 17", "12 + 5", "= 17"},
	}

	for _, tc := range tests {
		expr, note, err := exprsplit.Split(tc.in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.in, err)
		}
		if expr != tc.expr || note != tc.note {
			t.Fatalf("input %q:\n  got  expr=%q note=%q\n  want expr=%q note=%q",
				tc.in, expr, note, tc.expr, tc.note)
		}
	}
}

func TestSplit_NoExprError(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"foo bar",
		"+3",
		"-",
		"- x",
		"%5",
		"(1+2)",
	}
	for _, s := range bad {
		_, _, err := exprsplit.Split(s)
		if !errors.Is(err, exprsplit.ErrNoExpression) {
			t.Fatalf("expected ErrNoExpression for %q, got %v", s, err)
		}
	}
}

// typeable reports whether the keypad accepts expr key by key.
func typeable(expr string) error {
	s := session.New(nil, nil, session.DefaultOptions())
	_, err := s.Type(strings.ReplaceAll(expr, "−", "-"))
	return err
}

func FuzzSplit(f *testing.F) {
	seeds := []string{
		"", " ", "1", "1+2", "4+", "+5", "-6", "7*8  text",
		"3. .x", "10+5//hi", ".5 + .25 end", "1,234.5÷2",
		"50%%", "10%5", "10%-5", "10% - 5", "-.5%",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		expr, note, err := exprsplit.Split(s)
		if err != nil {
			return
		}
		if expr == "" {
			t.Fatalf("expr is empty but no error for input %q (note=%q)", s, note)
		}
		if !strings.HasPrefix(strings.TrimSpace(s), expr) {
			t.Fatalf("expr %q is not a prefix of %q", expr, s)
		}
		if err := typeable(expr); err != nil {
			t.Fatalf("keypad rejects %q from %q: %v", expr, s, err)
		}
	})
}

func BenchmarkSplit_Short(b *testing.B) {
	in := "1,250 + 18% lunch with the team"
	for i := 0; i < b.N; i++ {
		_, _, _ = exprsplit.Split(in)
	}
}

func BenchmarkSplit_Long(b *testing.B) {
	in := strings.Repeat("1+2×3-4÷5+50%% ", 200) + "tail"
	for i := 0; i < b.N; i++ {
		_, _, _ = exprsplit.Split(in)
	}
}
