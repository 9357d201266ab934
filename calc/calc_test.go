package calc_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/numfmt"
)

func fixedTotal(v float64) calc.GrandTotal {
	return func() float64 { return v }
}

func run(t *testing.T, buffer string, total float64) (float64, error) {
	t.Helper()
	return calc.Evaluate(calc.Resolve(calc.Tokenize(buffer), fixedTotal(total)))
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"12", "12"},
		{"12+5", "12 + 5"},
		{"1,23,456 × 2", "123456 × 2"},
		{"-10%", "- 10%"},
		{"50%%+1", "50%% + 1"},
		{"10%5", "10% × 5"},
		{"200÷", "200 ÷"},
		{"1.5e+20-3", "1.5e+20 - 3"},
		{"2e-3×4", "2e-3 × 4"},
		{"12+5=17+3", "12 + 5 =17 + 3"},
		{"12+5=17×3", "12 + 5 =17 × 3"},
		{"6*7/2", "6 × 7 ÷ 2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, calc.Join(calc.Tokenize(tt.in)))
		})
	}
}

func TestTokenizeKinds(t *testing.T) {
	toks := calc.Tokenize("7%%3")
	require.Len(t, toks, 3)
	assert.Equal(t, calc.KindPercent, toks[0].Kind)
	assert.Equal(t, 2, toks[0].Depth)
	assert.Equal(t, "7", toks[0].Raw)
	assert.True(t, toks[1].Implicit)
	assert.Equal(t, calc.KindNumber, toks[2].Kind)

	toks = calc.Tokenize("5=5")
	require.Len(t, toks, 2)
	assert.Equal(t, calc.KindEquals, toks[1].Kind)
	assert.Equal(t, "5", toks[1].Raw)
}

func TestPercentRules(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		total float64
		want  float64
	}{
		{"rule1 leading minus", "-10%", 500, -50},
		{"rule1 leading", "10%", 500, 50},
		{"rule1 negative total uses magnitude", "10%", -500, 50},
		{"rule1 zero total scales", "10%", 0, 0.1},
		{"rule2 add", "200+10%", 0, 220},
		{"rule2 sub", "200-10%", 0, 180},
		{"rule2 ignores grand total", "200+10%", 9999, 220},
		{"rule2 negative subtotal uses magnitude", "-200+10%", 0, -180},
		{"rule3 multiply", "200×10%", 0, 20},
		{"rule3 divide", "200÷50%", 0, 400},
		{"stacked scale", "200×50%%", 0, 1},
		{"stacked is never billing", "50%%", 1000, 0.005},
		{"implicit base", "10%500", 1234, 50},
		{"scales what follows", "10%×5", 500, 0.5},
		{"scales divisor", "-50%÷2", 500, -0.25},
		{"rule2 after chain", "12+5=17-10%", 0, 15.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.in, tt.total)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestResolveMarksEveryPercent(t *testing.T) {
	toks := calc.Resolve(calc.Tokenize("10%+20%×5%"), fixedTotal(100))
	for _, tok := range toks {
		if tok.Kind == calc.KindPercent {
			assert.True(t, tok.Resolved, tok.String())
		}
	}
	// grand total share, scale of what follows, scale after ×
	assert.InDelta(t, 10, toks[0].Value, 1e-12)
	assert.InDelta(t, 0.2, toks[2].Value, 1e-12)
	assert.InDelta(t, 0.05, toks[4].Value, 1e-12)
}

func TestResolveSubtotalShare(t *testing.T) {
	toks := calc.Resolve(calc.Tokenize("10%+20%-5%"), fixedTotal(100))
	assert.InDelta(t, 10, toks[0].Value, 1e-12)
	assert.InDelta(t, 2, toks[2].Value, 1e-12)
	assert.InDelta(t, 0.6, toks[4].Value, 1e-12)
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	toks := calc.Tokenize("10%")
	_ = calc.Resolve(toks, fixedTotal(10))
	assert.False(t, toks[0].Resolved)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"7", 7},
		{"2+3×4", 20},
		{"10-2-3", 5},
		{"100÷8", 12.5},
		{"12+", 12},
		{"12+5×", 17},
		{"-5", -5},
		{"-5-5", -10},
		{"0.1+0.2", 0.3},
		{"12+5=17+3", 20},
		{"12+=12", 12},
		{"1.5e+20×2", 3e20},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := run(t, tt.in, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateNumericErrors(t *testing.T) {
	tests := []struct {
		in     string
		reason string
	}{
		{"5÷0", calc.ReasonDivByZero},
		{"0÷0", calc.ReasonDivByZero},
		{"5÷0+1", calc.ReasonDivByZero},
		{"1e+300×1e+300", calc.ReasonOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := run(t, tt.in, 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, calc.ErrNumeric))
			var ne *calc.NumericError
			require.True(t, errors.As(err, &ne))
			assert.Equal(t, tt.reason, ne.Reason)
			assert.Equal(t, 0.0, got)
		})
	}
}

func TestBlocks(t *testing.T) {
	assert.Empty(t, calc.Blocks("12+5"))
	assert.Equal(t, []calc.Block{{Eq: 4, End: 7}}, calc.Blocks("12+5=17"))
	assert.Equal(t, []calc.Block{{Eq: 4, End: 7}, {Eq: 9, End: 12}}, calc.Blocks("12+5=17+3=20"))
	assert.Equal(t, []calc.Block{{Eq: 1, End: 16}}, calc.Blocks("5=1.00000000e+20×2"))

	b := calc.Blocks("12+5=17")[0]
	assert.False(t, b.Inside(4))
	assert.True(t, b.Inside(5))
	assert.True(t, b.Inside(6))
	assert.False(t, b.Inside(7))
}

func TestRefresh(t *testing.T) {
	c := calc.New(numfmt.Default(), fixedTotal(0))

	tests := []struct {
		name      string
		buf       string
		caret     int
		wantBuf   string
		wantCaret int
	}{
		{"fills fresh equals", "12+5=", 5, "12+5=17", 7},
		{"upstream edit", "12+50=17+3", 2, "12+50=62+3", 2},
		{"caret after shifts", "12+50=17+3", 10, "12+50=62+3", 10},
		{"caret after grows", "99+1=1+3", 8, "99+1=100+3", 10},
		{"caret inside moves to end", "12+5=99", 6, "12+5=17", 7},
		{"two blocks", "1+1=9+1=9", 9, "1+1=2+1=3", 9},
		{"error literal", "5÷0=", 4, "5÷0=Error", 9},
		{"negative uses minus glyph", "2-5=", 4, "2-5=−3", 6},
		{"no blocks", "12+5", 4, "12+5", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, caret := c.Refresh(tt.buf, tt.caret)
			assert.Equal(t, tt.wantBuf, buf)
			assert.Equal(t, tt.wantCaret, caret)
		})
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	c := calc.New(numfmt.Default(), fixedTotal(250))
	buf, caret := c.Refresh("10%+5=0×2=0", 11)
	again, caret2 := c.Refresh(buf, caret)
	assert.Equal(t, buf, again)
	assert.Equal(t, caret, caret2)
}

func FuzzPipeline(f *testing.F) {
	for _, s := range []string{"", "-", "%", "=", "12+5=17", "10%%%", "÷÷", "1e+", ".%.", "-10%5=×"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		c := calc.New(numfmt.Default(), fixedTotal(42))
		v, _, err := c.Compute(s)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			t.Fatalf("non-finite result without error for %q: %v", s, v)
		}
		buf, _ := c.Refresh(s, len([]rune(s)))
		if strings.Count(buf, "=") != strings.Count(s, "=") {
			t.Fatalf("refresh changed block count: %q -> %q", s, buf)
		}
	})
}

func BenchmarkCompute(b *testing.B) {
	c := calc.New(numfmt.Default(), fixedTotal(1000))
	in := strings.Repeat("1,234.5+10%×3-", 50) + "7"
	for i := 0; i < b.N; i++ {
		_, _, _ = c.Compute(in)
	}
}
