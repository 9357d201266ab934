package shortcuts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/shortcuts"
)

func TestEval(t *testing.T) {
	set, err := shortcuts.Compile(map[string]string{
		"gst":     "value * 0.18",
		"half":    "total / 2",
		"settle":  "abs(total)",
		"rounded": "round(value)",
		"flat":    "100",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"flat", "gst", "half", "rounded", "settle"}, set.Names())

	env := shortcuts.Env{Total: -500, Value: 1000.6}
	tests := []struct {
		name string
		want float64
	}{
		{"gst", 180.108},
		{"half", -250},
		{"settle", 500},
		{"rounded", 1001},
		{"flat", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := set.Eval(tt.name, env)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvalUnknown(t *testing.T) {
	set, err := shortcuts.Compile(nil)
	require.NoError(t, err)
	_, err = set.Eval("nope", shortcuts.Env{})
	assert.ErrorIs(t, err, shortcuts.ErrUnknown)
}

func TestEvalNonFinite(t *testing.T) {
	set, err := shortcuts.Compile(map[string]string{"split": "total / value"})
	require.NoError(t, err)
	_, err = set.Eval("split", shortcuts.Env{Total: 10})
	assert.ErrorIs(t, err, calc.ErrNumeric)
}

func TestCompileRejectsBadDefinitions(t *testing.T) {
	_, err := shortcuts.Compile(map[string]string{
		"ok":      "total",
		"broken":  "total +",
		"unknown": "tip * 2",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shortcut broken")
	assert.Contains(t, err.Error(), "shortcut unknown")
	assert.NotContains(t, err.Error(), "shortcut ok")
}
