package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/edit"
	"github.com/maxBezel/billpad/numfmt"
	"github.com/maxBezel/billpad/session"
)

type recorder struct {
	expressions []string
	results     []float64
	err         error
}

func (r *recorder) Commit(_ context.Context, expression string, result float64) error {
	if r.err != nil {
		return r.err
	}
	r.expressions = append(r.expressions, expression)
	r.results = append(r.results, result)
	return nil
}

func total(v float64) calc.GrandTotal { return func() float64 { return v } }

func newSession(t *testing.T, gt float64) (*session.Session, *recorder) {
	t.Helper()
	rec := &recorder{}
	return session.New(total(gt), rec, session.DefaultOptions()), rec
}

func typeKeys(t *testing.T, s *session.Session, keys string) session.View {
	t.Helper()
	v, err := s.Type(keys)
	require.NoError(t, err)
	return v
}

func TestPressRendersAndPreviews(t *testing.T) {
	s, _ := newSession(t, 0)

	v := typeKeys(t, s, "12+5")
	assert.Equal(t, "12 + 5", v.Text)
	assert.Equal(t, 6, v.Caret)
	assert.Equal(t, "17.00", v.Preview)
	assert.Equal(t, 17.0, v.Value)
	assert.NoError(t, v.Err)

	v = typeKeys(t, s, "=")
	assert.Equal(t, "12 + 5 = 17", v.Text)
	assert.Equal(t, 11, v.Caret)
	assert.Equal(t, "12+5=17", s.State().Buffer)

	v = typeKeys(t, s, "+3")
	assert.Equal(t, "12 + 5 = 17 + 3", v.Text)
	assert.Equal(t, "20.00", v.Preview)
}

func TestTypeGroupsAndSkipsCosmetics(t *testing.T) {
	s, _ := newSession(t, 0)
	v := typeKeys(t, s, "1,234 + 5")
	assert.Equal(t, "1,234 + 5", v.Text)
	assert.Equal(t, "1,239.00", v.Preview)
}

func TestRejectedKeyKeepsView(t *testing.T) {
	s, _ := newSession(t, 0)
	before := typeKeys(t, s, "12+")

	v, err := s.Press('+')
	assert.ErrorIs(t, err, edit.ErrRejected)
	assert.Equal(t, before, v)
	assert.Equal(t, "12+", s.State().Buffer)

	_, err = s.Type("×=")
	assert.ErrorIs(t, err, edit.ErrRejected)
	assert.Equal(t, "12×", s.State().Buffer)
}

func TestDivisionByZeroPreviewsError(t *testing.T) {
	s, rec := newSession(t, 0)
	v := typeKeys(t, s, "5÷0")
	assert.Equal(t, numfmt.ErrorText, v.Preview)
	assert.ErrorIs(t, v.Err, calc.ErrNumeric)

	_, err := s.Enter(context.Background())
	assert.ErrorIs(t, err, calc.ErrNumeric)
	assert.Empty(t, rec.expressions)
	assert.Equal(t, "5÷0", s.State().Buffer)
}

func TestEnterCommitsAndResets(t *testing.T) {
	s, rec := newSession(t, 0)
	typeKeys(t, s, "12+5")

	e, err := s.Enter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, session.Entry{Expression: "12 + 5", Result: 17, Display: "17.00"}, e)
	assert.Equal(t, []string{"12 + 5"}, rec.expressions)
	assert.Equal(t, []float64{17}, rec.results)

	assert.True(t, s.State().Empty())
	assert.Equal(t, session.View{}, s.View())
}

func TestEnterRefusesEmptyLine(t *testing.T) {
	s, _ := newSession(t, 0)
	_, err := s.Enter(context.Background())
	assert.ErrorIs(t, err, session.ErrEmpty)
}

func TestEnterKeepsLineWhenSinkFails(t *testing.T) {
	s, rec := newSession(t, 0)
	rec.err = errors.New("disk full")
	typeKeys(t, s, "7")

	_, err := s.Enter(context.Background())
	assert.ErrorIs(t, err, rec.err)
	assert.Equal(t, "7", s.State().Buffer)
}

func TestQuickDiscount(t *testing.T) {
	tests := []struct {
		name   string
		gt     float64
		keys   string
		buffer string
		value  float64
	}{
		{"appends grand total", 500, "10%", "10%×500", 50},
		{"leading minus", 500, "-10%", "-10%×500", -50},
		{"negative total uses magnitude", -500, "10%", "10%×500", 50},
		{"zero total", 0, "10%", "10%", 0.1},
		{"not a lone percent", 500, "200+10%", "200+10%", 220},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t, tt.gt)
			v := typeKeys(t, s, tt.keys)
			assert.Equal(t, tt.buffer, s.State().Buffer)
			assert.InDelta(t, tt.value, v.Value, 1e-9)
		})
	}
}

func TestQuickDiscountDisabled(t *testing.T) {
	opts := session.DefaultOptions()
	opts.QuickDiscount = false
	s := session.New(total(500), nil, opts)

	v := typeKeys(t, s, "10%")
	assert.Equal(t, "10%", s.State().Buffer)
	assert.InDelta(t, 50, v.Value, 1e-9)
}

func TestTapSnapsCaret(t *testing.T) {
	s, _ := newSession(t, 0)
	typeKeys(t, s, "12+5")

	v := s.Tap(3)
	assert.Equal(t, 4, v.Caret)
	assert.Equal(t, 3, s.State().Caret)

	s.Tap(6)
	typeKeys(t, s, "=")
	v = s.Tap(7)
	assert.Equal(t, 6, v.Caret)
	assert.Equal(t, 4, s.State().Caret)
}

func TestEditingBeforeChainRecomputes(t *testing.T) {
	s, _ := newSession(t, 0)
	typeKeys(t, s, "12+5=")
	s.Tap(6)

	v := typeKeys(t, s, "0")
	assert.Equal(t, "12 + 50 = 62", v.Text)
	assert.Equal(t, 7, v.Caret)
}

func TestBackspaceRemovesChainedBlock(t *testing.T) {
	s, _ := newSession(t, 0)
	typeKeys(t, s, "12+5=")

	v, err := s.Backspace()
	require.NoError(t, err)
	assert.Equal(t, "12 + 5", v.Text)

	s.Clear()
	_, err = s.Backspace()
	assert.ErrorIs(t, err, edit.ErrRejected)
}

func TestInsertOperand(t *testing.T) {
	s, _ := newSession(t, 0)
	typeKeys(t, s, "12+")

	v, err := s.InsertOperand(18)
	require.NoError(t, err)
	assert.Equal(t, "12 + 18", v.Text)
	assert.Equal(t, 30.0, v.Value)

	_, err = s.InsertOperand(-3)
	require.NoError(t, err)
	assert.Equal(t, "12+18×−3", s.State().Buffer)
}

func TestMove(t *testing.T) {
	s, _ := newSession(t, 0)
	typeKeys(t, s, "12+5=")
	v := s.Move(-1)
	assert.Equal(t, 4, s.State().Caret)
	assert.Equal(t, 6, v.Caret)
}

func TestFlushRunsPendingCheck(t *testing.T) {
	s, _ := newSession(t, 0)
	typeKeys(t, s, "1")
	assert.True(t, s.Flush())
	assert.False(t, s.Flush())

	typeKeys(t, s, "2")
	s.Clear()
	assert.False(t, s.Flush())
}

func TestResultText(t *testing.T) {
	f := numfmt.Default()
	assert.Equal(t, "17.00", session.ResultText(f, 17))
	assert.Equal(t, "−1,234.50", session.ResultText(f, -1234.5))
	assert.Equal(t, "1.23456789e+14", session.ResultText(f, 123456789012345.67))
}
