// Package session drives one calculator line: every keystroke runs the
// validator, refreshes chained results, evaluates a preview and re-renders
// the line with the caret placed in it.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/maxBezel/billpad/calc"
	"github.com/maxBezel/billpad/caret"
	"github.com/maxBezel/billpad/edit"
	"github.com/maxBezel/billpad/numfmt"
)

var ErrEmpty = errors.New("nothing to commit")

// MaxResultRunes is the longest billing text a committed result is shown
// with before it switches to scientific notation.
const MaxResultRunes = 18

// CommitSink stores a finished line.
type CommitSink interface {
	Commit(ctx context.Context, expression string, result float64) error
}

// CommitFunc adapts a function to CommitSink.
type CommitFunc func(ctx context.Context, expression string, result float64) error

func (f CommitFunc) Commit(ctx context.Context, expression string, result float64) error {
	return f(ctx, expression, result)
}

type Options struct {
	Format        numfmt.Formatter
	QuickDiscount bool
	Logger        zerolog.Logger
}

func DefaultOptions() Options {
	return Options{Format: numfmt.Default(), QuickDiscount: true, Logger: zerolog.Nop()}
}

// View is what the front-end shows after a keystroke.
type View struct {
	Text    string // rendered line
	Caret   int    // caret offset in Text, in runes
	Preview string // billing text of the running value, empty for an empty line
	Value   float64
	Err     error
}

// Entry is a committed line.
type Entry struct {
	Expression string
	Result     float64
	Display    string
}

type Session struct {
	state    edit.State
	calc     calc.Calculator
	render   caret.Renderer
	total    calc.GrandTotal
	sink     CommitSink
	log      zerolog.Logger
	discount bool

	view     View
	enforcer *caret.Enforcer
	deferred caret.Deferred
}

func New(total calc.GrandTotal, sink CommitSink, opts Options) *Session {
	if total == nil {
		total = func() float64 { return 0 }
	}
	s := &Session{
		calc:     calc.New(opts.Format, total),
		render:   caret.NewRenderer(opts.Format),
		total:    total,
		sink:     sink,
		log:      opts.Logger,
		discount: opts.QuickDiscount,
	}
	s.enforcer = caret.NewEnforcer(func(offset int) { s.view.Caret = offset })
	s.update(edit.State{})
	return s
}

func (s *Session) State() edit.State { return s.state }

func (s *Session) View() View { return s.view }

// Press applies one key. A rejected key leaves the line as it was and
// returns an error matching edit.ErrRejected.
func (s *Session) Press(r rune) (View, error) {
	next, err := edit.Insert(s.state, r)
	if err != nil {
		s.log.Debug().Str("buffer", s.state.Buffer).Int("caret", s.state.Caret).
			Str("key", string(r)).Msg("key rejected")
		return s.view, fmt.Errorf("key %q: %w", r, err)
	}
	if r == '%' && s.discount {
		next = s.quickDiscount(next)
	}
	return s.update(next), nil
}

// Type feeds text key by key, skipping separators and whitespace. It stops
// at the first rejected key.
func (s *Session) Type(text string) (View, error) {
	for _, r := range text {
		if r == numfmt.GroupSep || unicode.IsSpace(r) {
			continue
		}
		if _, err := s.Press(r); err != nil {
			return s.view, err
		}
	}
	return s.view, nil
}

func (s *Session) Backspace() (View, error) {
	next, err := edit.Backspace(s.state)
	if err != nil {
		return s.view, err
	}
	return s.update(next), nil
}

func (s *Session) Clear() View { return s.update(edit.Clear()) }

func (s *Session) Move(delta int) View { return s.update(edit.Move(s.state, delta)) }

// Tap places the caret where the user touched the rendered line.
func (s *Session) Tap(offset int) View {
	s.view.Caret = offset
	s.enforcer.Enforce(s.view.Text, offset)
	logical := caret.ToLogical(s.view.Text, s.view.Caret)
	return s.update(edit.Place(s.state, logical))
}

// InsertOperand puts a computed value at the caret as a number literal.
func (s *Session) InsertOperand(v float64) (View, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s.view, &calc.NumericError{Reason: calc.ReasonNaN}
	}
	next, err := edit.InsertOperand(s.state, numfmt.Canonical(s.calc.Format.Display(s.calc.Format.Clean(v))))
	if err != nil {
		return s.view, err
	}
	return s.update(next), nil
}

// Enter commits the line to the sink and starts a new one. An empty line or
// one whose value is an error is refused.
func (s *Session) Enter(ctx context.Context) (Entry, error) {
	if s.state.Empty() {
		return Entry{}, ErrEmpty
	}
	if s.view.Err != nil {
		return Entry{}, s.view.Err
	}
	e := Entry{
		Expression: s.view.Text,
		Result:     s.view.Value,
		Display:    ResultText(s.calc.Format, s.view.Value),
	}
	if s.sink != nil {
		if err := s.sink.Commit(ctx, e.Expression, e.Result); err != nil {
			return Entry{}, fmt.Errorf("commit: %w", err)
		}
	}
	s.log.Info().Str("expression", e.Expression).Float64("result", e.Result).Msg("line committed")
	if s.log.GetLevel() <= zerolog.DebugLevel {
		_, toks, _ := s.calc.Compute(s.state.Buffer)
		s.log.Debug().Str("tokens", calc.Join(toks)).Msg("committed tokens")
	}
	s.update(edit.State{})
	return e, nil
}

// Flush runs the pending caret re-check, if one is scheduled.
func (s *Session) Flush() bool { return s.deferred.Flush() }

func (s *Session) update(next edit.State) View {
	buffer, c := s.calc.Refresh(next.Buffer, next.Caret)
	s.state = edit.Place(edit.State{Buffer: buffer}, c)

	p := s.render.RenderAndRelocate(s.state.Buffer, s.state.Caret)
	v := View{Text: p.Text, Caret: p.Caret}
	if !s.state.Empty() {
		v.Value, _, v.Err = s.calc.Compute(s.state.Buffer)
		if v.Err != nil {
			v.Preview = numfmt.ErrorText
		} else {
			v.Preview = s.calc.Format.Billing(v.Value)
		}
	}
	s.view = v

	// an empty line has no caret to re-check
	if s.state.Empty() {
		s.deferred.Cancel()
		return s.view
	}
	s.deferred.Schedule(func() {
		s.enforcer.Enforce(s.view.Text, s.view.Caret)
	})
	return s.view
}

var loneDiscount = regexp.MustCompile(`^-?[0-9]+(\.[0-9]*)?%$`)

// quickDiscount turns a lone "N%" into "N%×total" so the line shows the
// base the percentage is taken from.
func (s *Session) quickDiscount(st edit.State) edit.State {
	if !loneDiscount.MatchString(st.Buffer) {
		return st
	}
	gt := s.total()
	if gt == 0 || math.IsNaN(gt) || math.IsInf(gt, 0) {
		return st
	}
	lit := numfmt.Canonical(s.calc.Format.Display(math.Abs(gt)))
	next, err := edit.InsertOperand(st, lit)
	if err != nil {
		return st
	}
	return next
}

// ResultText is the committed form of a value: two decimals, or scientific
// notation when that text would exceed MaxResultRunes.
func ResultText(f numfmt.Formatter, v float64) string {
	b := f.Billing(v)
	if utf8.RuneCountInString(b) > MaxResultRunes {
		return f.Scientific(v)
	}
	return b
}
