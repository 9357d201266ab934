// Package shortcuts evaluates named quick expressions from the config,
// such as "gst: value * 0.18", whose result is inserted as an operand.
//
// Expressions see the grand total as total and the running line value as
// value. abs, round and the other expr builtins are available.
package shortcuts

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/maxBezel/billpad/calc"
)

var ErrUnknown = errors.New("unknown shortcut")

// Env is what a shortcut expression can read.
type Env struct {
	Total float64 `expr:"total"`
	Value float64 `expr:"value"`
}

type Shortcut struct {
	Name   string
	Source string
	prog   *vm.Program
}

type Set struct {
	m map[string]Shortcut
}

// Compile checks every definition up front so a typo fails at startup, not
// on the first tap.
func Compile(defs map[string]string) (*Set, error) {
	s := &Set{m: make(map[string]Shortcut, len(defs))}
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(defs)) {
		src := defs[name]
		prog, err := expr.Compile(src, expr.Env(Env{}), expr.AsFloat64())
		if err != nil {
			errs = append(errs, fmt.Errorf("shortcut %s: %w", name, err))
			continue
		}
		s.m[name] = Shortcut{Name: name, Source: src, prog: prog}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.m))
}

func (s *Set) Get(name string) (Shortcut, bool) {
	if s == nil {
		return Shortcut{}, false
	}
	sc, ok := s.m[name]
	return sc, ok
}

// Eval runs the named shortcut. A NaN or infinite result is a
// *calc.NumericError.
func (s *Set) Eval(name string, env Env) (float64, error) {
	sc, ok := s.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	out, err := expr.Run(sc.prog, env)
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", name, err)
	}
	v, ok := out.(float64)
	if !ok {
		return 0, fmt.Errorf("run %s: result is %T", name, out)
	}
	switch {
	case math.IsNaN(v):
		return 0, &calc.NumericError{Reason: calc.ReasonNaN}
	case math.IsInf(v, 0):
		return 0, &calc.NumericError{Reason: calc.ReasonOverflow}
	}
	return v, nil
}
