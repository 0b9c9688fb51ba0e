package equation

import (
	"fmt"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
)

// RPNEquation evaluates one reverse-Polish expression of t per axis, e.g. "t 2 * 100 / 99 +".
// Expressions are compiled once at construction. There are no indexable parameters; change the equation with
// SetExpressions.
type RPNEquation struct {
	programs   [Axes]*program
	timeOffset float64
}

// NewRPNEquation compiles the three axis expressions. Every malformed axis is reported; no equation is returned
// unless all three compile.
func NewRPNEquation(x, y, z string) (*RPNEquation, error) {
	programs, err := compileAxes(x, y, z)
	if err != nil {
		return nil, err
	}
	return &RPNEquation{programs: programs}, nil
}

func compileAxes(exprs ...string) ([Axes]*program, error) {
	var programs [Axes]*program
	var errs error
	for axis, expr := range exprs {
		p, err := compile(axis, expr)
		errs = multierr.Append(errs, err)
		programs[axis] = p
	}
	return programs, errs
}

// Type returns RPNEquationType.
func (eq *RPNEquation) Type() EquationType {
	return RPNEquationType
}

// Evaluate runs each axis expression with t - TimeOffset bound to the symbol t.
func (eq *RPNEquation) Evaluate(t float64) (r3.Vector, error) {
	tau := t - eq.timeOffset
	var out [Axes]float64
	for axis, p := range eq.programs {
		v, err := p.eval(tau)
		if err != nil {
			return r3.Vector{}, err
		}
		out[axis] = v
	}
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}, nil
}

// Len is always zero.
func (eq *RPNEquation) Len() int {
	return 0
}

// Get is not supported.
func (eq *RPNEquation) Get(i int) (float64, error) {
	return 0, NewUnsupportedOperationError(fmt.Sprintf("get(%d)", i), RPNEquationType)
}

// Set is not supported.
func (eq *RPNEquation) Set(i int, value float64) error {
	return NewUnsupportedOperationError(fmt.Sprintf("set(%d)", i), RPNEquationType)
}

// SetExpressions recompiles all three axes. On error the equation keeps its previous expressions.
func (eq *RPNEquation) SetExpressions(x, y, z string) error {
	programs, err := compileAxes(x, y, z)
	if err != nil {
		return err
	}
	eq.programs = programs
	return nil
}

// Expressions returns the normalized source of each axis.
func (eq *RPNEquation) Expressions() (x, y, z string) {
	return eq.programs[0].source, eq.programs[1].source, eq.programs[2].source
}

// TimeOffset returns the time subtracted before evaluation.
func (eq *RPNEquation) TimeOffset() float64 {
	return eq.timeOffset
}

// SetTimeOffset sets the time subtracted before evaluation.
func (eq *RPNEquation) SetTimeOffset(offset float64) {
	eq.timeOffset = offset
}

// Clone returns a copy. Compiled programs are immutable and are shared.
func (eq *RPNEquation) Clone() Equation {
	clone := *eq
	return &clone
}

func (eq *RPNEquation) String() string {
	x, y, z := eq.Expressions()
	return fmt.Sprintf("rpn(x=%q, y=%q, z=%q)", x, y, z)
}
