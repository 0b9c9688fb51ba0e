// Package equation implements the time-parameterized adjustment functions that correct the position and
// orientation of a linescan sensor. Every equation maps an acquisition time to a 3-vector, one component per axis.
//
// Two kinds exist: polynomials in time, whose coefficients may be read and written by index (this is what an
// external bundle adjuster mutates between evaluations), and reverse-Polish expressions, which can only be
// replaced wholesale. Equations carry no memoized state: Evaluate is a pure function of the current parameters
// and t. Mutating parameters while an evaluation is in flight on the same equation is not synchronized and must be
// prevented by the caller.
package equation

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// EquationType is the name of an equation variant.
type EquationType string

const (
	// PolyEquationType is a polynomial in time per axis.
	PolyEquationType = EquationType("poly")
	// RPNEquationType is a reverse-Polish expression of t per axis.
	RPNEquationType = EquationType("rpn")
)

// Axes is the number of components every equation produces.
const Axes = 3

// Equation is a time-parameterized, per-axis function with mutable parameters.
type Equation interface {
	// Type returns the variant of the equation.
	Type() EquationType
	// Evaluate returns the value of the equation at time t (offset by TimeOffset).
	Evaluate(t float64) (r3.Vector, error)
	// Len is the number of indexable parameters. It is zero for variants without indexed access.
	Len() int
	// Get returns the parameter at index i.
	Get(i int) (float64, error)
	// Set replaces the parameter at index i.
	Set(i int, value float64) error
	// TimeOffset is subtracted from t before evaluation.
	TimeOffset() float64
	SetTimeOffset(offset float64)
	// Clone returns a deep copy that shares no parameter storage with the receiver.
	Clone() Equation
}

// NewEquation returns an Equation given a valid config.
func NewEquation(cfg *Config) (Equation, error) {
	if cfg == nil {
		return nil, errors.New("equation config not provided")
	}
	switch cfg.Type {
	case PolyEquationType:
		if err := checkDegree(cfg.Degree); err != nil {
			return nil, err
		}
		coeffs := cfg.Coefficients
		if len(coeffs) == 0 {
			coeffs = make([]float64, Axes*(cfg.Degree+1))
		} else {
			coeffs = append([]float64(nil), coeffs...)
		}
		eq, err := NewPolyEquationFromCoefficients(cfg.Degree, coeffs)
		if err != nil {
			return nil, err
		}
		eq.SetTimeOffset(cfg.TimeOffset)
		return eq, nil
	case RPNEquationType:
		eq, err := NewRPNEquation(cfg.X, cfg.Y, cfg.Z)
		if err != nil {
			return nil, err
		}
		eq.SetTimeOffset(cfg.TimeOffset)
		return eq, nil
	default:
		return nil, errors.Errorf("do not know how to build %q equation", cfg.Type)
	}
}

// axisName is used in error messages.
func axisName(axis int) string {
	switch axis {
	case 0:
		return "x"
	case 1:
		return "y"
	case 2:
		return "z"
	default:
		return "?"
	}
}
