package equation

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// PolyEquation is a polynomial in time for each axis. For degree n it holds 3(n+1) coefficients grouped by
// axis: x uses [0, n], y uses [n+1, 2n+1] and z uses [2n+2, 3n+2]. Within an axis the coefficient of t^i comes i
// places after the constant term.
type PolyEquation struct {
	degree     int
	coeffs     []float64
	timeOffset float64
}

// MaxPolyDegree is the highest polynomial degree accepted.
const MaxPolyDegree = 64

// checkDegree must run before any size is computed from degree.
func checkDegree(degree int) error {
	if degree < 0 || degree > MaxPolyDegree {
		return errors.Errorf("polynomial degree must be in [0, %d], got %d", MaxPolyDegree, degree)
	}
	return nil
}

// NewPolyEquation returns a polynomial of the given degree with every coefficient zero.
// A zero polynomial evaluates to the zero vector for every t.
func NewPolyEquation(degree int) (*PolyEquation, error) {
	if err := checkDegree(degree); err != nil {
		return nil, err
	}
	return &PolyEquation{degree: degree, coeffs: make([]float64, Axes*(degree+1))}, nil
}

// NewPolyEquationFromCoefficients returns a polynomial that reads its coefficients from coeffs. The slice is not
// copied: the caller keeps ownership and writes through it are visible to the next Evaluate. This lets an
// optimizer hand its own parameter vector to the equation.
func NewPolyEquationFromCoefficients(degree int, coeffs []float64) (*PolyEquation, error) {
	if err := checkDegree(degree); err != nil {
		return nil, err
	}
	if want := Axes * (degree + 1); len(coeffs) != want {
		return nil, errors.Errorf("degree %d polynomial needs %d coefficients, got %d", degree, want, len(coeffs))
	}
	return &PolyEquation{degree: degree, coeffs: coeffs}, nil
}

// CoefficientIndex returns the flat index of the coefficient of t^power on the given axis.
func CoefficientIndex(degree, axis, power int) int {
	return axis*(degree+1) + power
}

// Type returns PolyEquationType.
func (eq *PolyEquation) Type() EquationType {
	return PolyEquationType
}

// Degree returns the degree of every axis polynomial.
func (eq *PolyEquation) Degree() int {
	return eq.degree
}

// Evaluate computes each axis with Horner's rule at t - TimeOffset. It never fails.
func (eq *PolyEquation) Evaluate(t float64) (r3.Vector, error) {
	tau := t - eq.timeOffset
	var out [Axes]float64
	n := eq.degree + 1
	for axis := 0; axis < Axes; axis++ {
		row := eq.coeffs[axis*n : (axis+1)*n]
		v := 0.0
		for i := eq.degree; i >= 0; i-- {
			v = v*tau + row[i]
		}
		out[axis] = v
	}
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}, nil
}

// Len returns 3(degree+1).
func (eq *PolyEquation) Len() int {
	return len(eq.coeffs)
}

// Get returns the coefficient at index i.
func (eq *PolyEquation) Get(i int) (float64, error) {
	if i < 0 || i >= len(eq.coeffs) {
		return 0, NewIndexOutOfRangeError(i, len(eq.coeffs))
	}
	return eq.coeffs[i], nil
}

// Set replaces the coefficient at index i.
func (eq *PolyEquation) Set(i int, value float64) error {
	if i < 0 || i >= len(eq.coeffs) {
		return NewIndexOutOfRangeError(i, len(eq.coeffs))
	}
	eq.coeffs[i] = value
	return nil
}

// Parameters returns the live coefficient slice in the flat axis-major layout.
func (eq *PolyEquation) Parameters() []float64 {
	return eq.coeffs
}

// TimeOffset returns the time subtracted before evaluation.
func (eq *PolyEquation) TimeOffset() float64 {
	return eq.timeOffset
}

// SetTimeOffset sets the time subtracted before evaluation.
func (eq *PolyEquation) SetTimeOffset(offset float64) {
	eq.timeOffset = offset
}

// Clone returns a copy with its own coefficient storage.
func (eq *PolyEquation) Clone() Equation {
	return &PolyEquation{
		degree:     eq.degree,
		coeffs:     append([]float64(nil), eq.coeffs...),
		timeOffset: eq.timeOffset,
	}
}
