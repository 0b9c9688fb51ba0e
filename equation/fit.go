package equation

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FitPolyEquation samples eq at n evenly spaced times in [start, end] and returns the least squares polynomial
// of the given degree through those samples. The result keeps eq's time offset, so an expression equation can be
// turned into one whose coefficients an optimizer can index.
func FitPolyEquation(eq Equation, degree int, start, end float64, n int) (*PolyEquation, error) {
	if err := checkDegree(degree); err != nil {
		return nil, err
	}
	if n <= degree || n < 2 {
		return nil, errors.Errorf("need at least %d samples to fit degree %d, got %d", max(degree+1, 2), degree, n)
	}
	if !(end > start) {
		return nil, errors.Errorf("empty sample interval [%g, %g]", start, end)
	}

	times := floats.Span(make([]float64, n), start, end)
	offset := eq.TimeOffset()
	cols := degree + 1
	vandermonde := mat.NewDense(n, cols, nil)
	values := mat.NewDense(n, Axes, nil)
	for row, t := range times {
		v, err := eq.Evaluate(t)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot sample equation at t=%g", t)
		}
		values.SetRow(row, []float64{v.X, v.Y, v.Z})
		pow := 1.0
		for c := 0; c < cols; c++ {
			vandermonde.Set(row, c, pow)
			pow *= t - offset
		}
	}

	var qr mat.QR
	qr.Factorize(vandermonde)
	var solution mat.Dense
	if err := qr.SolveTo(&solution, false, values); err != nil {
		return nil, errors.Wrap(err, "polynomial fit is singular")
	}

	fitted, err := NewPolyEquation(degree)
	if err != nil {
		return nil, err
	}
	fitted.SetTimeOffset(offset)
	for axis := 0; axis < Axes; axis++ {
		for power := 0; power < cols; power++ {
			fitted.coeffs[CoefficientIndex(degree, axis, power)] = solution.At(power, axis)
		}
	}
	return fitted, nil
}
