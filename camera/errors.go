package camera

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrConvergence is matched by every ConvergenceError.
var ErrConvergence = errors.New("point to pixel did not converge")

// ConvergenceError is returned when projecting a point to a pixel does not settle within the iteration bound,
// or settles outside the image. The camera remains usable.
type ConvergenceError struct {
	Point      r3.Vector
	Iterations int
	// Last is the final estimate. It is not a valid projection.
	Last     r2.Point
	Residual float64
	Reason   string
	Cause    error
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("%s: point %v after %d iterations (last estimate %v, residual %g px)",
		ErrConvergence.Error(), e.Point, e.Iterations, e.Last, e.Residual)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ConvergenceError) Unwrap() error {
	return e.Cause
}

// Is matches ErrConvergence.
func (e *ConvergenceError) Is(target error) bool {
	return target == ErrConvergence //nolint:errorlint
}
