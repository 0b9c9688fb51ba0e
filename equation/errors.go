package equation

import "github.com/pkg/errors"

var (
	// ErrExpressionParse is returned when an expression cannot be compiled. No equation is built.
	ErrExpressionParse = errors.New("malformed expression")
	// ErrEvaluation is returned when an expression fails at evaluation time.
	ErrEvaluation = errors.New("expression evaluation failed")
	// ErrIndexOutOfRange is returned for a coefficient index outside the equation.
	ErrIndexOutOfRange = errors.New("coefficient index out of range")
	// ErrUnsupportedOperation is returned for indexed access on an equation that has no indexable parameters.
	ErrUnsupportedOperation = errors.New("operation not supported by equation")
)

// NewExpressionParseError is used when the expression of an axis is malformed.
func NewExpressionParseError(axis int, msg string) error {
	return errors.Wrapf(ErrExpressionParse, "axis %s: %s", axisName(axis), msg)
}

// NewEvaluationError is used when the expression of an axis cannot be evaluated.
func NewEvaluationError(axis int, msg string) error {
	return errors.Wrapf(ErrEvaluation, "axis %s: %s", axisName(axis), msg)
}

// NewIndexOutOfRangeError is used when index is not in [0, size).
func NewIndexOutOfRangeError(index, size int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %d, equation has %d coefficients", index, size)
}

// NewUnsupportedOperationError is used when op is not available on the given equation type.
func NewUnsupportedOperationError(op string, eqType EquationType) error {
	return errors.Wrapf(ErrUnsupportedOperation, "%s on %q equation", op, eqType)
}
