package equation

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Config describes an equation in attribute form. Polynomials use Degree and Coefficients (empty means all
// zero); expressions use X, Y and Z.
type Config struct {
	Type         EquationType `json:"type" yaml:"type"`
	Degree       int          `json:"degree,omitempty" yaml:"degree,omitempty"`
	Coefficients []float64    `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
	X            string       `json:"x,omitempty" yaml:"x,omitempty"`
	Y            string       `json:"y,omitempty" yaml:"y,omitempty"`
	Z            string       `json:"z,omitempty" yaml:"z,omitempty"`
	TimeOffset   float64      `json:"time_offset,omitempty" yaml:"time_offset,omitempty"`
}

// Validate ensures all parts of the config are valid. Every problem found is reported.
func (cfg *Config) Validate(path string) error {
	if cfg == nil {
		return errors.Errorf("%s: equation config not provided", path)
	}
	var errs error
	switch cfg.Type {
	case PolyEquationType:
		if err := checkDegree(cfg.Degree); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s.degree", path))
		} else if n := len(cfg.Coefficients); n != 0 && n != Axes*(cfg.Degree+1) {
			errs = multierr.Append(errs, errors.Errorf("%s.coefficients: degree %d needs %d values, got %d",
				path, cfg.Degree, Axes*(cfg.Degree+1), n))
		}
		if cfg.X != "" || cfg.Y != "" || cfg.Z != "" {
			errs = multierr.Append(errs, errors.Errorf("%s: expressions are not used by %q equations", path, cfg.Type))
		}
	case RPNEquationType:
		for axis, expr := range []string{cfg.X, cfg.Y, cfg.Z} {
			if strings.TrimSpace(expr) == "" {
				errs = multierr.Append(errs, errors.Errorf("%s.%s: expression required", path, axisName(axis)))
				continue
			}
			if _, err := compile(axis, expr); err != nil {
				errs = multierr.Append(errs, errors.Wrap(err, path))
			}
		}
		if len(cfg.Coefficients) != 0 {
			errs = multierr.Append(errs, errors.Errorf("%s.coefficients: not used by %q equations", path, cfg.Type))
		}
	case "":
		errs = multierr.Append(errs, errors.Errorf("%s.type: required", path))
	default:
		errs = multierr.Append(errs, errors.Errorf("%s.type: unknown equation type %q", path, cfg.Type))
	}
	return errs
}

// ConfigFromEquation returns the attribute form of eq.
func ConfigFromEquation(eq Equation) (*Config, error) {
	switch e := eq.(type) {
	case *PolyEquation:
		return &Config{
			Type:         PolyEquationType,
			Degree:       e.Degree(),
			Coefficients: append([]float64(nil), e.Parameters()...),
			TimeOffset:   e.TimeOffset(),
		}, nil
	case *RPNEquation:
		x, y, z := e.Expressions()
		return &Config{Type: RPNEquationType, X: x, Y: y, Z: z, TimeOffset: e.TimeOffset()}, nil
	default:
		return nil, errors.Errorf("cannot describe equation of type %T", eq)
	}
}
