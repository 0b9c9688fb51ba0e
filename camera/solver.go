package camera

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/linescan/spatialmath"
	"go.viam.com/linescan/utils"
)

// SolverConfig bounds the iterative search done by PointToPixel.
type SolverConfig struct {
	// MaxIterations is the number of refinement steps after the initial estimate.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// TolerancePx is the largest line residual accepted as converged.
	TolerancePx float64 `json:"tolerance_px" yaml:"tolerance_px"`
	// BoundsMarginPx is how far outside the image a converged pixel may fall.
	BoundsMarginPx float64 `json:"bounds_margin_px" yaml:"bounds_margin_px"`
}

// DefaultSolverConfig returns the settings used when none are given.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxIterations:  50,
		TolerancePx:    1e-6,
		BoundsMarginPx: 0.5,
	}
}

// Validate ensures all parts of the config are valid.
func (cfg *SolverConfig) Validate(path string) error {
	var errs error
	if cfg.MaxIterations <= 0 {
		errs = multierr.Append(errs, errors.Errorf("%s.max_iterations: must be positive, got %d", path, cfg.MaxIterations))
	}
	if !(cfg.TolerancePx > 0) {
		errs = multierr.Append(errs, errors.Errorf("%s.tolerance_px: must be positive, got %g", path, cfg.TolerancePx))
	}
	if cfg.BoundsMarginPx < 0 {
		errs = multierr.Append(errs, errors.Errorf("%s.bounds_margin_px: must not be negative, got %g", path, cfg.BoundsMarginPx))
	}
	return errs
}

// Option changes the solver settings of an AdjustedCamera.
type Option func(*SolverConfig)

// WithMaxIterations sets SolverConfig.MaxIterations.
func WithMaxIterations(n int) Option {
	return func(cfg *SolverConfig) {
		cfg.MaxIterations = n
	}
}

// WithTolerance sets SolverConfig.TolerancePx.
func WithTolerance(px float64) Option {
	return func(cfg *SolverConfig) {
		cfg.TolerancePx = px
	}
}

// WithBoundsMargin sets SolverConfig.BoundsMarginPx.
func WithBoundsMargin(px float64) Option {
	return func(cfg *SolverConfig) {
		cfg.BoundsMarginPx = px
	}
}

// WithSolverConfig replaces every solver setting.
func WithSolverConfig(solver SolverConfig) Option {
	return func(cfg *SolverConfig) {
		*cfg = solver
	}
}

// project returns the raw-model pixel of pt after undoing the adjustment in effect at est's line.
// The adjusted camera images pt at est exactly when the returned pixel has est's line.
func (c *AdjustedCamera) project(pt r3.Vector, est r2.Point) (r2.Point, error) {
	offset, correction, err := c.adjustmentAt(c.base.TimeAt(est))
	if err != nil {
		return r2.Point{}, err
	}
	baseCenter := c.base.CameraCenter(est)
	rel := pt.Sub(baseCenter.Add(offset))
	virtual := baseCenter.Add(spatialmath.RotateVector(spatialmath.Inverse(correction), rel))
	return c.base.PointToPixel(virtual)
}

// scanLines is the number of intervals the image is split into when the raw projection gives no usable start.
const scanLines = 256

// scanSeed looks for a starting line when the raw projection of pt cannot be used, which happens when the
// adjustment moves the camera by more than the distance to pt. It returns the scanned line whose projection
// has the smallest line residual.
func (c *AdjustedCamera) scanSeed(pt r3.Vector, sample float64) (float64, r2.Point, bool) {
	lines := float64(c.base.Lines())
	best, bestLine, bestProj, found := math.Inf(1), 0.0, r2.Point{}, false
	for i := 0; i <= scanLines; i++ {
		est := r2.Point{X: sample, Y: lines * float64(i) / scanLines}
		proj, err := c.project(pt, est)
		if err != nil {
			continue
		}
		if residual := math.Abs(proj.Y - est.Y); residual < best {
			best, bestLine, bestProj, found = residual, est.Y, proj, true
		}
	}
	return bestLine, bestProj, found
}

// PointToPixel returns the pixel at which the adjusted camera images pt.
//
// The acquisition time, and with it the adjustment, depends on the line being solved for. The search starts at
// the raw model's projection of pt and runs a secant iteration on the line residual
// g(line) = project(pt, line).Y - line; the sample comes from the projection at the root. When the raw
// projection fails, or cannot be projected back through the adjustment, the start is taken from a scan over the
// image lines instead. A *ConvergenceError is returned if the residual does not fall under the tolerance within
// the iteration bound, or if the result lies outside the image.
func (c *AdjustedCamera) PointToPixel(pt r3.Vector) (r2.Point, error) {
	tol := c.solver.TolerancePx
	seed, seedErr := c.base.PointToPixel(pt)
	var proj r2.Point
	err := seedErr
	if err == nil {
		proj, err = c.project(pt, seed)
	}
	if err != nil {
		if seedErr != nil {
			seed.X = float64(c.base.Samples()) / 2
		}
		line, scanned, ok := c.scanSeed(pt, seed.X)
		if !ok {
			cerr := &ConvergenceError{Point: pt, Last: seed, Cause: err}
			if seedErr != nil {
				cerr.Reason = "raw model gives no initial estimate"
			}
			return r2.Point{}, c.fail(cerr)
		}
		seed.Y, proj = line, scanned
	}
	prevLine, prevResidual := seed.Y, proj.Y-seed.Y
	if utils.Float64AlmostEqual(proj.Y, seed.Y, tol) {
		return c.accept(pt, proj, 0, prevResidual)
	}

	line, sample := proj.Y, proj.X
	for i := 1; i <= c.solver.MaxIterations; i++ {
		est := r2.Point{X: sample, Y: line}
		proj, err = c.project(pt, est)
		if err != nil {
			return r2.Point{}, c.fail(&ConvergenceError{Point: pt, Iterations: i, Last: est, Residual: prevResidual, Cause: err})
		}
		residual := proj.Y - line
		if utils.Float64AlmostEqual(proj.Y, line, tol) {
			return c.accept(pt, proj, i, residual)
		}

		next := proj.Y
		if denom := residual - prevResidual; denom != 0 {
			next = line - residual*(line-prevLine)/denom
		}
		if !utils.IsFinite(next) {
			return r2.Point{}, c.fail(&ConvergenceError{
				Point: pt, Iterations: i, Last: est, Residual: residual, Reason: "line estimate diverged",
			})
		}
		prevLine, prevResidual = line, residual
		line, sample = next, proj.X
	}
	return r2.Point{}, c.fail(&ConvergenceError{
		Point:      pt,
		Iterations: c.solver.MaxIterations,
		Last:       r2.Point{X: sample, Y: line},
		Residual:   prevResidual,
		Reason:     "iteration limit reached",
	})
}

func (c *AdjustedCamera) accept(pt r3.Vector, pix r2.Point, iterations int, residual float64) (r2.Point, error) {
	if !InImage(c.base, pix, c.solver.BoundsMarginPx) {
		return r2.Point{}, c.fail(&ConvergenceError{
			Point: pt, Iterations: iterations, Last: pix, Residual: residual, Reason: "solution lies outside the image",
		})
	}
	return pix, nil
}

func (c *AdjustedCamera) fail(cerr *ConvergenceError) error {
	c.logger.Debugw("point to pixel failed",
		"image", c.name,
		"id", c.id.String(),
		"point", cerr.Point,
		"iterations", cerr.Iterations,
		"last", cerr.Last,
		"residual", cerr.Residual,
		"reason", cerr.Reason,
		"cause", cerr.Cause,
	)
	return cerr
}
