package camera

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go.viam.com/linescan/equation"
	"go.viam.com/linescan/logging"
	"go.viam.com/linescan/spatialmath"
)

// AdjustedCamera is a linescan model whose center and pose are corrected by a position and a pose equation.
//
// Read-only calls may run concurrently. The equations are held by reference: an optimizer may change their
// parameters between calls, but not while any call on this camera is in flight.
type AdjustedCamera struct {
	name     string
	id       uuid.UUID
	base     LinescanModel
	position equation.Equation
	pose     equation.Equation
	solver   SolverConfig
	logger   logging.Logger
}

// NewAdjustedCamera returns a camera for the image called name.
func NewAdjustedCamera(
	name string,
	base LinescanModel,
	position, pose equation.Equation,
	logger logging.Logger,
	opts ...Option,
) (*AdjustedCamera, error) {
	if base == nil {
		return nil, errors.New("base camera model not provided")
	}
	if position == nil {
		return nil, errors.New("position equation not provided")
	}
	if pose == nil {
		return nil, errors.New("pose equation not provided")
	}
	if logger == nil {
		logger = logging.Global()
	}
	solver := DefaultSolverConfig()
	for _, opt := range opts {
		opt(&solver)
	}
	if err := solver.Validate("solver"); err != nil {
		return nil, err
	}

	cam := &AdjustedCamera{
		name:     name,
		id:       uuid.New(),
		base:     base,
		position: position,
		pose:     pose,
		solver:   solver,
		logger:   logger,
	}
	logger.Debugw("adjusted camera created",
		"image", name,
		"id", cam.id.String(),
		"samples", base.Samples(),
		"lines", base.Lines(),
		"position", position.Type(),
		"pose", pose.Type(),
	)
	return cam, nil
}

// Name returns the image identifier.
func (c *AdjustedCamera) Name() string {
	return c.name
}

// ID distinguishes this camera instance in logs.
func (c *AdjustedCamera) ID() uuid.UUID {
	return c.id
}

// Base returns the raw model.
func (c *AdjustedCamera) Base() LinescanModel {
	return c.base
}

// PositionEquation returns the equation added to the raw camera center.
func (c *AdjustedCamera) PositionEquation() equation.Equation {
	return c.position
}

// PoseEquation returns the equation whose angles rotate the raw pose.
func (c *AdjustedCamera) PoseEquation() equation.Equation {
	return c.pose
}

// SolverConfig returns the settings used by PointToPixel.
func (c *AdjustedCamera) SolverConfig() SolverConfig {
	return c.solver
}

// Samples returns the image width of the raw model.
func (c *AdjustedCamera) Samples() int {
	return c.base.Samples()
}

// Lines returns the image height of the raw model.
func (c *AdjustedCamera) Lines() int {
	return c.base.Lines()
}

// TimeAt returns the acquisition time of pix.
func (c *AdjustedCamera) TimeAt(pix r2.Point) float64 {
	return c.base.TimeAt(pix)
}

// adjustmentAt evaluates both equations at t.
func (c *AdjustedCamera) adjustmentAt(t float64) (r3.Vector, spatialmath.Orientation, error) {
	offset, err := c.position.Evaluate(t)
	if err != nil {
		return r3.Vector{}, nil, errors.Wrapf(err, "position equation at t=%g", t)
	}
	angles, err := c.pose.Evaluate(t)
	if err != nil {
		return r3.Vector{}, nil, errors.Wrapf(err, "pose equation at t=%g", t)
	}
	return offset, spatialmath.NewEulerAnglesFromVector(angles), nil
}

// CameraCenter returns the adjusted sensor position for pix.
func (c *AdjustedCamera) CameraCenter(pix r2.Point) (r3.Vector, error) {
	offset, err := c.position.Evaluate(c.base.TimeAt(pix))
	if err != nil {
		return r3.Vector{}, errors.Wrapf(err, "position equation at pixel %v", pix)
	}
	return c.base.CameraCenter(pix).Add(offset), nil
}

// CameraPose returns the adjusted rotation from the sensor frame to the model frame for pix.
func (c *AdjustedCamera) CameraPose(pix r2.Point) (spatialmath.Orientation, error) {
	_, correction, err := c.adjustmentAt(c.base.TimeAt(pix))
	if err != nil {
		return nil, err
	}
	return spatialmath.Compose(correction, c.base.CameraPose(pix)), nil
}

// PixelToVector returns the adjusted unit look direction of pix. The position equation does not affect it.
func (c *AdjustedCamera) PixelToVector(pix r2.Point) (r3.Vector, error) {
	angles, err := c.pose.Evaluate(c.base.TimeAt(pix))
	if err != nil {
		return r3.Vector{}, errors.Wrapf(err, "pose equation at pixel %v", pix)
	}
	correction := spatialmath.NewEulerAnglesFromVector(angles)
	return spatialmath.RotateVector(correction, c.base.PixelToVector(pix)).Normalize(), nil
}

// Ray returns the adjusted center and unit look direction of pix with a single evaluation of each equation.
func (c *AdjustedCamera) Ray(pix r2.Point) (center, direction r3.Vector, err error) {
	offset, correction, err := c.adjustmentAt(c.base.TimeAt(pix))
	if err != nil {
		return r3.Vector{}, r3.Vector{}, err
	}
	center = c.base.CameraCenter(pix).Add(offset)
	direction = spatialmath.RotateVector(correction, c.base.PixelToVector(pix)).Normalize()
	return center, direction, nil
}
