// Package pushbroom implements a linescan sensor flying a straight line at constant velocity with a fixed
// attitude. Its projections are closed form, which makes it a convenient base model for adjusted cameras and
// for checking the adjustment layer against known geometry.
//
// Sensor frame: x runs along the detector line (increasing sample), y is the along-track axis and z is the
// boresight. Pixel (sample, line) is an r2.Point with X = sample and Y = line. Line l is exposed at
// StartTime + l*LineDuration.
package pushbroom

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/linescan/spatialmath"
)

// minAlongTrackRate is the smallest |n·v| for which the sensor plane sweeps the scene.
const minAlongTrackRate = 1e-12

// Model is a linear pushbroom camera.
type Model struct {
	cfg      Config
	attitude spatialmath.Orientation
	inverse  spatialmath.Orientation
	normal   r3.Vector
}

// New returns a Model for a valid config.
func New(cfg Config) (*Model, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	attitude := cfg.Orientation()
	normal := spatialmath.RotateVector(attitude, r3.Vector{Y: 1})
	if math.Abs(normal.Dot(cfg.Velocity)) < minAlongTrackRate {
		return nil, errors.New("velocity lies in the sensor plane; the sensor never sweeps the scene")
	}
	return &Model{
		cfg:      cfg,
		attitude: attitude,
		inverse:  spatialmath.Inverse(attitude),
		normal:   normal,
	}, nil
}

// Config returns the configuration the model was built from.
func (m *Model) Config() Config {
	return m.cfg
}

// Samples returns the number of detectors on the line.
func (m *Model) Samples() int {
	return m.cfg.Samples
}

// Lines returns the number of lines in the image.
func (m *Model) Lines() int {
	return m.cfg.Lines
}

// TimeAt returns the exposure time of the pixel's line.
func (m *Model) TimeAt(pix r2.Point) float64 {
	return m.cfg.StartTime + pix.Y*m.cfg.LineDuration
}

// CameraCenter returns the sensor position while the pixel's line was exposed.
func (m *Model) CameraCenter(pix r2.Point) r3.Vector {
	return m.cfg.Position.Add(m.cfg.Velocity.Mul(pix.Y * m.cfg.LineDuration))
}

// CameraPose returns the rotation from the sensor frame to the model frame. It is the same for every pixel.
func (m *Model) CameraPose(pix r2.Point) spatialmath.Orientation {
	return m.attitude
}

// PixelToVector returns the unit look direction of the pixel in the model frame.
func (m *Model) PixelToVector(pix r2.Point) r3.Vector {
	d := r3.Vector{X: pix.X - m.cfg.PrincipalSample, Y: 0, Z: m.cfg.FocalLengthPx}
	return spatialmath.RotateVector(m.attitude, d.Normalize())
}

// PointToPixel returns the pixel that images pt. The line is where the sweeping sensor plane meets the point;
// the sample follows from the cross-track angle at that line.
func (m *Model) PointToPixel(pt r3.Vector) (r2.Point, error) {
	rate := m.normal.Dot(m.cfg.Velocity)
	elapsed := m.normal.Dot(pt.Sub(m.cfg.Position)) / rate
	line := elapsed / m.cfg.LineDuration

	center := m.cfg.Position.Add(m.cfg.Velocity.Mul(elapsed))
	d := spatialmath.RotateVector(m.inverse, pt.Sub(center))
	if d.Z <= 0 {
		return r2.Point{}, errors.Errorf("point %v is behind the sensor", pt)
	}
	sample := m.cfg.PrincipalSample + m.cfg.FocalLengthPx*d.X/d.Z
	return r2.Point{X: sample, Y: line}, nil
}
