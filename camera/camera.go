// Package camera composes a raw linescan sensor model with time-dependent position and pose adjustments.
//
// The raw model is consumed through LinescanModel. AdjustedCamera evaluates a position equation and a pose
// equation at the acquisition time of each pixel and applies them on top of the raw geometry:
//
//	center(p)    = base.CameraCenter(p) + position(t)
//	pose(p)      = correction(t) ∘ base.CameraPose(p)
//	direction(p) = correction(t) · base.PixelToVector(p)
//
// where t = base.TimeAt(p) and correction(t) is the rotation built from the pose equation's three angles as
// roll, pitch and yaw (Rz·Ry·Rx). Projecting a point back to a pixel inverts this relation iteratively because
// the correction depends on the unknown line.
package camera

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"go.viam.com/linescan/spatialmath"
)

// LinescanModel is a raw, unadjusted linescan sensor. Pixels are r2.Points with X = sample and Y = line.
// CameraPose rotates sensor-frame vectors into the model frame.
type LinescanModel interface {
	Samples() int
	Lines() int
	// TimeAt maps a pixel to its acquisition time. It must be monotonic in the line coordinate.
	TimeAt(pix r2.Point) float64
	CameraCenter(pix r2.Point) r3.Vector
	CameraPose(pix r2.Point) spatialmath.Orientation
	// PixelToVector returns the unit look direction of pix in the model frame.
	PixelToVector(pix r2.Point) r3.Vector
	PointToPixel(pt r3.Vector) (r2.Point, error)
}

// InImage reports whether pix lies within the extent of model, allowing margin pixels on every side.
func InImage(model LinescanModel, pix r2.Point, margin float64) bool {
	return pix.X >= -margin && pix.X <= float64(model.Samples())+margin &&
		pix.Y >= -margin && pix.Y <= float64(model.Lines())+margin
}
