package pushbroom

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/linescan/spatialmath"
	"go.viam.com/linescan/utils"
)

// nadirConfig looks straight down from 100 km while flying towards -y.
func nadirConfig() Config {
	return Config{
		Samples:         1000,
		Lines:           2000,
		StartTime:       10,
		LineDuration:    0.001,
		FocalLengthPx:   5000,
		PrincipalSample: 500,
		Position:        r3.Vector{Z: 100000},
		Velocity:        r3.Vector{Y: -3000},
		RollDeg:         180,
	}
}

func TestModelGeometry(t *testing.T) {
	m, err := New(nadirConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Samples(), test.ShouldEqual, 1000)
	test.That(t, m.Lines(), test.ShouldEqual, 2000)

	test.That(t, m.TimeAt(r2.Point{X: 3, Y: 0}), test.ShouldAlmostEqual, 10)
	test.That(t, m.TimeAt(r2.Point{X: 900, Y: 1500}), test.ShouldAlmostEqual, 11.5)

	center := m.CameraCenter(r2.Point{X: 0, Y: 1000})
	test.That(t, center.X, test.ShouldAlmostEqual, 0)
	test.That(t, center.Y, test.ShouldAlmostEqual, -3000)
	test.That(t, center.Z, test.ShouldAlmostEqual, 100000)

	down := m.PixelToVector(r2.Point{X: 500, Y: 7})
	test.That(t, down.X, test.ShouldAlmostEqual, 0)
	test.That(t, down.Y, test.ShouldAlmostEqual, 0)
	test.That(t, down.Z, test.ShouldAlmostEqual, -1)

	side := m.PixelToVector(r2.Point{X: 600, Y: 7})
	test.That(t, side.Norm(), test.ShouldAlmostEqual, 1)
	test.That(t, side.X, test.ShouldAlmostEqual, 100/math.Hypot(100, 5000))
	test.That(t, side.Y, test.ShouldAlmostEqual, 0)

	pose := m.CameraPose(r2.Point{X: 1, Y: 2})
	test.That(t, spatialmath.OrientationAlmostEqual(pose, &spatialmath.EulerAngles{Roll: math.Pi}), test.ShouldBeTrue)
	test.That(t, spatialmath.OrientationAlmostEqual(pose, m.CameraPose(r2.Point{X: 999, Y: 1999})), test.ShouldBeTrue)
}

func TestModelRoundTrip(t *testing.T) {
	cfg := nadirConfig()
	cfg.PitchDeg = 3
	cfg.YawDeg = -20
	cfg.Velocity = r3.Vector{X: -1000, Y: -2800, Z: 15}
	m, err := New(cfg)
	test.That(t, err, test.ShouldBeNil)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		pix := r2.Point{X: rng.Float64() * 1000, Y: rng.Float64() * 2000}
		pt := m.CameraCenter(pix).Add(m.PixelToVector(pix).Mul(90000 + rng.Float64()*20000))
		back, err := m.PointToPixel(pt)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, back.X, test.ShouldAlmostEqual, pix.X, 1e-6)
		test.That(t, back.Y, test.ShouldAlmostEqual, pix.Y, 1e-6)
	}
}

func TestModelPointBehindSensor(t *testing.T) {
	m, err := New(nadirConfig())
	test.That(t, err, test.ShouldBeNil)
	_, err = m.PointToPixel(r3.Vector{X: 0, Y: -3000, Z: 200000})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "behind the sensor")
}

func TestNewErrors(t *testing.T) {
	cfg := nadirConfig()
	cfg.Velocity = r3.Vector{X: 3000}
	_, err := New(cfg)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "sensor plane")

	_, err = New(Config{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 5)
	test.That(t, err.Error(), test.ShouldContainSubstring, "focal_length_px")
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(utils.AttributeMap{
		"samples":          1000,
		"lines":            "2000",
		"start_time":       10.0,
		"line_duration":    "1e-3",
		"focal_length_px":  5000,
		"principal_sample": 500,
		"position":         map[string]interface{}{"x": 0, "y": 0, "z": 100000},
		"velocity":         map[string]interface{}{"y": -3000},
		"roll_deg":         180,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *cfg, test.ShouldResemble, nadirConfig())

	_, err = DecodeConfig(utils.AttributeMap{"samples": 0})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = DecodeConfig(utils.AttributeMap{"sampels": 1000})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor.yaml")
	content := `samples: 1000
lines: 2000
start_time: 10
line_duration: 0.001
focal_length_px: 5000
principal_sample: 500
position: {x: 0, y: 0, z: 100000}
velocity: {x: 0, y: -3000, z: 0}
roll_deg: 180
`
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	cfg, err := ReadConfigFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, *cfg, test.ShouldResemble, nadirConfig())
}
