package camera

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/linescan/equation"
	"go.viam.com/linescan/logging"
	"go.viam.com/linescan/utils"
)

const adjustmentYAML = `image: scene-01
position:
  type: poly
  degree: 1
  coefficients: [1000, 10, 2000, -10, -11000, 5]
pose:
  type: rpn
  x: .005
  y: -.013 t *
  z: 0
  time_offset: 0.25
solver:
  max_iterations: 20
`

const adjustmentJSON = `{
  "image": "scene-01",
  "position": {"type": "poly", "degree": 1, "coefficients": ["1000", 10, 2000, -10, -11000, 5]},
  "pose": {"type": "rpn", "x": "0.005", "y": "-.013 t *", "z": "0", "time_offset": "0.25"},
  "solver": {"max_iterations": 20}
}`

func expectedAdjustmentConfig() *AdjustmentConfig {
	return &AdjustmentConfig{
		Image: "scene-01",
		Position: &equation.Config{
			Type:         equation.PolyEquationType,
			Degree:       1,
			Coefficients: []float64{1000, 10, 2000, -10, -11000, 5},
		},
		Pose: &equation.Config{
			Type:       equation.RPNEquationType,
			X:          "0.005",
			Y:          "-.013 t *",
			Z:          "0",
			TimeOffset: 0.25,
		},
		Solver: &SolverConfig{MaxIterations: 20},
	}
}

func TestReadAdjustmentConfigFile(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"adjust.yaml": adjustmentYAML, "adjust.json": adjustmentJSON} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
			cfg, err := ReadAdjustmentConfigFile(path)
			test.That(t, err, test.ShouldBeNil)
			diff := cmp.Diff(expectedAdjustmentConfig(), cfg, cmpopts.EquateApprox(0, 1e-12))
			test.That(t, diff, test.ShouldBeEmpty)
		})
	}
}

func TestAdjustmentConfigValidate(t *testing.T) {
	_, err := DecodeAdjustmentConfig(utils.AttributeMap{
		"position": map[string]interface{}{"type": "spline"},
		"solver":   map[string]interface{}{"tolerance_px": -1},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 4)
	for _, field := range []string{"image", "position.type", "pose", "solver.tolerance_px"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, field)
	}

	_, err = DecodeAdjustmentConfig(utils.AttributeMap{"image": "a", "extra": true})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "extra")

	cfg := expectedAdjustmentConfig()
	cfg.Pose.Y = "t *"
	err = cfg.Validate("adjustment")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "adjustment.pose")
}

func TestNewAdjustedCameraFromConfig(t *testing.T) {
	base := newTestBase(t)
	logger := logging.NewTestLogger(t)

	_, err := NewAdjustedCameraFromConfig(base, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)

	cam, err := NewAdjustedCameraFromConfig(base, expectedAdjustmentConfig(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cam.Name(), test.ShouldEqual, "scene-01")
	test.That(t, cam.SolverConfig(), test.ShouldResemble, SolverConfig{MaxIterations: 20, TolerancePx: 1e-6, BoundsMarginPx: 0.5})
	test.That(t, cam.PositionEquation().Type(), test.ShouldEqual, equation.PolyEquationType)
	test.That(t, cam.PoseEquation().TimeOffset(), test.ShouldEqual, 0.25)
	testRoundTrip(t, cam, randomPixels(9, 20), 0.001)

	// Options given by the caller override the file.
	cam, err = NewAdjustedCameraFromConfig(base, expectedAdjustmentConfig(), logger, WithMaxIterations(5))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cam.SolverConfig().MaxIterations, test.ShouldEqual, 5)

	back, err := AdjustmentConfigFromCamera(cam)
	test.That(t, err, test.ShouldBeNil)
	want := expectedAdjustmentConfig()
	want.Solver = &SolverConfig{MaxIterations: 5, TolerancePx: 1e-6, BoundsMarginPx: 0.5}
	test.That(t, cmp.Diff(want, back), test.ShouldBeEmpty)
}
