package camera

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/linescan/equation"
	"go.viam.com/linescan/logging"
	"go.viam.com/linescan/utils"
)

// AdjustmentConfig describes the adjustment of one image.
type AdjustmentConfig struct {
	Image    string           `json:"image" yaml:"image"`
	Position *equation.Config `json:"position" yaml:"position"`
	Pose     *equation.Config `json:"pose" yaml:"pose"`
	// Solver is optional; DefaultSolverConfig is used for missing settings.
	Solver *SolverConfig `json:"solver,omitempty" yaml:"solver,omitempty"`
}

// Validate ensures all parts of the config are valid. Every problem found is reported.
func (cfg *AdjustmentConfig) Validate(path string) error {
	prefix := path
	if prefix != "" {
		prefix += "."
	}
	var errs error
	if cfg.Image == "" {
		errs = multierr.Append(errs, errors.Errorf("%simage: required", prefix))
	}
	errs = multierr.Append(errs, cfg.Position.Validate(prefix+"position"))
	errs = multierr.Append(errs, cfg.Pose.Validate(prefix+"pose"))
	if cfg.Solver != nil {
		solver := cfg.solverConfig()
		errs = multierr.Append(errs, solver.Validate(prefix+"solver"))
	}
	return errs
}

// solverConfig fills settings left at zero with their defaults.
func (cfg *AdjustmentConfig) solverConfig() SolverConfig {
	solver := DefaultSolverConfig()
	if cfg.Solver == nil {
		return solver
	}
	if cfg.Solver.MaxIterations != 0 {
		solver.MaxIterations = cfg.Solver.MaxIterations
	}
	if cfg.Solver.TolerancePx != 0 {
		solver.TolerancePx = cfg.Solver.TolerancePx
	}
	if cfg.Solver.BoundsMarginPx != 0 {
		solver.BoundsMarginPx = cfg.Solver.BoundsMarginPx
	}
	return solver
}

// DecodeAdjustmentConfig decodes and validates an attribute map.
func DecodeAdjustmentConfig(attributes utils.AttributeMap) (*AdjustmentConfig, error) {
	cfg, err := utils.DecodeAttributes[AdjustmentConfig](attributes)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadAdjustmentConfigFile reads an adjustment config from a JSON or YAML file.
func ReadAdjustmentConfigFile(path string) (*AdjustmentConfig, error) {
	attrs, err := utils.ReadAttributesFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeAdjustmentConfig(attrs)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// AdjustmentConfigFromCamera returns the attribute form of cam's adjustment.
func AdjustmentConfigFromCamera(cam *AdjustedCamera) (*AdjustmentConfig, error) {
	position, err := equation.ConfigFromEquation(cam.position)
	if err != nil {
		return nil, errors.Wrap(err, "position")
	}
	pose, err := equation.ConfigFromEquation(cam.pose)
	if err != nil {
		return nil, errors.Wrap(err, "pose")
	}
	solver := cam.solver
	return &AdjustmentConfig{Image: cam.name, Position: position, Pose: pose, Solver: &solver}, nil
}

// NewAdjustedCameraFromConfig builds the equations described by cfg and applies them to base.
func NewAdjustedCameraFromConfig(
	base LinescanModel,
	cfg *AdjustmentConfig,
	logger logging.Logger,
	opts ...Option,
) (*AdjustedCamera, error) {
	if cfg == nil {
		return nil, errors.New("adjustment config not provided")
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	position, err := equation.NewEquation(cfg.Position)
	if err != nil {
		return nil, errors.Wrap(err, "position")
	}
	pose, err := equation.NewEquation(cfg.Pose)
	if err != nil {
		return nil, errors.Wrap(err, "pose")
	}
	opts = append([]Option{WithSolverConfig(cfg.solverConfig())}, opts...)
	return NewAdjustedCamera(cfg.Image, base, position, pose, logger, opts...)
}
