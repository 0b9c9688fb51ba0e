package pushbroom

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/linescan/spatialmath"
	"go.viam.com/linescan/utils"
)

// Config describes a linear pushbroom sensor. Attitude angles are in degrees and orient the sensor frame in the
// model frame with roll about x, then pitch about y, then yaw about z.
type Config struct {
	Samples         int       `json:"samples" yaml:"samples"`
	Lines           int       `json:"lines" yaml:"lines"`
	StartTime       float64   `json:"start_time" yaml:"start_time"`
	LineDuration    float64   `json:"line_duration" yaml:"line_duration"`
	FocalLengthPx   float64   `json:"focal_length_px" yaml:"focal_length_px"`
	PrincipalSample float64   `json:"principal_sample" yaml:"principal_sample"`
	Position        r3.Vector `json:"position" yaml:"position"`
	Velocity        r3.Vector `json:"velocity" yaml:"velocity"`
	RollDeg         float64   `json:"roll_deg" yaml:"roll_deg"`
	PitchDeg        float64   `json:"pitch_deg" yaml:"pitch_deg"`
	YawDeg          float64   `json:"yaw_deg" yaml:"yaw_deg"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	prefix := path
	if prefix != "" {
		prefix += "."
	}
	var errs error
	if cfg.Samples <= 0 {
		errs = multierr.Append(errs, errors.Errorf("%ssamples: must be positive, got %d", prefix, cfg.Samples))
	}
	if cfg.Lines <= 0 {
		errs = multierr.Append(errs, errors.Errorf("%slines: must be positive, got %d", prefix, cfg.Lines))
	}
	if cfg.LineDuration <= 0 {
		errs = multierr.Append(errs, errors.Errorf("%sline_duration: must be positive, got %g", prefix, cfg.LineDuration))
	}
	if cfg.FocalLengthPx <= 0 {
		errs = multierr.Append(errs, errors.Errorf("%sfocal_length_px: must be positive, got %g", prefix, cfg.FocalLengthPx))
	}
	if cfg.Velocity.Norm() == 0 {
		errs = multierr.Append(errs, errors.Errorf("%svelocity: must be non-zero", prefix))
	}
	return errs
}

// Orientation returns the attitude as an orientation.
func (cfg *Config) Orientation() spatialmath.Orientation {
	return &spatialmath.EulerAngles{
		Roll:  utils.DegToRad(cfg.RollDeg),
		Pitch: utils.DegToRad(cfg.PitchDeg),
		Yaw:   utils.DegToRad(cfg.YawDeg),
	}
}

// DecodeConfig decodes and validates an attribute map.
func DecodeConfig(attributes utils.AttributeMap) (*Config, error) {
	cfg, err := utils.DecodeAttributes[Config](attributes)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfigFile reads a sensor config from a JSON or YAML file.
func ReadConfigFile(path string) (*Config, error) {
	attrs, err := utils.ReadAttributesFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeConfig(attrs)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}
