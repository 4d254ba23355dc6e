package mcl

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const tau = 2 * math.Pi

// Config holds the filter's tuning options.
type Config struct {
	// NumParticles is the population size, fixed for the filter's lifetime.
	NumParticles int `json:"num_particles"`
	// DistanceThresholdM is the linear movement in meters required before
	// an update cycle runs.
	DistanceThresholdM float64 `json:"distance_threshold_m"`
	// AngleThresholdRad is the angular movement in radians required before
	// an update cycle runs.
	AngleThresholdRad float64 `json:"angle_threshold_rad"`
	// RadialNoiseSigmaM is the standard deviation of the radial position
	// noise injected per particle during prediction.
	RadialNoiseSigmaM float64 `json:"radial_noise_sigma_m"`
	// OrientationNoiseSigmaRad is the standard deviation of the heading
	// noise injected per particle during prediction.
	OrientationNoiseSigmaRad float64 `json:"orientation_noise_sigma_rad"`
	// MaxValidRangeM is the exclusive upper bound on usable range readings.
	MaxValidRangeM float64 `json:"max_valid_range_m"`
	// BeamSubsampleCount is how many evenly spaced valid beams each
	// weighting pass uses; with fewer valid beams the pass is skipped.
	BeamSubsampleCount int `json:"beam_subsample_count"`
	// SensorSigmaM is the standard deviation of the likelihood-field
	// Gaussian evaluated at each beam endpoint's obstacle distance.
	SensorSigmaM float64 `json:"sensor_sigma_m"`
	// PoseHintSigmaM scatters the population translationally around an
	// externally supplied pose hint.
	PoseHintSigmaM float64 `json:"pose_hint_sigma_m"`
	// PoseHintSigmaRad scatters the population's heading around a hint.
	PoseHintSigmaRad float64 `json:"pose_hint_sigma_rad"`
	// Seed seeds the filter's random draws; zero seeds from the clock.
	Seed uint64 `json:"seed,omitempty"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		NumParticles:             30,
		DistanceThresholdM:       0.04,
		AngleThresholdRad:        0.04 * tau,
		RadialNoiseSigmaM:        0.03,
		OrientationNoiseSigmaRad: 0.03 * tau,
		MaxValidRangeM:           3.5,
		BeamSubsampleCount:       25,
		SensorSigmaM:             0.05,
		PoseHintSigmaM:           0.25,
		PoseHintSigmaRad:         math.Pi / 12,
	}
}

// Validate ensures all parts of the config are valid.
func (c Config) Validate() error {
	var err error
	if c.NumParticles <= 0 {
		err = multierr.Combine(err, errors.New("num_particles must be positive"))
	}
	if c.DistanceThresholdM < 0 {
		err = multierr.Combine(err, errors.New("distance_threshold_m may not be negative"))
	}
	if c.AngleThresholdRad < 0 {
		err = multierr.Combine(err, errors.New("angle_threshold_rad may not be negative"))
	}
	if c.RadialNoiseSigmaM < 0 || c.OrientationNoiseSigmaRad < 0 {
		err = multierr.Combine(err, errors.New("noise sigmas may not be negative"))
	}
	if c.MaxValidRangeM <= 0 {
		err = multierr.Combine(err, errors.New("max_valid_range_m must be positive"))
	}
	if c.BeamSubsampleCount <= 0 {
		err = multierr.Combine(err, errors.New("beam_subsample_count must be positive"))
	}
	if c.SensorSigmaM <= 0 {
		err = multierr.Combine(err, errors.New("sensor_sigma_m must be positive"))
	}
	if c.PoseHintSigmaM < 0 || c.PoseHintSigmaRad < 0 {
		err = multierr.Combine(err, errors.New("pose hint sigmas may not be negative"))
	}
	return err
}
