package mcl

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.NumParticles, test.ShouldEqual, 30)
	test.That(t, cfg.AngleThresholdRad, test.ShouldAlmostEqual, 0.04*2*math.Pi)
	test.That(t, cfg.BeamSubsampleCount, test.ShouldEqual, 25)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumParticles = 0
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "num_particles")

	cfg = DefaultConfig()
	cfg.MaxValidRangeM = -1
	cfg.SensorSigmaM = 0
	err = cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_valid_range_m")
	test.That(t, err.Error(), test.ShouldContainSubstring, "sensor_sigma_m")

	cfg = DefaultConfig()
	cfg.DistanceThresholdM = -0.1
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
}
