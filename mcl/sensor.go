package mcl

import (
	"context"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/greenteawarrior/mobile-robotics/occupancy"
	"github.com/greenteawarrior/mobile-robotics/utils"
)

// LaserScan is one sweep of range readings taken at a fixed angular
// increment, expressed in the robot body frame. A reading of zero (or any
// value outside the configured valid interval) marks the beam invalid.
type LaserScan struct {
	// AngleMin is the body-frame angle of the first beam.
	AngleMin float64
	// AngleIncrement is the angle between consecutive beams.
	AngleIncrement float64
	Ranges         []float64
}

// AngleAt returns the body-frame angle of beam i.
func (s LaserScan) AngleAt(i int) float64 {
	return s.AngleMin + float64(i)*s.AngleIncrement
}

// beam is a valid reading paired with its body-frame angle.
type beam struct {
	angle    float64
	measured float64
}

// sensorModel scores particles against a scan using the likelihood field:
// each selected beam's endpoint is projected from the particle's pose and
// the distance field is evaluated there.
type sensorModel struct {
	field     *occupancy.DistanceField
	density   distuv.Normal
	maxRange  float64
	beamCount int
}

func newSensorModel(cfg Config, field *occupancy.DistanceField) *sensorModel {
	return &sensorModel{
		field:     field,
		density:   distuv.Normal{Mu: 0, Sigma: cfg.SensorSigmaM},
		maxRange:  cfg.MaxValidRangeM,
		beamCount: cfg.BeamSubsampleCount,
	}
}

// validBeams filters readings to the open interval (0, maxRange), keeping
// beam order.
func (s *sensorModel) validBeams(scan LaserScan) []beam {
	var out []beam
	for i, r := range scan.Ranges {
		if r > 0 && r < s.maxRange {
			out = append(out, beam{angle: scan.AngleAt(i), measured: r})
		}
	}
	return out
}

// selectBeams picks beamCount evenly spaced beams from the valid set.
func (s *sensorModel) selectBeams(valid []beam) []beam {
	out := make([]beam, s.beamCount)
	for i := 0; i < s.beamCount; i++ {
		out[i] = valid[i*len(valid)/s.beamCount]
	}
	return out
}

// weigh returns the particle rescored against the selected beams.
// Per-beam densities combine as a product of (1+density): a heuristic, not
// a normalized likelihood, but strictly positive and monotonically higher
// the better the beams agree with the map, and a single bad beam cannot
// zero it out. A beam whose endpoint lands off the map contributes
// nothing.
func (s *sensorModel) weigh(p Particle, beams []beam) Particle {
	product := 1.0
	for _, b := range beams {
		heading := p.Pose.Theta + b.angle
		endpoint := r2.Point{
			X: p.Pose.X + math.Cos(heading)*b.measured,
			Y: p.Pose.Y + math.Sin(heading)*b.measured,
		}
		closest := s.field.ClosestToPoint(endpoint)
		if math.IsNaN(closest) {
			continue
		}
		product *= 1 + s.density.Prob(closest)
	}
	p.Weight = product
	return p
}

// update rescores the whole population against the scan, in parallel
// across particles. When fewer valid beams than the subsample count are
// available it reports false and leaves every weight alone; the caller
// continues the cycle on the prior weights.
func (s *sensorModel) update(ctx context.Context, cloud []Particle, scan LaserScan) (bool, error) {
	valid := s.validBeams(scan)
	if len(valid) < s.beamCount {
		return false, nil
	}
	beams := s.selectBeams(valid)
	err := utils.GroupWorkParallel(ctx, len(cloud), func(from, to int) {
		for i := from; i < to; i++ {
			cloud[i] = s.weigh(cloud[i], beams)
		}
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
