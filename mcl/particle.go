package mcl

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/greenteawarrior/mobile-robotics/spatialmath"
)

// Particle is one pose hypothesis together with its importance weight. A
// weight only means anything relative to the rest of the same generation;
// nothing here keeps the population normalized.
type Particle struct {
	Pose   spatialmath.Pose
	Weight float64
}

// cloneCloud returns an owned copy of the given population.
func cloneCloud(cloud []Particle) []Particle {
	out := make([]Particle, len(cloud))
	copy(out, cloud)
	return out
}

// normalizeCloud scales weights in place so the population sums to one.
// It fails with ErrDegenerateWeights when the total is zero, negative, or
// NaN, leaving the weights untouched.
func normalizeCloud(cloud []Particle) error {
	weights := make([]float64, len(cloud))
	for i, p := range cloud {
		weights[i] = p.Weight
	}
	total := floats.Sum(weights)
	if math.IsNaN(total) || total <= 0 {
		return ErrDegenerateWeights
	}
	for i := range cloud {
		cloud[i].Weight /= total
	}
	return nil
}
