package mcl

import (
	"gonum.org/v1/gonum/stat"

	"github.com/greenteawarrior/mobile-robotics/spatialmath"
)

// estimatePose reduces a weighted population to its mean pose. Positions
// use the weighted arithmetic mean; heading uses the weighted circular
// mean, since a linear mean of angles breaks across the ±π wraparound.
func estimatePose(cloud []Particle) spatialmath.Pose {
	xs := make([]float64, len(cloud))
	ys := make([]float64, len(cloud))
	thetas := make([]float64, len(cloud))
	weights := make([]float64, len(cloud))
	for i, p := range cloud {
		xs[i] = p.Pose.X
		ys[i] = p.Pose.Y
		thetas[i] = p.Pose.Theta
		weights[i] = p.Weight
	}
	return spatialmath.Pose{
		X:     stat.Mean(xs, weights),
		Y:     stat.Mean(ys, weights),
		Theta: stat.CircularMean(thetas, weights),
	}
}
