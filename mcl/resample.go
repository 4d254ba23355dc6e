package mcl

import (
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// resample draws n particles with replacement, each drawn with probability
// equal to its normalized weight, and returns them as a fresh generation
// owning its own copies. Each draw is an inverse-CDF lookup (binary
// search) over a cumulative weight array built once per call. If all mass
// sits on one particle the new generation legitimately collapses to n
// copies of it.
func resample(cloud []Particle, n int, rnd *rand.Rand) []Particle {
	weights := make([]float64, len(cloud))
	for i, p := range cloud {
		weights[i] = p.Weight
	}
	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)
	total := cum[len(cum)-1]

	out := make([]Particle, n)
	for i := 0; i < n; i++ {
		j := sort.SearchFloat64s(cum, rnd.Float64()*total)
		if j >= len(cloud) {
			j = len(cloud) - 1
		}
		out[i] = cloud[j]
	}
	return out
}
