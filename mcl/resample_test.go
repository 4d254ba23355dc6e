package mcl

import (
	"testing"

	"go.viam.com/test"
	"golang.org/x/exp/rand"

	"github.com/greenteawarrior/mobile-robotics/spatialmath"
)

func TestResampleCollapsedMass(t *testing.T) {
	// all probability on one particle legitimately collapses the
	// population to copies of that pose
	cloud := []Particle{
		{Pose: spatialmath.NewPose(1, 1, 0.5), Weight: 0},
		{Pose: spatialmath.NewPose(4, -2, 0.1), Weight: 1},
		{Pose: spatialmath.NewPose(9, 9, -0.5), Weight: 0},
	}
	out := resample(cloud, 30, rand.New(rand.NewSource(3)))
	test.That(t, out, test.ShouldHaveLength, 30)
	for _, p := range out {
		test.That(t, p.Pose, test.ShouldResemble, spatialmath.NewPose(4, -2, 0.1))
	}
}

func TestResampleProportionalToWeight(t *testing.T) {
	cloud := []Particle{
		{Pose: spatialmath.NewPose(0, 0, 0), Weight: 0.9},
		{Pose: spatialmath.NewPose(1, 0, 0), Weight: 0.1},
	}
	const n = 20000
	out := resample(cloud, n, rand.New(rand.NewSource(11)))

	var heavy int
	for _, p := range out {
		if p.Pose.X == 0 {
			heavy++
		}
	}
	test.That(t, float64(heavy)/n, test.ShouldAlmostEqual, 0.9, 0.02)
}

func TestResampleMeanConvergesToPopulation(t *testing.T) {
	// a population concentrated at one pose keeps its mean there across
	// repeated resampling
	cloud := make([]Particle, 30)
	for i := range cloud {
		cloud[i] = Particle{Pose: spatialmath.NewPose(2, 3, 0.25), Weight: 1.0 / 30}
	}
	rnd := rand.New(rand.NewSource(5))
	for gen := 0; gen < 50; gen++ {
		cloud = resample(cloud, len(cloud), rnd)
		test.That(t, normalizeCloud(cloud), test.ShouldBeNil)
	}
	mean := estimatePose(cloud)
	test.That(t, mean.X, test.ShouldAlmostEqual, 2)
	test.That(t, mean.Y, test.ShouldAlmostEqual, 3)
	test.That(t, mean.Theta, test.ShouldAlmostEqual, 0.25)
}

func TestResampleSeversAliasing(t *testing.T) {
	cloud := []Particle{{Pose: spatialmath.NewPose(1, 2, 3), Weight: 1}}
	out := resample(cloud, 2, rand.New(rand.NewSource(1)))
	out[0].Pose.X = 99
	out[0].Weight = 99
	test.That(t, cloud[0].Pose.X, test.ShouldEqual, 1)
	test.That(t, cloud[0].Weight, test.ShouldEqual, 1)
	test.That(t, out[1].Pose.X, test.ShouldEqual, 1)
}
