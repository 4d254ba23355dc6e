package mcl

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/greenteawarrior/mobile-robotics/spatialmath"
)

// odometryDelta is the relative motion between two odometry samples in
// rotate-translate-rotate form: turn by rot1 toward the direction of
// travel, translate by trans, then turn by rot2 to the final heading.
type odometryDelta struct {
	rot1  float64
	trans float64
	rot2  float64
}

// decomposeOdometry splits the motion from prev to cur. With zero
// translation, rot1 and rot2 cancel except for the net heading change.
func decomposeOdometry(prev, cur spatialmath.Pose) odometryDelta {
	dx := cur.X - prev.X
	dy := cur.Y - prev.Y
	rot1 := math.Atan2(dy, dx) - prev.Theta
	return odometryDelta{
		rot1:  rot1,
		trans: math.Hypot(dx, dy),
		rot2:  (cur.Theta - prev.Theta) - rot1,
	}
}

// motionModel advances particles through decomposed odometry with
// independently drawn noise per particle: a Normal radial offset in a
// uniformly random direction plus Normal heading noise.
type motionModel struct {
	radial      distuv.Normal
	orientation distuv.Normal
	noiseDir    distuv.Uniform
}

func newMotionModel(cfg Config, src rand.Source) *motionModel {
	return &motionModel{
		radial:      distuv.Normal{Mu: 0, Sigma: cfg.RadialNoiseSigmaM, Src: src},
		orientation: distuv.Normal{Mu: 0, Sigma: cfg.OrientationNoiseSigmaRad, Src: src},
		noiseDir:    distuv.Uniform{Min: 0, Max: math.Pi, Src: src},
	}
}

// apply returns the particle advanced by the delta plus fresh noise. The
// weight is untouched.
func (m *motionModel) apply(p Particle, d odometryDelta) Particle {
	radius := m.radial.Rand()
	dir := m.noiseDir.Rand()
	orient := m.orientation.Rand()

	theta := p.Pose.Theta + d.rot1
	return Particle{
		Pose: spatialmath.Pose{
			X:     p.Pose.X + math.Cos(theta)*d.trans + radius*math.Cos(dir),
			Y:     p.Pose.Y + math.Sin(theta)*d.trans + radius*math.Sin(dir),
			Theta: theta + d.rot2 + orient,
		},
		Weight: p.Weight,
	}
}

// predict advances the whole population in place. The noise draws share a
// single random source, so prediction stays on one goroutine.
func (m *motionModel) predict(cloud []Particle, d odometryDelta) {
	for i := range cloud {
		cloud[i] = m.apply(cloud[i], d)
	}
}
