// Package spatialmath implements the planar geometry used by the
// localization filter: poses, angle arithmetic, and rigid transforms.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// Pose is a position and heading in the plane. Theta is in radians and is
// periodic over 2π; anything comparing or averaging headings must go
// through AngleDiff or a circular mean rather than raw arithmetic.
type Pose struct {
	X     float64
	Y     float64
	Theta float64
}

// NewPose returns a pose at the given position and heading.
func NewPose(x, y, theta float64) Pose {
	return Pose{X: x, Y: y, Theta: theta}
}

// Point returns the translational part of the pose.
func (p Pose) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// TransformPoint maps a point expressed in the pose's own frame into the
// frame the pose is expressed in.
func (p Pose) TransformPoint(pt r2.Point) r2.Point {
	sin, cos := math.Sincos(p.Theta)
	return r2.Point{
		X: p.X + cos*pt.X - sin*pt.Y,
		Y: p.Y + sin*pt.X + cos*pt.Y,
	}
}

// Compose treats both poses as rigid transforms and returns the transform
// equivalent to applying o first and then p.
func (p Pose) Compose(o Pose) Pose {
	pt := p.TransformPoint(o.Point())
	return Pose{X: pt.X, Y: pt.Y, Theta: NormalizeAngle(p.Theta + o.Theta)}
}

// Invert returns the inverse rigid transform, such that
// p.Compose(p.Invert()) is the identity.
func (p Pose) Invert() Pose {
	sin, cos := math.Sincos(p.Theta)
	return Pose{
		X:     -(cos*p.X + sin*p.Y),
		Y:     sin*p.X - cos*p.Y,
		Theta: NormalizeAngle(-p.Theta),
	}
}

// NormalizeAngle maps an angle in radians to the range [-π, π].
func NormalizeAngle(z float64) float64 {
	return math.Atan2(math.Sin(z), math.Cos(z))
}

// AngleDiff returns the signed difference between angles a and b based on
// the closest rotation from b to a. For example, AngleDiff(.1, .2) is -.1
// and AngleDiff(.1, 2π-.1) is .2.
func AngleDiff(a, b float64) float64 {
	a = NormalizeAngle(a)
	b = NormalizeAngle(b)
	d1 := a - b
	d2 := 2*math.Pi - math.Abs(d1)
	if d1 > 0 {
		d2 = -d2
	}
	if math.Abs(d1) < math.Abs(d2) {
		return d1
	}
	return d2
}
