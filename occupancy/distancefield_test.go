package occupancy

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/greenteawarrior/mobile-robotics/spatialmath"
)

func singleObstacleGrid(t *testing.T, size int, resolution float64, ox, oy int) *Grid {
	t.Helper()
	cells := make([]int8, size*size)
	cells[oy*size+ox] = 100
	g, err := NewGrid(size, size, resolution, spatialmath.Pose{}, cells)
	test.That(t, err, test.ShouldBeNil)
	return g
}

func TestDistanceFieldEmptyMap(t *testing.T) {
	g, err := NewGrid(5, 5, 1, spatialmath.Pose{}, make([]int8, 25))
	test.That(t, err, test.ShouldBeNil)
	_, err = NewDistanceField(context.Background(), g)
	test.That(t, errors.Is(err, ErrEmptyMap), test.ShouldBeTrue)
}

func TestDistanceFieldSingleObstacle(t *testing.T) {
	g := singleObstacleGrid(t, 10, 1.0, 5, 5)
	df, err := NewDistanceField(context.Background(), g)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, df.ClosestToPoint(r2.Point{X: 5, Y: 5}), test.ShouldAlmostEqual, 0)
	test.That(t, df.ClosestToPoint(r2.Point{X: 0, Y: 0}), test.ShouldAlmostEqual, 5*math.Sqrt2, 1e-9)
	test.That(t, df.ClosestToPoint(r2.Point{X: 5, Y: 0}), test.ShouldAlmostEqual, 5)
	test.That(t, df.ClosestToPoint(r2.Point{X: 9, Y: 5}), test.ShouldAlmostEqual, 4)
}

func TestDistanceFieldResolutionScaling(t *testing.T) {
	g := singleObstacleGrid(t, 10, 0.5, 5, 5)
	df, err := NewDistanceField(context.Background(), g)
	test.That(t, err, test.ShouldBeNil)

	// cell (0,0) is five cells away on each axis, each 0.5 m wide
	test.That(t, df.ClosestToPoint(r2.Point{X: 0, Y: 0}), test.ShouldAlmostEqual, 2.5*math.Sqrt2, 1e-9)
	test.That(t, df.ClosestToPoint(r2.Point{X: 2.6, Y: 2.6}), test.ShouldAlmostEqual, 0)
}

func TestDistanceFieldMonotonicAlongPath(t *testing.T) {
	g := singleObstacleGrid(t, 20, 1.0, 3, 10)
	df, err := NewDistanceField(context.Background(), g)
	test.That(t, err, test.ShouldBeNil)

	// walking straight away from the only obstacle, distance never decreases
	prev := df.ClosestToPoint(r2.Point{X: 3.5, Y: 10.5})
	test.That(t, prev, test.ShouldAlmostEqual, 0)
	for x := 4.5; x < 20; x++ {
		d := df.ClosestToPoint(r2.Point{X: x, Y: 10.5})
		test.That(t, d, test.ShouldBeGreaterThanOrEqualTo, prev)
		prev = d
	}
}

func TestDistanceFieldOutOfBounds(t *testing.T) {
	g := singleObstacleGrid(t, 10, 1.0, 5, 5)
	df, err := NewDistanceField(context.Background(), g)
	test.That(t, err, test.ShouldBeNil)

	exterior := []r2.Point{
		{X: -0.5, Y: 5},
		{X: 10.0, Y: 5},
		{X: 5, Y: -0.01},
		{X: 5, Y: 10.5},
		{X: -1, Y: -1},
		{X: 10, Y: 10},
		{X: -0.001, Y: 10.001},
	}
	for _, pt := range exterior {
		test.That(t, math.IsNaN(df.ClosestToPoint(pt)), test.ShouldBeTrue)
	}

	// the far corner cell itself is still inside
	test.That(t, math.IsNaN(df.ClosestToPoint(r2.Point{X: 9.999, Y: 9.999})), test.ShouldBeFalse)
}

func TestDistanceFieldOffsetOrigin(t *testing.T) {
	cells := make([]int8, 100)
	cells[5*10+5] = 1
	g, err := NewGrid(10, 10, 1.0, spatialmath.NewPose(-5, -5, 0), cells)
	test.That(t, err, test.ShouldBeNil)
	df, err := NewDistanceField(context.Background(), g)
	test.That(t, err, test.ShouldBeNil)

	// world (0,0) is now the occupied cell
	test.That(t, df.ClosestToPoint(r2.Point{}), test.ShouldAlmostEqual, 0)
	test.That(t, df.ClosestToPoint(r2.Point{X: -5, Y: -5}), test.ShouldAlmostEqual, 5*math.Sqrt2, 1e-9)
	test.That(t, math.IsNaN(df.ClosestToPoint(r2.Point{X: 5, Y: 0})), test.ShouldBeTrue)
}
