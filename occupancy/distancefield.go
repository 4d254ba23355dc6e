package occupancy

import (
	"context"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/greenteawarrior/mobile-robotics/utils"
)

// ErrEmptyMap is returned when a distance field is requested for a grid
// with no occupied cells; nearest-obstacle distance is undefined there.
var ErrEmptyMap = errors.New("occupancy grid has no occupied cells")

// DistanceField stores, for every cell of an occupancy grid, the distance
// in meters to the nearest occupied cell. It is built once, is immutable
// afterwards, and is safe for concurrent reads.
type DistanceField struct {
	grid      *Grid
	distances []float64
}

// NewDistanceField precomputes the field for the given grid. Nearest
// occupied cells are found through a k-d tree over the occupied cell
// coordinates; index-space distances are scaled by the grid resolution.
// Construction blocks until the whole field is filled in.
func NewDistanceField(ctx context.Context, grid *Grid) (*DistanceField, error) {
	var occupied kdtree.Points
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			if grid.Occupied(x, y) {
				occupied = append(occupied, kdtree.Point{float64(x), float64(y)})
			}
		}
	}
	if len(occupied) == 0 {
		return nil, ErrEmptyMap
	}
	tree := kdtree.New(occupied, false)

	distances := make([]float64, grid.Width()*grid.Height())
	err := utils.GroupWorkParallel(ctx, grid.Height(), func(from, to int) {
		for y := from; y < to; y++ {
			for x := 0; x < grid.Width(); x++ {
				// Nearest reports the squared index-space distance
				_, distSq := tree.Nearest(kdtree.Point{float64(x), float64(y)})
				distances[grid.Index(x, y)] = math.Sqrt(distSq) * grid.Resolution()
			}
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "building distance field")
	}
	return &DistanceField{grid: grid, distances: distances}, nil
}

// Grid returns the grid the field was built from.
func (df *DistanceField) Grid() *Grid {
	return df.grid
}

// ClosestToPoint returns the distance in meters from the given world point
// to the nearest occupied cell. Points outside the map return NaN; pose
// hypotheses drift off the map in normal operation, so callers treat the
// sentinel as an expected condition rather than an error.
func (df *DistanceField) ClosestToPoint(pt r2.Point) float64 {
	x, y := df.grid.CellOf(pt)
	if !df.grid.InBounds(x, y) {
		return math.NaN()
	}
	return df.distances[df.grid.Index(x, y)]
}
