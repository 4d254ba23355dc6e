// Package occupancy provides the static occupancy grid the robot localizes
// against and the precomputed nearest-obstacle distance field derived from
// it.
package occupancy

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/greenteawarrior/mobile-robotics/spatialmath"
)

// Grid is a static occupancy map. Cells are stored in row-major order and
// follow the usual convention: a negative value is unknown, zero is free,
// and a positive value is occupied. A grid is immutable once constructed.
type Grid struct {
	width      int
	height     int
	resolution float64
	origin     spatialmath.Pose
	cells      []int8
}

// NewGrid returns a grid over the given row-major cells. The origin is the
// world pose of cell (0,0)'s lower-left corner; only its translation is
// used, so maps with a rotated origin must be rotated by the producer.
func NewGrid(width, height int, resolution float64, origin spatialmath.Pose, cells []int8) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	if resolution <= 0 {
		return nil, errors.Errorf("invalid grid resolution %v", resolution)
	}
	if len(cells) != width*height {
		return nil, errors.Errorf("grid has %d cells; need %d", len(cells), width*height)
	}
	return &Grid{
		width:      width,
		height:     height,
		resolution: resolution,
		origin:     origin,
		cells:      cells,
	}, nil
}

// Width returns the number of cells along x.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of cells along y.
func (g *Grid) Height() int {
	return g.height
}

// Resolution returns the cell size in meters.
func (g *Grid) Resolution() float64 {
	return g.resolution
}

// Origin returns the world pose of the grid's lower-left corner.
func (g *Grid) Origin() spatialmath.Pose {
	return g.origin
}

// Extent returns the world-frame size of the grid in meters.
func (g *Grid) Extent() r2.Point {
	return r2.Point{
		X: float64(g.width) * g.resolution,
		Y: float64(g.height) * g.resolution,
	}
}

// Index returns the row-major index of the given cell.
func (g *Grid) Index(x, y int) int {
	return y*g.width + x
}

// InBounds reports whether the given cell indices lie inside the grid.
// Both comparisons are inclusive-exclusive; width and height themselves
// are already out of bounds.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Occupied reports whether the given in-bounds cell holds an obstacle.
func (g *Grid) Occupied(x, y int) bool {
	return g.cells[g.Index(x, y)] > 0
}

// CellOf converts a world point to cell indices. The result may be out of
// bounds; callers check with InBounds.
func (g *Grid) CellOf(pt r2.Point) (int, int) {
	x := int(math.Floor((pt.X - g.origin.X) / g.resolution))
	y := int(math.Floor((pt.Y - g.origin.Y) / g.resolution))
	return x, y
}
