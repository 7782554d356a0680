package systems

import (
	"github.com/pthm-cable/botwar/components"
)

// NavGrid stores a navigation grid for A* pathfinding.
// Cells are marked as blocked (true) or open (false) for one requester radius.
type NavGrid struct {
	cells    []bool  // true = blocked
	cellSize float64 // world units per cell
	width    int     // grid width in cells
	height   int     // grid height in cells
}

// NewNavGrid builds a grid over the map where a cell is blocked if its center
// lies within obstacle.Radius + inflation of any obstacle.
func NewNavGrid(bounds components.Bounds, cellSize float64, obstacles []components.Obstacle, inflation float64) *NavGrid {
	w := int(bounds.Width / cellSize)
	h := int(bounds.Height / cellSize)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	grid := &NavGrid{
		cells:    make([]bool, w*h),
		cellSize: cellSize,
		width:    w,
		height:   h,
	}

	for gy := 0; gy < h; gy++ {
		for gx := 0; gx < w; gx++ {
			center := grid.CellCenter(gx, gy)
			for _, obs := range obstacles {
				if center.Dist(obs.Pos) <= obs.Radius+inflation {
					grid.cells[gy*w+gx] = true
					break
				}
			}
		}
	}
	return grid
}

// Width returns the grid width in cells.
func (g *NavGrid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *NavGrid) Height() int { return g.height }

// InBounds reports whether the cell exists.
func (g *NavGrid) InBounds(gx, gy int) bool {
	return gx >= 0 && gx < g.width && gy >= 0 && gy < g.height
}

// IsBlocked returns true if the cell is blocked or out of bounds.
func (g *NavGrid) IsBlocked(gx, gy int) bool {
	if !g.InBounds(gx, gy) {
		return true
	}
	return g.cells[gy*g.width+gx]
}

// WorldToGrid converts a world position to grid coordinates (floor division).
func (g *NavGrid) WorldToGrid(p components.Position) (int, int) {
	return floorDiv(p.X, g.cellSize), floorDiv(p.Y, g.cellSize)
}

// GridToWorld returns the origin corner of a cell in world coordinates.
func (g *NavGrid) GridToWorld(gx, gy int) components.Position {
	return components.Position{X: float64(gx) * g.cellSize, Y: float64(gy) * g.cellSize}
}

// CellCenter returns the center of a cell in world coordinates.
func (g *NavGrid) CellCenter(gx, gy int) components.Position {
	return components.Position{X: (float64(gx) + 0.5) * g.cellSize, Y: (float64(gy) + 0.5) * g.cellSize}
}

// ClampCell pulls grid coordinates onto the nearest existing cell.
func (g *NavGrid) ClampCell(gx, gy int) (int, int) {
	return clampInt(gx, 0, g.width-1), clampInt(gy, 0, g.height-1)
}

func floorDiv(v, size float64) int {
	q := v / size
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
