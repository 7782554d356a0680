// Package systems provides the battle's grid, pathfinding, obstacle and projectile systems.
package systems

import (
	"github.com/pthm-cable/botwar/components"
)

// Neighbor holds a nearby circle with precomputed spatial data.
type Neighbor struct {
	Index  int     // Index into the caller's slice
	DistSq float64 // Squared centre distance from the query origin
}

// SpatialGrid buckets circles by cell for radius queries.
// The map is bounded; positions outside it are clamped onto the edge cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int
	pos      []components.Position
}

// NewSpatialGrid creates a spatial grid covering the given bounds.
func NewSpatialGrid(bounds components.Bounds, cellSize float64) *SpatialGrid {
	cols := int(bounds.Width/cellSize) + 1
	rows := int(bounds.Height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.pos = g.pos[:0]
}

// Insert adds an entry at the given position. Its index is the insertion order.
func (g *SpatialGrid) Insert(p components.Position) int {
	idx := len(g.pos)
	g.pos = append(g.pos, p)
	cell := g.cellIndex(p)
	g.cells[cell] = append(g.cells[cell], idx)
	return idx
}

// QueryRadiusInto appends entries within radius of p to dst and returns it.
// Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p components.Position, radius float64) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.colRow(p)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}
			for _, idx := range g.cells[row*g.cols+col] {
				q := g.pos[idx]
				dx, dy := q.X-p.X, q.Y-p.Y
				distSq := dx*dx + dy*dy
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: idx, DistSq: distSq})
				}
			}
		}
	}
	return dst
}

// Len returns the number of inserted entries.
func (g *SpatialGrid) Len() int { return len(g.pos) }

func (g *SpatialGrid) colRow(p components.Position) (int, int) {
	return clampInt(int(p.X/g.cellSize), 0, g.cols-1), clampInt(int(p.Y/g.cellSize), 0, g.rows-1)
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(p components.Position) int {
	col, row := g.colRow(p)
	return row*g.cols + col
}
