package systems

import (
	"container/heap"
	"math"

	"github.com/pthm-cable/botwar/components"
)

// Pathfinder provides grid A* pathfinding over a static obstacle field.
// Navigation grids are built lazily, one per requester radius.
//
// Every move (orthogonal or diagonal) costs 1, and the heuristic is the
// Euclidean cell distance to the goal.
type Pathfinder struct {
	bounds    components.Bounds
	cellSize  float64
	obstacles []components.Obstacle
	grids     map[float64]*NavGrid

	// Reusable data structures (cleared between searches)
	openHeap *nodeHeap
	cameFrom map[int]int
	gScore   map[int]int
	seq      int
}

// astarNode is an entry in the A* open set.
type astarNode struct {
	gx, gy int
	g      int     // cost when pushed; stale entries are skipped
	f      float64 // f = g + h (priority)
	seq    int     // insertion order for deterministic ties
	index  int     // heap index
}

// nodeHeap implements heap.Interface for the A* open set.
// Equal priorities pop in insertion order.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// neighborOffsets lists the 8-connected moves in expansion order.
var neighborOffsets = [8][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

// NewPathfinder creates a pathfinder for the given map and obstacles.
func NewPathfinder(bounds components.Bounds, cellSize float64, obstacles []components.Obstacle) *Pathfinder {
	return &Pathfinder{
		bounds:    bounds,
		cellSize:  cellSize,
		obstacles: obstacles,
		grids:     make(map[float64]*NavGrid, 4),
		openHeap:  &nodeHeap{},
		cameFrom:  make(map[int]int, 256),
		gScore:    make(map[int]int, 256),
	}
}

// Grid returns the navigation grid inflated for the given requester radius.
func (a *Pathfinder) Grid(radius float64) *NavGrid {
	grid, ok := a.grids[radius]
	if !ok {
		grid = NewNavGrid(a.bounds, a.cellSize, a.obstacles, radius)
		a.grids[radius] = grid
	}
	return grid
}

// CellValid reports whether the cell containing p is open for the given radius.
func (a *Pathfinder) CellValid(p components.Position, radius float64) bool {
	grid := a.Grid(radius)
	gx, gy := grid.ClampCell(grid.WorldToGrid(p))
	return !grid.IsBlocked(gx, gy)
}

// FindPath computes a path from start to goal for a requester of the given radius.
// Waypoints are cell origin corners in world coordinates, ordered from the first
// step after the start cell to the goal cell. A goal in the start cell yields the
// goal corner alone. Returns nil if the goal cell is blocked or unreachable.
func (a *Pathfinder) FindPath(start, goal components.Position, radius float64) []components.Position {
	grid := a.Grid(radius)

	startGX, startGY := grid.ClampCell(grid.WorldToGrid(start))
	goalGX, goalGY := grid.ClampCell(grid.WorldToGrid(goal))

	if grid.IsBlocked(goalGX, goalGY) {
		return nil
	}

	if startGX == goalGX && startGY == goalGY {
		return []components.Position{grid.GridToWorld(goalGX, goalGY)}
	}

	// Clear reusable data structures
	*a.openHeap = (*a.openHeap)[:0]
	for k := range a.cameFrom {
		delete(a.cameFrom, k)
	}
	for k := range a.gScore {
		delete(a.gScore, k)
	}
	a.seq = 0

	startID := startGY*grid.width + startGX
	goalID := goalGY*grid.width + goalGX

	a.gScore[startID] = 0
	a.push(startGX, startGY, 0, heuristic(startGX, startGY, goalGX, goalGY))

	for a.openHeap.Len() > 0 {
		current := heap.Pop(a.openHeap).(*astarNode)
		currentID := current.gy*grid.width + current.gx

		// Skip entries superseded by a cheaper push
		if current.g > a.gScore[currentID] {
			continue
		}

		if currentID == goalID {
			return a.reconstructPath(grid, startID, goalID)
		}

		for _, off := range neighborOffsets {
			ngx, ngy := current.gx+off[0], current.gy+off[1]
			if grid.IsBlocked(ngx, ngy) {
				continue
			}

			neighborID := ngy*grid.width + ngx
			tentativeG := current.g + 1

			if existingG, exists := a.gScore[neighborID]; exists && tentativeG >= existingG {
				continue
			}

			a.cameFrom[neighborID] = currentID
			a.gScore[neighborID] = tentativeG
			a.push(ngx, ngy, tentativeG, float64(tentativeG)+heuristic(ngx, ngy, goalGX, goalGY))
		}
	}

	// Goal unreachable
	return nil
}

func (a *Pathfinder) push(gx, gy, g int, f float64) {
	heap.Push(a.openHeap, &astarNode{gx: gx, gy: gy, g: g, f: f, seq: a.seq})
	a.seq++
}

// heuristic computes the Euclidean distance heuristic for A*.
func heuristic(gx1, gy1, gx2, gy2 int) float64 {
	dx := float64(gx2 - gx1)
	dy := float64(gy2 - gy1)
	return math.Sqrt(dx*dx + dy*dy)
}

// reconstructPath walks parent links from goal to start and reverses,
// dropping the start cell.
func (a *Pathfinder) reconstructPath(grid *NavGrid, startID, goalID int) []components.Position {
	var pathIDs []int
	for current := goalID; current != startID; {
		pathIDs = append(pathIDs, current)
		parent, ok := a.cameFrom[current]
		if !ok {
			break
		}
		current = parent
	}

	path := make([]components.Position, len(pathIDs))
	for i := range pathIDs {
		id := pathIDs[len(pathIDs)-1-i]
		path[i] = grid.GridToWorld(id%grid.width, id/grid.width)
	}
	return path
}
