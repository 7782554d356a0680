package systems

import (
	"testing"

	"github.com/pthm-cable/botwar/components"
)

func chebyshev(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// TestAStarEmptyField verifies the path length equals the Chebyshev cell distance.
func TestAStarEmptyField(t *testing.T) {
	bounds := components.Bounds{Width: 400, Height: 300}
	pf := NewPathfinder(bounds, 20, nil)

	start := components.Position{X: 30, Y: 30}  // cell (1,1)
	goal := components.Position{X: 350, Y: 210} // cell (17,10)

	path := pf.FindPath(start, goal, 10)
	if path == nil {
		t.Fatal("Expected path, got nil")
	}

	want := chebyshev(1, 1, 17, 10)
	if len(path) != want {
		t.Errorf("Path length = %d, want %d", len(path), want)
	}

	last := path[len(path)-1]
	if last.X != 340 || last.Y != 200 {
		t.Errorf("Last waypoint = %v, want goal corner (340, 200)", last)
	}

	// Consecutive waypoints must be adjacent cells
	prevX, prevY := 1, 1
	for i, wp := range path {
		gx, gy := int(wp.X/20), int(wp.Y/20)
		if chebyshev(prevX, prevY, gx, gy) != 1 {
			t.Fatalf("Waypoint %d at cell (%d,%d) not adjacent to (%d,%d)", i, gx, gy, prevX, prevY)
		}
		prevX, prevY = gx, gy
	}
}

// TestAStarSameCell verifies a goal in the start cell yields one waypoint.
func TestAStarSameCell(t *testing.T) {
	pf := NewPathfinder(components.Bounds{Width: 200, Height: 200}, 20, nil)

	path := pf.FindPath(components.Position{X: 41, Y: 41}, components.Position{X: 55, Y: 58}, 5)
	if len(path) != 1 {
		t.Fatalf("Expected 1 waypoint, got %d", len(path))
	}
	if path[0].X != 40 || path[0].Y != 40 {
		t.Errorf("Waypoint = %v, want (40, 40)", path[0])
	}
}

// TestAStarBlockedGoal verifies an invalid goal cell yields no path.
func TestAStarBlockedGoal(t *testing.T) {
	obstacles := []components.Obstacle{{Pos: components.Position{X: 200, Y: 150}, Radius: 30}}
	pf := NewPathfinder(components.Bounds{Width: 400, Height: 300}, 20, obstacles)

	path := pf.FindPath(components.Position{X: 30, Y: 30}, components.Position{X: 205, Y: 155}, 10)
	if path != nil {
		t.Errorf("Expected nil path to blocked goal, got %d waypoints", len(path))
	}
	if pf.CellValid(components.Position{X: 205, Y: 155}, 10) {
		t.Error("Goal cell should be invalid")
	}
}

// TestAStarAroundObstacle verifies the path detours through valid cells only.
func TestAStarAroundObstacle(t *testing.T) {
	obstacles := []components.Obstacle{{Pos: components.Position{X: 200, Y: 150}, Radius: 40}}
	pf := NewPathfinder(components.Bounds{Width: 400, Height: 300}, 20, obstacles)
	radius := 15.0

	path := pf.FindPath(components.Position{X: 50, Y: 150}, components.Position{X: 350, Y: 150}, radius)
	if path == nil {
		t.Fatal("Expected path around obstacle, got nil")
	}

	grid := pf.Grid(radius)
	for i, wp := range path {
		gx, gy := grid.WorldToGrid(wp)
		center := grid.CellCenter(gx, gy)
		if center.Dist(obstacles[0].Pos) <= obstacles[0].Radius+radius {
			t.Errorf("Waypoint %d at %v is inside the inflated obstacle", i, wp)
		}
	}

	last := path[len(path)-1]
	if last.X != 340 || last.Y != 140 {
		t.Errorf("Last waypoint = %v, want goal corner (340, 140)", last)
	}
}

// TestAStarUnreachable verifies a walled-off goal yields no path.
func TestAStarUnreachable(t *testing.T) {
	// A column of rocks splits the map into two halves.
	var obstacles []components.Obstacle
	for y := 0.0; y <= 300; y += 20 {
		obstacles = append(obstacles, components.Obstacle{Pos: components.Position{X: 200, Y: y}, Radius: 25})
	}
	pf := NewPathfinder(components.Bounds{Width: 400, Height: 300}, 20, obstacles)

	path := pf.FindPath(components.Position{X: 30, Y: 150}, components.Position{X: 370, Y: 150}, 5)
	if path != nil {
		t.Errorf("Expected nil path, got %d waypoints", len(path))
	}
}

// TestAStarDeterministic verifies repeated searches return identical paths.
func TestAStarDeterministic(t *testing.T) {
	obstacles := []components.Obstacle{
		{Pos: components.Position{X: 150, Y: 100}, Radius: 30},
		{Pos: components.Position{X: 250, Y: 200}, Radius: 30},
	}
	pf := NewPathfinder(components.Bounds{Width: 400, Height: 300}, 20, obstacles)
	start := components.Position{X: 20, Y: 20}
	goal := components.Position{X: 380, Y: 280}

	first := pf.FindPath(start, goal, 12)
	for run := 0; run < 5; run++ {
		again := NewPathfinder(components.Bounds{Width: 400, Height: 300}, 20, obstacles).FindPath(start, goal, 12)
		if len(again) != len(first) {
			t.Fatalf("Run %d: length %d != %d", run, len(again), len(first))
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("Run %d: waypoint %d differs: %v vs %v", run, i, again[i], first[i])
			}
		}
	}
}

// TestNavGridCachedPerRadius verifies grids are reused for equal radii.
func TestNavGridCachedPerRadius(t *testing.T) {
	pf := NewPathfinder(components.Bounds{Width: 200, Height: 200}, 20, nil)
	if pf.Grid(10) != pf.Grid(10) {
		t.Error("Expected cached grid for same radius")
	}
	if pf.Grid(10) == pf.Grid(20) {
		t.Error("Expected distinct grids for different radii")
	}
}
