package systems

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
)

// ObstacleField is the static set of obstacles for one battle.
type ObstacleField struct {
	Obstacles []components.Obstacle
	index     *SpatialGrid
	maxRadius float64
	scratch   []Neighbor
}

// NewObstacleField indexes an existing obstacle list.
func NewObstacleField(bounds components.Bounds, obstacles []components.Obstacle) *ObstacleField {
	f := &ObstacleField{index: NewSpatialGrid(bounds, 100)}
	for _, obs := range obstacles {
		f.add(obs)
	}
	return f
}

func (f *ObstacleField) add(obs components.Obstacle) {
	f.Obstacles = append(f.Obstacles, obs)
	f.index.Insert(obs.Pos)
	if obs.Radius > f.maxRadius {
		f.maxRadius = obs.Radius
	}
}

// Overlaps reports whether a circle at p with the given radius intersects any obstacle.
func (f *ObstacleField) Overlaps(p components.Position, radius float64) bool {
	f.scratch = f.index.QueryRadiusInto(f.scratch[:0], p, radius+f.maxRadius)
	for _, n := range f.scratch {
		reach := radius + f.Obstacles[n.Index].Radius
		if n.DistSq < reach*reach {
			return true
		}
	}
	return false
}

// GenerateObstacles places cfg.Count obstacles inside the edge margin, clear of
// the bases and of each other. Trees are twice as likely as rocks.
// A placement that fails cfg.MaxAttempts times is dropped.
func GenerateObstacles(cfg config.ObstaclesConfig, bounds components.Bounds, bases []components.Position, baseRadius float64, rng *rand.Rand) *ObstacleField {
	field := NewObstacleField(bounds, nil)

	spanX := bounds.Width - 2*cfg.Margin
	spanY := bounds.Height - 2*cfg.Margin
	if spanX <= 0 || spanY <= 0 {
		slog.Warn("obstacle margin leaves no room", "margin", cfg.Margin)
		return field
	}

	dropped := 0
	for i := 0; i < cfg.Count; i++ {
		obs := components.Obstacle{Type: components.ObstacleTree, Radius: cfg.TreeRadius}
		if rng.Intn(3) == 2 {
			obs.Type = components.ObstacleRock
			obs.Radius = cfg.RockRadius
		}

		placed := false
		for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
			obs.Pos = components.Position{
				X: cfg.Margin + rng.Float64()*spanX,
				Y: cfg.Margin + rng.Float64()*spanY,
			}
			if nearBase(obs, bases, baseRadius+cfg.BaseClear) || field.Overlaps(obs.Pos, obs.Radius) {
				continue
			}
			field.add(obs)
			placed = true
			break
		}
		if !placed {
			dropped++
		}
	}

	if dropped > 0 {
		slog.Debug("obstacle placements dropped", "dropped", dropped, "placed", len(field.Obstacles))
	}
	return field
}

func nearBase(obs components.Obstacle, bases []components.Position, clearance float64) bool {
	for _, b := range bases {
		if obs.Pos.Dist(b) < obs.Radius+clearance {
			return true
		}
	}
	return false
}
