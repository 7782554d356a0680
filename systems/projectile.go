package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/botwar/components"
)

// Target is a circle a projectile can collide with.
type Target struct {
	Pos    components.Position
	Radius float64
}

// HitKind distinguishes agent hits from base hits.
type HitKind uint8

const (
	HitAgent HitKind = iota
	HitBase
)

// Hit describes one projectile collision.
type Hit struct {
	Kind   HitKind
	Index  int // Index into the targets slice (HitAgent only)
	Damage float64
	Pos    components.Position
}

// ProjectileSystem owns every in-flight projectile as an ECS entity.
type ProjectileSystem struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Projectile]
	filter *ecs.Filter2[components.Position, components.Projectile]
	bounds components.Bounds
	count  int

	toRemove []ecs.Entity
}

// NewProjectileSystem creates a projectile system backed by its own ECS world.
func NewProjectileSystem(bounds components.Bounds) *ProjectileSystem {
	world := ecs.NewWorld()
	return &ProjectileSystem{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Projectile](world),
		filter: ecs.NewFilter2[components.Position, components.Projectile](world),
		bounds: bounds,
	}
}

// Spawn creates a projectile travelling from origin toward target.
// A zero-length aim has no direction; the projectile is created inactive and
// removed on the next Purge. Returns whether the shot is live.
func (s *ProjectileSystem) Spawn(owner uint32, team components.Team, origin, target components.Position, speed, damage, radius float64) bool {
	dir, ok := target.Sub(origin).Normalize()

	pos := origin
	proj := components.Projectile{
		Owner:     owner,
		Team:      team,
		Direction: dir,
		Target:    target,
		Speed:     speed,
		Damage:    damage,
		Radius:    radius,
		Active:    ok,
	}
	s.mapper.NewEntity(&pos, &proj)
	s.count++
	return ok
}

// Advance moves every active projectile fired by owner one step and resolves
// collisions. Agent targets are tested in slice order before the base; the
// first contact consumes the projectile and is reported through onHit.
func (s *ProjectileSystem) Advance(owner uint32, targets []Target, base *Target, onHit func(Hit)) {
	query := s.filter.Query()
	for query.Next() {
		pos, proj := query.Get()
		if !proj.Active || proj.Owner != owner {
			continue
		}

		*pos = pos.Add(proj.Direction.Scale(proj.Speed))

		if hit, ok := s.collide(pos, proj, targets, base); ok {
			proj.Active = false
			if onHit != nil {
				onHit(hit)
			}
			continue
		}

		// Spent at the aim point or off the map
		if pos.Dist(proj.Target) < proj.Speed || !s.bounds.Contains(*pos) {
			proj.Active = false
		}
	}
}

func (s *ProjectileSystem) collide(pos *components.Position, proj *components.Projectile, targets []Target, base *Target) (Hit, bool) {
	for i, t := range targets {
		if pos.Dist(t.Pos) < t.Radius+proj.Radius {
			return Hit{Kind: HitAgent, Index: i, Damage: proj.Damage, Pos: *pos}, true
		}
	}
	if base != nil && pos.Dist(base.Pos) < base.Radius+proj.Radius {
		return Hit{Kind: HitBase, Index: -1, Damage: proj.Damage, Pos: *pos}, true
	}
	return Hit{}, false
}

// Deactivate retires every projectile fired by owner, e.g. when the shooter dies.
func (s *ProjectileSystem) Deactivate(owner uint32) {
	query := s.filter.Query()
	for query.Next() {
		_, proj := query.Get()
		if proj.Owner == owner {
			proj.Active = false
		}
	}
}

// Purge removes inactive projectiles. Returns the number removed.
func (s *ProjectileSystem) Purge() int {
	s.toRemove = s.toRemove[:0]

	// First pass: collect (must complete before modifying)
	query := s.filter.Query()
	for query.Next() {
		_, proj := query.Get()
		if !proj.Active {
			s.toRemove = append(s.toRemove, query.Entity())
		}
	}

	// Second pass: remove (query iteration complete)
	for _, e := range s.toRemove {
		s.world.RemoveEntity(e)
	}
	s.count -= len(s.toRemove)
	return len(s.toRemove)
}

// Count returns the number of projectile entities, active or not.
func (s *ProjectileSystem) Count() int { return s.count }

// ActiveCount returns the number of projectiles still in flight.
func (s *ProjectileSystem) ActiveCount() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		_, proj := query.Get()
		if proj.Active {
			n++
		}
	}
	return n
}

// Snapshot appends the active projectiles to dst.
func (s *ProjectileSystem) Snapshot(dst []components.ProjectileSnapshot) []components.ProjectileSnapshot {
	query := s.filter.Query()
	for query.Next() {
		pos, proj := query.Get()
		if proj.Active {
			dst = append(dst, components.ProjectileSnapshot{Team: proj.Team, Pos: *pos})
		}
	}
	return dst
}
