package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/botwar/components"
)

func TestProjectileDegenerateAim(t *testing.T) {
	ps := NewProjectileSystem(components.Bounds{Width: 400, Height: 300})
	p := components.Position{X: 100, Y: 100}

	if ps.Spawn(1, components.TeamBlue, p, p, 8, 15, 3) {
		t.Error("Projectile with identical origin and target should not be live")
	}
	if ps.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d, want 0", ps.ActiveCount())
	}

	snaps := ps.Snapshot(nil)
	if len(snaps) != 0 {
		t.Errorf("Inactive projectile should not be in snapshot, got %d", len(snaps))
	}

	query := ps.filter.Query()
	for query.Next() {
		_, proj := query.Get()
		if math.IsNaN(proj.Direction.X) || math.IsNaN(proj.Direction.Y) {
			t.Errorf("Direction is NaN: %v", proj.Direction)
		}
	}

	if removed := ps.Purge(); removed != 1 {
		t.Errorf("Purge removed %d, want 1", removed)
	}
	if ps.Count() != 0 {
		t.Errorf("Count after purge = %d, want 0", ps.Count())
	}
}

func TestProjectileHitsFirstTarget(t *testing.T) {
	ps := NewProjectileSystem(components.Bounds{Width: 400, Height: 300})
	origin := components.Position{X: 100, Y: 100}
	aim := components.Position{X: 200, Y: 100}
	ps.Spawn(7, components.TeamRed, origin, aim, 10, 15, 3)

	targets := []Target{
		{Pos: components.Position{X: 300, Y: 300}, Radius: 18},
		{Pos: components.Position{X: 130, Y: 100}, Radius: 18},
	}

	var hits []Hit
	onHit := func(h Hit) { hits = append(hits, h) }

	// Other owners' advances do not move this shot
	ps.Advance(8, targets, nil, onHit)
	if len(hits) != 0 {
		t.Fatal("Advance for a different owner should not resolve hits")
	}

	for i := 0; i < 3 && len(hits) == 0; i++ {
		ps.Advance(7, targets, nil, onHit)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	if hits[0].Kind != HitAgent || hits[0].Index != 1 || hits[0].Damage != 15 {
		t.Errorf("Unexpected hit %+v", hits[0])
	}

	// Consumed projectiles never hit again
	ps.Advance(7, targets, nil, onHit)
	if len(hits) != 1 {
		t.Errorf("Projectile hit twice")
	}
	if ps.Purge() != 1 {
		t.Error("Expected consumed projectile to be purged")
	}
}

func TestProjectileHitsBase(t *testing.T) {
	ps := NewProjectileSystem(components.Bounds{Width: 400, Height: 300})
	ps.Spawn(3, components.TeamBlue, components.Position{X: 100, Y: 100}, components.Position{X: 300, Y: 100}, 8, 7.5, 3)
	base := &Target{Pos: components.Position{X: 160, Y: 100}, Radius: 40}

	var got []Hit
	for i := 0; i < 10 && len(got) == 0; i++ {
		ps.Advance(3, nil, base, func(h Hit) { got = append(got, h) })
	}
	if len(got) != 1 || got[0].Kind != HitBase {
		t.Fatalf("Expected one base hit, got %+v", got)
	}
	if got[0].Damage != 7.5 {
		t.Errorf("Damage = %v, want 7.5", got[0].Damage)
	}
}

func TestProjectileExpiresAtAimPoint(t *testing.T) {
	ps := NewProjectileSystem(components.Bounds{Width: 400, Height: 300})
	ps.Spawn(1, components.TeamBlue, components.Position{X: 10, Y: 10}, components.Position{X: 50, Y: 10}, 10, 5, 3)

	for i := 0; i < 10; i++ {
		ps.Advance(1, nil, nil, nil)
	}
	if ps.ActiveCount() != 0 {
		t.Error("Projectile should expire at its aim point")
	}
}

func TestProjectileLeavesMap(t *testing.T) {
	ps := NewProjectileSystem(components.Bounds{Width: 100, Height: 100})
	ps.Spawn(1, components.TeamBlue, components.Position{X: 95, Y: 50}, components.Position{X: 500, Y: 50}, 10, 5, 3)

	ps.Advance(1, nil, nil, nil)
	if ps.ActiveCount() != 0 {
		t.Error("Projectile outside the map should deactivate")
	}
}

func TestProjectileDeactivateOwner(t *testing.T) {
	ps := NewProjectileSystem(components.Bounds{Width: 400, Height: 300})
	ps.Spawn(1, components.TeamBlue, components.Position{X: 10, Y: 10}, components.Position{X: 300, Y: 10}, 5, 5, 3)
	ps.Spawn(2, components.TeamBlue, components.Position{X: 10, Y: 50}, components.Position{X: 300, Y: 50}, 5, 5, 3)

	ps.Deactivate(1)
	if ps.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", ps.ActiveCount())
	}
	if ps.Purge() != 1 || ps.Count() != 1 {
		t.Errorf("Expected one projectile left, got %d", ps.Count())
	}
}
