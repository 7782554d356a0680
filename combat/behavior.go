package combat

import (
	"math"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/systems"
)

// Update runs one tick of the agent's decision state machine at ctx.Now.
// Dead agents are a no-op. A genome-driven agent without a genome returns
// ErrNoGenome and does nothing this tick.
func (a *Agent) Update(ctx *Context, view View) error {
	if !a.Alive() {
		return nil
	}
	if a.genomeDriven && a.Genome == nil {
		return ErrNoGenome
	}
	a.Metrics.TimeAlive = math.Max(0, ctx.Now-a.SpawnedAt) / 1000

	if a.Profile.Ranged() && ctx.Projectiles != nil {
		a.advanceProjectiles(ctx, view)
	}

	enemy, dist := nearestEnemy(a.Pos, view.Enemies)
	if enemy != nil && dist <= a.Profile.DetectionRange && ctx.Knowledge != nil {
		ctx.Knowledge.Report(a.Team, enemy)
	}

	switch a.Profile.Archetype {
	case components.ArchetypeRanged:
		a.updateRanged(ctx, view, enemy, dist)
	case components.ArchetypeTank:
		a.updateTank(ctx, view, enemy, dist)
	default:
		a.updateMelee(ctx, view, enemy, dist)
	}
	return nil
}

func (a *Agent) updateMelee(ctx *Context, view View, enemy *Agent, dist float64) {
	if a.assaultBase(ctx, view.EnemyBase, enemy, 0) {
		return
	}

	switch {
	case enemy != nil && dist <= a.Profile.AttackRange:
		a.setState(StateEngage)
		a.strike(ctx.Now, enemy)
	case enemy != nil && dist <= a.Profile.DetectionRange:
		if a.confident(enemy) {
			a.setState(StateEngage)
			a.navigate(ctx, enemy.Pos)
		} else {
			a.setState(StateRetreat)
			a.retreatFrom(ctx, enemy.Pos)
		}
	default:
		a.advance(ctx, view.EnemyBase)
	}
}

func (a *Agent) updateRanged(ctx *Context, view View, enemy *Agent, dist float64) {
	if a.assaultBase(ctx, view.EnemyBase, enemy, a.Profile.OptimalRange) {
		return
	}

	switch {
	case enemy != nil && dist < a.Profile.RetreatRange:
		a.setState(StateRetreat)
		a.retreatFrom(ctx, enemy.Pos)
	case enemy != nil && dist <= a.Profile.AttackRange:
		a.setState(StateEngage)
		a.fire(ctx, enemy.Pos, a.Damage)
	case enemy != nil && dist <= a.Profile.DetectionRange:
		a.setState(StateEngage)
		a.navigate(ctx, enemy.Pos)
	default:
		a.holdBand(ctx, view.EnemyBase)
	}
}

// holdBand keeps a ranged agent with no target in reach of the enemy base:
// it backs off when inside the optimal range, waits inside the firing band
// and advances otherwise.
func (a *Agent) holdBand(ctx *Context, base *Base) {
	if base == nil || !base.Alive() {
		a.advance(ctx, base)
		return
	}
	switch d := a.Pos.Dist(base.Pos); {
	case d < a.Profile.OptimalRange:
		a.setState(StateRetreat)
		a.retreatFrom(ctx, base.Pos)
	case d <= a.Profile.AttackRange:
		a.setState(StateIdle)
	default:
		a.advance(ctx, base)
	}
}

func (a *Agent) updateTank(ctx *Context, view View, enemy *Agent, dist float64) {
	if a.assaultBase(ctx, view.EnemyBase, enemy, 0) {
		return
	}

	if ally := weakestAlly(view.Allies, a, a.Profile.ProtectionRange); ally != nil && ally.HealthRatio() < a.Profile.EscortThreshold {
		a.setState(StateEscort)
		a.navigate(ctx, ally.Pos)

		// Strike the first enemy that has the ally in its reach
		for _, e := range view.Enemies {
			if !e.Alive() {
				continue
			}
			if e.Pos.Dist(ally.Pos) <= e.Profile.AttackRange && a.Pos.Dist(e.Pos) <= a.Profile.AttackRange {
				a.strike(ctx.Now, e)
				return
			}
		}
		return
	}

	if enemy != nil && dist <= a.Profile.AttackRange {
		a.setState(StateEngage)
		a.strike(ctx.Now, enemy)
		return
	}
	a.advance(ctx, view.EnemyBase)
}

// assaultBase attacks the enemy base when it lies within [minRange, attack
// range] and the agent is confident. Returns true if the agent committed.
func (a *Agent) assaultBase(ctx *Context, base *Base, enemy *Agent, minRange float64) bool {
	if base == nil || !base.Alive() {
		return false
	}
	d := a.Pos.Dist(base.Pos)
	if d > a.Profile.AttackRange || d < minRange || !a.confident(enemy) {
		return false
	}

	a.setState(StateAttackBase)
	dmg := a.Damage * a.Profile.BaseDamageScale
	if a.Profile.Ranged() {
		a.fire(ctx, base.Pos, dmg)
		return true
	}
	if a.CanAttack(ctx.Now) {
		a.LastAttack = ctx.Now
		a.hitBase(base, dmg)
	}
	return true
}

// advance heads for the enemy base, or idles if there is none.
func (a *Agent) advance(ctx *Context, base *Base) {
	if base == nil {
		a.setState(StateIdle)
		return
	}
	a.setState(StateAdvance)
	a.navigate(ctx, base.Pos)
}

// retreatFrom backs away toward the point mirrored through the agent.
func (a *Agent) retreatFrom(ctx *Context, threat components.Position) {
	a.moveTowards(ctx, a.Pos.Scale(2).Sub(threat))
}

// fire launches a projectile at aim if the cooldown allows, with spread
// narrowing as accuracy grows and a chance of a second shot.
func (a *Agent) fire(ctx *Context, aim components.Position, damage float64) {
	if ctx.Projectiles == nil || !a.CanAttack(ctx.Now) {
		return
	}
	a.LastAttack = ctx.Now

	a.launch(ctx, aim, damage)
	if a.MultishotChance > 0 && ctx.Rng.Float64() < a.MultishotChance {
		a.launch(ctx, aim, damage)
	}
}

func (a *Agent) launch(ctx *Context, aim components.Position, damage float64) {
	spread := (1 - a.Accuracy) * a.Profile.MaxSpread
	if spread > 0 {
		angle := (ctx.Rng.Float64()*2 - 1) * spread
		aim = a.Pos.Add(aim.Sub(a.Pos).Rotate(angle))
	}
	ctx.Projectiles.Spawn(a.ID, a.Team, a.Pos, aim, a.Profile.ProjectileSpeed, damage, a.Profile.ProjectileSize)
	a.Metrics.ShotsFired++
}

// advanceProjectiles moves this agent's shots and applies their hits.
func (a *Agent) advanceProjectiles(ctx *Context, view View) {
	a.targets = a.targets[:0]
	a.targetAgents = a.targetAgents[:0]
	for _, e := range view.Enemies {
		if e.Alive() {
			a.targets = append(a.targets, systems.Target{Pos: e.Pos, Radius: e.Profile.Radius})
			a.targetAgents = append(a.targetAgents, e)
		}
	}

	var baseTarget *systems.Target
	if b := view.EnemyBase; b != nil && b.Alive() {
		baseTarget = &systems.Target{Pos: b.Pos, Radius: b.Radius}
	}

	ctx.Projectiles.Advance(a.ID, a.targets, baseTarget, func(h systems.Hit) {
		switch h.Kind {
		case systems.HitAgent:
			a.Metrics.ProjectileHits++
			a.hit(a.targetAgents[h.Index], h.Damage)
		case systems.HitBase:
			a.Metrics.ProjectileHits++
			a.hitBase(view.EnemyBase, h.Damage)
		}
	})
}

// nearestEnemy returns the closest living enemy, the first one on ties.
func nearestEnemy(pos components.Position, enemies []*Agent) (*Agent, float64) {
	var best *Agent
	bestDist := math.Inf(1)
	for _, e := range enemies {
		if !e.Alive() {
			continue
		}
		if d := pos.Dist(e.Pos); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, bestDist
}

// weakestAlly returns the living ally other than self with the lowest health
// ratio, the first one on ties. A positive within limits the search to allies
// that close to self.
func weakestAlly(allies []*Agent, self *Agent, within float64) *Agent {
	var weakest *Agent
	for _, ally := range allies {
		if ally == self || !ally.Alive() {
			continue
		}
		if within > 0 && self.Pos.Dist(ally.Pos) > within {
			continue
		}
		if weakest == nil || ally.HealthRatio() < weakest.HealthRatio() {
			weakest = ally
		}
	}
	return weakest
}
