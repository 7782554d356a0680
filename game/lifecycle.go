package game

import (
	"log/slog"

	"github.com/pthm-cable/botwar/combat"
	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/telemetry"
)

// spawnOpeningWave gives each team its initial agents at battle start.
func (b *Battle) spawnOpeningWave() {
	for _, team := range components.Teams {
		base, enemy := b.bases[team], b.bases[team.Opponent()]
		for _, a := range base.SpawnWave(b.ctx, enemy.Pos, b.cfg.Spawn.InitialWave) {
			b.onSpawn(a)
		}
	}
}

// onSpawn enrolls a new agent in its squad and starts tracking its metrics.
func (b *Battle) onSpawn(a *combat.Agent) {
	b.squads.Assign(a)
	b.seen[a.ID] = a.Metrics
	b.collector.Record(telemetry.NewSpawnEvent(b.ctx.Now, a.ID, a.Team, a.Profile.Archetype))
}

// harvest turns this tick's metric changes into battle events and retires
// agents that died: their projectiles are cancelled and the enemy team
// forgets them.
func (b *Battle) harvest() {
	now := b.ctx.Now
	for _, a := range b.Agents() {
		prev, ok := b.seen[a.ID]
		if !ok || prev.Died {
			continue
		}
		cur := a.Metrics

		for i := prev.ShotsFired; i < cur.ShotsFired; i++ {
			b.collector.Record(telemetry.NewShotEvent(now, a.ID, a.Team))
		}
		for i := prev.ProjectileHits; i < cur.ProjectileHits; i++ {
			b.collector.Record(telemetry.NewProjectileHitEvent(now, a.ID, a.Team, a.Damage))
		}
		// Victims are not attributed from counters
		for i := prev.Kills; i < cur.Kills; i++ {
			b.collector.Record(telemetry.NewKillEvent(now, a.ID, 0, a.Team))
		}
		if dmg := cur.DamageToBase - prev.DamageToBase; dmg > 0 {
			b.collector.Record(telemetry.NewBaseHitEvent(now, a.ID, a.Team, dmg))
		}

		if cur.Died {
			b.retire(a)
		}
		b.seen[a.ID] = cur
	}
}

// retire cleans up after a dead agent.
func (b *Battle) retire(a *combat.Agent) {
	b.projectiles.Deactivate(a.ID)
	b.ctx.Knowledge.Forget(a.Team.Opponent(), a.ID)
	b.collector.Record(telemetry.NewDeathEvent(b.ctx.Now, a.ID, a.Team, a.Profile.Archetype))

	slog.Debug("agent died",
		"agent", a,
		"kills", a.Metrics.Kills,
		"time_alive", a.Metrics.TimeAlive,
		"battle_ms", b.ctx.Now,
	)
}
