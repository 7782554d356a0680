package combat

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/genetics"
)

// Base is a team's home base. It owns the team's agent roster for one battle
// and spawns new agents from the team's current populations.
type Base struct {
	Team        components.Team
	Pos         components.Position
	Radius      float64
	Health      float64
	MaxHealth   float64
	DamageTaken float64 // Raw, unclamped

	cfg         config.SpawnConfig
	profiles    [components.NumArchetypes]Profile
	table       *genetics.TraitTable
	populations [components.NumArchetypes]*genetics.Population

	lastSpawn float64
	roster    []*Agent
}

// BasePosition returns a team's base position: blue in the top-left corner,
// red in the bottom-right, each inset from its corner.
func BasePosition(team components.Team, bounds components.Bounds, inset float64) components.Position {
	if team == components.TeamBlue {
		return components.Position{X: inset, Y: inset}
	}
	return components.Position{X: bounds.Width - inset, Y: bounds.Height - inset}
}

// NewBase creates a full-health base for team.
func NewBase(team components.Team, cfg *config.Config, table *genetics.TraitTable) *Base {
	bounds := components.Bounds{Width: cfg.World.Width, Height: cfg.World.Height}
	return &Base{
		Team:      team,
		Pos:       BasePosition(team, bounds, cfg.Base.Inset),
		Radius:    cfg.Base.Radius,
		Health:    cfg.Base.Health,
		MaxHealth: cfg.Base.Health,
		cfg:       cfg.Spawn,
		profiles:  Profiles(cfg),
		table:     table,
	}
}

// SetPopulation sets the population agents of arch are spawned from.
func (b *Base) SetPopulation(arch components.Archetype, pop *genetics.Population) {
	b.populations[arch] = pop
}

// Alive reports whether the base still stands.
func (b *Base) Alive() bool { return b.Health > 0 }

// HealthRatio returns health / max health.
func (b *Base) HealthRatio() float64 {
	if b.MaxHealth <= 0 {
		return 0
	}
	return b.Health / b.MaxHealth
}

// TakeDamage clamps health at 0 and counts the full amount as damage taken.
func (b *Base) TakeDamage(amount float64) {
	if amount <= 0 {
		return
	}
	b.DamageTaken += amount
	b.Health = math.Max(0, b.Health-amount)
}

// Roster returns every agent spawned this battle, dead ones included.
func (b *Base) Roster() []*Agent { return b.roster }

// AliveCount returns the number of living agents in the roster.
func (b *Base) AliveCount() int {
	n := 0
	for _, a := range b.roster {
		if a.Alive() {
			n++
		}
	}
	return n
}

// Spawn creates one agent if the spawn cooldown has elapsed at ctx.Now and
// the living roster is under its cap. Returns nil otherwise.
func (b *Base) Spawn(ctx *Context, enemyBase components.Position) *Agent {
	if ctx.Now-b.lastSpawn < b.cfg.Cooldown {
		return nil
	}
	a := b.spawn(ctx, enemyBase)
	if a != nil {
		b.lastSpawn = ctx.Now
	}
	return a
}

// SpawnWave creates up to n agents immediately, ignoring the cooldown.
func (b *Base) SpawnWave(ctx *Context, enemyBase components.Position, n int) []*Agent {
	var wave []*Agent
	for i := 0; i < n; i++ {
		a := b.spawn(ctx, enemyBase)
		if a == nil {
			break
		}
		wave = append(wave, a)
	}
	return wave
}

func (b *Base) spawn(ctx *Context, enemyBase components.Position) *Agent {
	if !b.Alive() {
		return nil
	}
	if b.cfg.MaxAgents > 0 && b.AliveCount() >= b.cfg.MaxAgents {
		return nil
	}

	arch := components.Archetypes[ctx.Rng.Intn(int(components.NumArchetypes))]
	pos := b.spawnPoint(ctx, enemyBase, b.profiles[arch].Radius)

	var a *Agent
	if pop := b.populations[arch]; pop != nil && pop.Size() > 0 {
		a = NewAgent(ctx.NewID(), b.Team, b.profiles[arch], pop.Next(), pos)
	} else {
		a = NewDefaultAgent(ctx.NewID(), b.Team, b.profiles[arch], b.table, pos)
	}
	a.SpawnedAt = ctx.Now
	a.LastAttack = ctx.Now - a.Profile.AttackCooldown
	b.roster = append(b.roster, a)

	slog.Debug("agent spawned", "agent", a, "battle_ms", ctx.Now)
	return a
}

// spawnPoint picks a point on the spawn ring inside the quarter sector facing
// the enemy base.
func (b *Base) spawnPoint(ctx *Context, enemyBase components.Position, radius float64) components.Position {
	facing := math.Atan2(enemyBase.Y-b.Pos.Y, enemyBase.X-b.Pos.X)
	angle := facing + (ctx.Rng.Float64()*2-1)*math.Pi/4
	dist := b.cfg.MinRadius + ctx.Rng.Float64()*(b.cfg.MaxRadius-b.cfg.MinRadius)

	sin, cos := math.Sincos(angle)
	p := components.Position{X: b.Pos.X + dist*cos, Y: b.Pos.Y + dist*sin}
	return ctx.Bounds.Clamp(p, radius)
}

// Snapshot returns the base's draw-less state.
func (b *Base) Snapshot() components.BaseSnapshot {
	return components.BaseSnapshot{
		Team:      b.Team,
		Pos:       b.Pos,
		Radius:    b.Radius,
		Health:    b.Health,
		MaxHealth: b.MaxHealth,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (b *Base) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("team", b.Team.String()),
		slog.Float64("health", b.Health),
		slog.Int("roster", len(b.roster)),
		slog.Int("alive", b.AliveCount()),
	)
}
