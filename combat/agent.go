package combat

import (
	"errors"
	"log/slog"
	"math"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/genetics"
	"github.com/pthm-cable/botwar/systems"
)

// ErrNoGenome is returned by Update for a genome-driven agent whose genome is missing.
var ErrNoGenome = errors.New("agent has no genome")

// Agent is one combat robot. Behavior differences between archetypes come
// from its Profile; stats come from its genome when it has one.
type Agent struct {
	ID      uint32
	Team    components.Team
	Profile Profile
	Genome  *genetics.Genome

	Pos       components.Position
	Health    float64
	MaxHealth float64
	Speed     float64
	Damage    float64

	Aggression      float64
	ComboMultiplier float64
	LifestealRate   float64
	Accuracy        float64
	MultishotChance float64

	State      State
	Path       []components.Position
	LastAttack float64 // Milliseconds
	SpawnedAt  float64 // Milliseconds
	Metrics    components.Metrics

	genomeDriven bool
	lastTarget   uint32
	combo        bool
	squad        *Squad

	targets      []systems.Target
	targetAgents []*Agent
}

// NewAgent creates a genome-driven agent. Its stats and traits are read from
// the genome; a nil genome leaves the agent inert (Update returns ErrNoGenome).
func NewAgent(id uint32, team components.Team, profile Profile, genome *genetics.Genome, pos components.Position) *Agent {
	a := &Agent{
		ID:           id,
		Team:         team,
		Profile:      profile,
		Genome:       genome,
		Pos:          pos,
		genomeDriven: true,
	}
	if genome != nil {
		a.applyTraits(genome.Values)
	} else {
		a.applyProfile()
	}
	return a
}

// NewDefaultAgent creates an agent with fixed profile stats and default
// traits. It always passes the strength check.
func NewDefaultAgent(id uint32, team components.Team, profile Profile, table *genetics.TraitTable, pos components.Position) *Agent {
	stats := config.ArchetypeConfig{Health: profile.Health, Speed: profile.Speed, Damage: profile.Damage}
	seed := genetics.SeedGenome(profile.Archetype, stats, table)
	a := &Agent{ID: id, Team: team, Profile: profile, Pos: pos}
	a.applyTraits(seed.Values)
	a.applyProfile()
	return a
}

func (a *Agent) applyProfile() {
	a.MaxHealth = a.Profile.Health
	a.Health = a.MaxHealth
	a.Speed = a.Profile.Speed
	a.Damage = a.Profile.Damage
}

func (a *Agent) applyTraits(v [genetics.NumTraits]float64) {
	a.MaxHealth = v[genetics.TraitHealth]
	a.Health = a.MaxHealth
	a.Speed = v[genetics.TraitSpeed]
	a.Damage = v[genetics.TraitDamage]
	a.Aggression = v[genetics.TraitAggression]
	a.ComboMultiplier = v[genetics.TraitComboMultiplier]
	a.LifestealRate = v[genetics.TraitLifestealRate]
	a.Accuracy = v[genetics.TraitAccuracy]
	a.MultishotChance = v[genetics.TraitMultishotChance]
}

// Alive reports whether the agent has health left.
func (a *Agent) Alive() bool { return a.Health > 0 }

// HealthRatio returns health / max health.
func (a *Agent) HealthRatio() float64 {
	if a.MaxHealth <= 0 {
		return 0
	}
	return a.Health / a.MaxHealth
}

// Squad returns the squad the agent belongs to, if any.
func (a *Agent) Squad() *Squad { return a.squad }

// TakeDamage applies incoming damage after the profile's reduction and clamps
// health at 0. The reduced amount is always counted as damage taken.
// Returns true if this hit killed the agent.
func (a *Agent) TakeDamage(amount float64) bool {
	if amount <= 0 || !a.Alive() {
		return false
	}
	incoming := amount * a.Profile.DamageReduction
	a.Metrics.DamageTaken += incoming
	a.Health = math.Max(0, a.Health-incoming)
	if a.Health == 0 {
		a.Metrics.Died = true
		return true
	}
	return false
}

// Heal restores health up to the maximum. Returns the amount restored.
func (a *Agent) Heal(amount float64) float64 {
	if amount <= 0 || !a.Alive() {
		return 0
	}
	healed := math.Min(amount, a.MaxHealth-a.Health)
	a.Health += healed
	a.Metrics.Healed += healed
	return healed
}

// CanAttack reports whether the attack cooldown has elapsed at now.
func (a *Agent) CanAttack(now float64) bool {
	return now-a.LastAttack >= a.Profile.AttackCooldown
}

// attackThreshold is the strength an agent needs before it commits.
func (a *Agent) attackThreshold() float64 {
	if !a.genomeDriven {
		return 0
	}
	return 1 - a.Aggression
}

// strength rates the agent's odds: melee compares health ratios with the
// nearest enemy, other archetypes use their own health ratio.
func (a *Agent) strength(enemy *Agent) float64 {
	mine := a.HealthRatio()
	if a.Profile.Archetype != components.ArchetypeMelee {
		return mine
	}
	if enemy == nil {
		return 1
	}
	total := mine + enemy.HealthRatio()
	if total <= 0 {
		return 0
	}
	return mine / total
}

func (a *Agent) confident(enemy *Agent) bool {
	return a.strength(enemy) > a.attackThreshold()
}

// strike lands a direct hit on target if the cooldown allows it.
// Returns whether an attack was made.
func (a *Agent) strike(now float64, target *Agent) bool {
	if target == nil || !target.Alive() || !a.CanAttack(now) {
		return false
	}
	a.LastAttack = now

	dmg := a.Damage
	if a.Profile.Archetype == components.ArchetypeMelee {
		if a.combo && a.lastTarget == target.ID {
			dmg *= a.ComboMultiplier
		}
		a.combo = true
		a.lastTarget = target.ID
	}

	before := target.Health
	a.hit(target, dmg)

	if a.Profile.Archetype == components.ArchetypeMelee && a.LifestealRate > 0 {
		a.Heal((before - target.Health) * a.LifestealRate)
	}
	return true
}

// hit applies damage from this agent to target and books the metrics.
func (a *Agent) hit(target *Agent, dmg float64) {
	if !target.Alive() {
		return
	}
	a.Metrics.DamageToEnemies += dmg
	if target.TakeDamage(dmg) {
		a.Metrics.Kills++
	}
}

// hitBase applies damage from this agent to a base.
func (a *Agent) hitBase(base *Base, dmg float64) {
	a.Metrics.DamageToBase += dmg
	base.TakeDamage(dmg)
}

// setState switches behavior, dropping any path planned for the old one.
func (a *Agent) setState(s State) {
	if a.State != s {
		a.State = s
		a.Path = nil
	}
}

// moveTowards steps up to Speed toward target, staying inside the map.
// A target on top of the agent is a no-op.
func (a *Agent) moveTowards(ctx *Context, target components.Position) {
	delta := target.Sub(a.Pos)
	dir, ok := delta.Normalize()
	if !ok {
		return
	}
	step := math.Min(a.Speed, delta.Len())
	a.Pos = ctx.Bounds.Clamp(a.Pos.Add(dir.Scale(step)), a.Profile.Radius)
}

// navigate follows a planned path toward goal, planning one if needed.
// Without a path the agent heads straight for the goal.
func (a *Agent) navigate(ctx *Context, goal components.Position) {
	if len(a.Path) == 0 && ctx.Pathfinder != nil {
		a.Path = ctx.Pathfinder.FindPath(a.Pos, goal, a.Profile.Radius)
	}
	if len(a.Path) == 0 {
		a.moveTowards(ctx, goal)
		return
	}

	next := a.Path[0]
	if a.Pos.Dist(next) <= a.Speed {
		a.Path = a.Path[1:]
		return
	}
	a.moveTowards(ctx, next)
}

// Snapshot returns the agent's draw-less state.
func (a *Agent) Snapshot() components.AgentSnapshot {
	return components.AgentSnapshot{
		ID:        a.ID,
		Team:      a.Team,
		Archetype: a.Profile.Archetype,
		Pos:       a.Pos,
		Radius:    a.Profile.Radius,
		Health:    a.Health,
		MaxHealth: a.MaxHealth,
		Alive:     a.Alive(),
		State:     a.State.String(),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (a *Agent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("id", uint64(a.ID)),
		slog.String("team", a.Team.String()),
		slog.String("archetype", a.Profile.Archetype.String()),
		slog.String("state", a.State.String()),
		slog.Float64("health", a.Health),
		slog.Float64("x", a.Pos.X),
		slog.Float64("y", a.Pos.Y),
	)
}
