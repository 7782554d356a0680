// Package game drives battles tick by tick and evolves the six lineages
// between battles of a campaign.
package game

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/botwar/combat"
	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/genetics"
	"github.com/pthm-cable/botwar/systems"
	"github.com/pthm-cable/botwar/telemetry"
)

// Outcome is how a battle ended.
type Outcome uint8

const (
	OutcomeUndecided Outcome = iota
	OutcomeBlue
	OutcomeRed
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBlue:
		return "blue"
	case OutcomeRed:
		return "red"
	case OutcomeDraw:
		return "draw"
	default:
		return "undecided"
	}
}

// Won reports whether team won the battle.
func (o Outcome) Won(team components.Team) bool {
	return (o == OutcomeBlue && team == components.TeamBlue) ||
		(o == OutcomeRed && team == components.TeamRed)
}

// Populations holds the population each team spawns each archetype from.
type Populations [2][components.NumArchetypes]*genetics.Population

// Battle holds the complete state of one battle.
type Battle struct {
	opts BattleOptions
	cfg  *config.Config
	rng  *rand.Rand

	bounds      components.Bounds
	ctx         *combat.Context
	bases       [2]*combat.Base
	obstacles   *systems.ObstacleField
	projectiles *systems.ProjectileSystem
	squads      *combat.SquadManager

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	seen      map[uint32]components.Metrics // Metrics at the end of the previous tick

	// State
	tick    int
	outcome Outcome
	skipped int // Agent updates skipped for invalid state
}

// NewBattle sets up the map, bases and opening wave of a battle. Populations
// may hold nil entries; those archetypes spawn with default stats.
func NewBattle(cfg *config.Config, opts BattleOptions, pops Populations, table *genetics.TraitTable) (*Battle, error) {
	if cfg.Battle.MaxTicks < 1 {
		return nil, fmt.Errorf("%w: battle max_ticks must be at least 1", config.ErrInvalidConfig)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	bounds := components.Bounds{Width: cfg.World.Width, Height: cfg.World.Height}

	b := &Battle{
		opts:        opts,
		cfg:         cfg,
		rng:         rng,
		bounds:      bounds,
		projectiles: systems.NewProjectileSystem(bounds),
		squads:      combat.NewSquadManager(cfg.Squads, opts.Generation),
		collector:   telemetry.NewCollector(),
		perf:        telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		seen:        make(map[uint32]components.Metrics),
	}

	for _, team := range components.Teams {
		base := combat.NewBase(team, cfg, table)
		for _, arch := range components.Archetypes {
			base.SetPopulation(arch, pops[team][arch])
		}
		b.bases[team] = base
	}

	basePos := []components.Position{b.bases[components.TeamBlue].Pos, b.bases[components.TeamRed].Pos}
	b.obstacles = systems.GenerateObstacles(cfg.Obstacles, bounds, basePos, cfg.Base.Radius, rng)

	b.ctx = &combat.Context{
		Bounds:      bounds,
		Pathfinder:  systems.NewPathfinder(bounds, cfg.Pathfinding.CellSize, b.obstacles.Obstacles),
		Projectiles: b.projectiles,
		Knowledge:   combat.NewKnowledge(),
		Rng:         rng,
	}

	b.spawnOpeningWave()
	return b, nil
}

// Step advances the battle by one tick. Returns false once the battle is over.
func (b *Battle) Step() bool {
	if b.outcome != OutcomeUndecided {
		return false
	}
	b.ctx.Now = float64(b.tick) * b.cfg.Battle.TickMillis

	b.perf.StartTick()

	b.perf.StartPhase(telemetry.PhaseBlueAgents)
	b.updateTeam(components.TeamBlue)

	b.perf.StartPhase(telemetry.PhaseRedAgents)
	b.updateTeam(components.TeamRed)

	b.perf.StartPhase(telemetry.PhaseProjectiles)
	b.harvest()
	b.projectiles.Purge()

	b.perf.StartPhase(telemetry.PhaseSpawns)
	b.spawnReinforcements()

	b.perf.StartPhase(telemetry.PhaseSquads)
	b.squads.Update(b.ctx.Now, b.bases, b.ctx.Knowledge)

	b.perf.EndTick()

	b.tick++
	b.outcome = b.checkEnd()
	return b.outcome == OutcomeUndecided
}

// Run steps the battle until it ends or ctx is cancelled.
func (b *Battle) Run(ctx context.Context) error {
	for b.Step() {
		if b.tick%100 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ID returns the battle's unique identifier.
func (b *Battle) ID() string { return b.opts.ID }

// Tick returns the number of ticks run.
func (b *Battle) Tick() int { return b.tick }

// Now returns the battle clock in milliseconds.
func (b *Battle) Now() float64 { return b.ctx.Now }

// Outcome returns the result so far; OutcomeUndecided while running.
func (b *Battle) Outcome() Outcome { return b.outcome }

// Base returns a team's base.
func (b *Battle) Base(team components.Team) *combat.Base { return b.bases[team] }

// Agents returns every agent spawned this battle, blue first.
func (b *Battle) Agents() []*combat.Agent {
	blue, red := b.bases[components.TeamBlue].Roster(), b.bases[components.TeamRed].Roster()
	all := make([]*combat.Agent, 0, len(blue)+len(red))
	all = append(all, blue...)
	return append(all, red...)
}

// Squads returns the battle's squads.
func (b *Battle) Squads() []*combat.Squad { return b.squads.Squads() }

// Obstacles returns the battle's obstacle list.
func (b *Battle) Obstacles() []components.Obstacle { return b.obstacles.Obstacles }

// Perf returns tick timing over the rolling window.
func (b *Battle) Perf() telemetry.PerfStats { return b.perf.Stats() }

// Snapshot returns the draw-less state of the battle.
func (b *Battle) Snapshot() components.Snapshot {
	s := components.Snapshot{
		Tick:      b.tick,
		Now:       b.ctx.Now,
		Obstacles: append([]components.Obstacle(nil), b.obstacles.Obstacles...),
	}
	for _, a := range b.Agents() {
		s.Agents = append(s.Agents, a.Snapshot())
	}
	for _, base := range b.bases {
		s.Bases = append(s.Bases, base.Snapshot())
	}
	s.Projectiles = b.projectiles.Snapshot(nil)
	return s
}

// Record flushes the battle's event counts into its battles.csv row.
// It resets the counters, so call it once, after the battle ends.
func (b *Battle) Record() telemetry.BattleRecord {
	out := telemetry.BattleOutcome{
		BattleID:  b.opts.ID,
		Index:     b.opts.Index,
		Seed:      b.opts.Seed,
		Ticks:     b.tick,
		Now:       b.ctx.Now,
		Winner:    b.outcome.String(),
		Obstacles: len(b.obstacles.Obstacles),
	}
	for _, team := range components.Teams {
		out.BaseHealth[team] = b.bases[team].Health
		out.Survivors[team] = b.bases[team].AliveCount()
	}
	return b.collector.Flush(out)
}

// Skipped returns how many agent updates were skipped for invalid state.
func (b *Battle) Skipped() int { return b.skipped }
