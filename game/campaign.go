package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pthm-cable/botwar/combat"
	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/fitness"
	"github.com/pthm-cable/botwar/genetics"
	"github.com/pthm-cable/botwar/telemetry"
)

// BattleResult is what a campaign learned from one battle.
type BattleResult struct {
	Outcome     Outcome
	Record      telemetry.BattleRecord
	Agents      []telemetry.AgentRecord
	Generations []telemetry.GenerationRecord
	Bookmarks   []telemetry.Bookmark
	Skipped     int
}

// Campaign runs battles back to back, scoring every agent after each battle
// and evolving all six lineages before the next.
type Campaign struct {
	cfg   *config.Config
	opts  Options
	rng   *rand.Rand
	table genetics.TraitTable

	controllers [2][components.NumArchetypes]*genetics.Controller
	fitness     *fitness.Calculator
	hallOfFame  *genetics.HallOfFame
	trends      *telemetry.TrendAnalyzer
	bookmarks   *telemetry.BookmarkDetector
	output      *telemetry.OutputManager

	battles int
	wins    [OutcomeDraw + 1]int
}

// NewCampaign creates the lineage controllers, seeded from the hall of fame
// file when one is given and from the archetype defaults otherwise.
func NewCampaign(cfg *config.Config, opts Options) (*Campaign, error) {
	c := &Campaign{
		cfg:       cfg,
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		table:     genetics.NewTraitTable(cfg.Traits),
		fitness:   fitness.NewCalculator(cfg.Fitness),
		trends:    telemetry.NewTrendAnalyzer(cfg.Telemetry.TrendWindow),
		bookmarks: telemetry.NewBookmarkDetector(cfg.Telemetry.Bookmarks),
	}

	if opts.HallOfFamePath != "" {
		hof, err := genetics.LoadHallOfFameFromFile(opts.HallOfFamePath, cfg.Telemetry.HallOfFameSize, &c.table)
		if err != nil {
			return nil, err
		}
		c.hallOfFame = hof
	} else {
		c.hallOfFame = genetics.NewHallOfFame(cfg.Telemetry.HallOfFameSize)
	}

	for _, team := range components.Teams {
		for _, arch := range components.Archetypes {
			lineage := genetics.Lineage{Team: team, Archetype: arch}
			seeds := c.hallOfFame.Seeds(lineage)
			if len(seeds) == 0 {
				seeds = []*genetics.Genome{genetics.SeedGenome(arch, combat.ProfileConfig(cfg, arch), &c.table)}
			} else {
				slog.Info("lineage seeded from hall of fame", "lineage", lineage.String(), "seeds", len(seeds))
			}
			ctrl, err := genetics.NewController(lineage, seeds, cfg.Evolution, &c.table, c.rng)
			if err != nil {
				return nil, fmt.Errorf("creating %s controller: %w", lineage, err)
			}
			c.controllers[team][arch] = ctrl
		}
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	c.output = output
	if err := c.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}
	return c, nil
}

// Run plays n battles, stopping early if ctx is cancelled. The hall of fame
// is written out even when the campaign is cut short.
func (c *Campaign) Run(ctx context.Context, n int) error {
	defer func() {
		if err := c.output.WriteHallOfFame(c.hallOfFame); err != nil {
			slog.Error("failed to write hall of fame", "error", err)
		}
		c.logCampaign()
	}()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.RunBattle(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunBattle plays one battle with the current populations, scores it and
// evolves every lineage.
func (c *Campaign) RunBattle(ctx context.Context) (*BattleResult, error) {
	id, err := uuid.NewRandomFromReader(c.rng)
	if err != nil {
		return nil, fmt.Errorf("generating battle id: %w", err)
	}
	opts := BattleOptions{
		ID:         id.String(),
		Index:      c.battles,
		Seed:       c.rng.Int63(),
		Generation: c.Generation(),
	}

	battle, err := NewBattle(c.cfg, opts, c.Populations(), &c.table)
	if err != nil {
		return nil, err
	}
	if err := battle.Run(ctx); err != nil {
		return nil, fmt.Errorf("battle %s: %w", opts.ID, err)
	}

	res := &BattleResult{
		Outcome: battle.Outcome(),
		Record:  battle.Record(),
		Skipped: battle.Skipped(),
	}
	res.Agents = c.score(battle)
	res.Generations, res.Bookmarks = c.evolve(opts.ID)

	c.flushTelemetry(battle, res)
	c.battles++
	c.wins[res.Outcome]++

	if c.opts.LogBattles {
		logBattle(res, battle.Perf())
		logGenerations(res)
	}
	return res, nil
}

// score rates every agent of the battle, feeds the outcomes to the fitness
// weight adaptation and attaches each genome's mean score to it.
func (c *Campaign) score(b *Battle) []telemetry.AgentRecord {
	agents := b.Agents()
	records := make([]telemetry.AgentRecord, 0, len(agents))
	scores := make(map[uint64][]float64)

	for _, a := range agents {
		s := c.fitness.Score(a.Metrics)
		c.fitness.Record(a.Metrics, b.Outcome().Won(a.Team))
		if a.Genome != nil {
			scores[a.Genome.ID] = append(scores[a.Genome.ID], s)
		}
		records = append(records, agentRecord(b.ID(), a, s))
	}
	c.fitness.Adapt()

	for _, team := range components.Teams {
		for _, ctrl := range c.controllers[team] {
			ctrl.Population().AssignFitness(scores)
		}
	}
	return records
}

// evolve records each lineage's generation, offers it to the hall of fame
// and replaces it with the next generation.
func (c *Campaign) evolve(battleID string) ([]telemetry.GenerationRecord, []telemetry.Bookmark) {
	var records []telemetry.GenerationRecord
	var bookmarks []telemetry.Bookmark

	for _, team := range components.Teams {
		for _, ctrl := range c.controllers[team] {
			c.hallOfFame.Consider(ctrl.Lineage, ctrl.Population(), battleID)

			rec := generationRecord(battleID, ctrl, &c.table)
			c.trends.Observe(&rec)
			records = append(records, rec)
			bookmarks = append(bookmarks, c.bookmarks.Check(rec)...)

			ctrl.Evolve()
		}
	}
	return records, bookmarks
}

// Populations returns the current population of every lineage.
func (c *Campaign) Populations() Populations {
	var pops Populations
	for _, team := range components.Teams {
		for _, arch := range components.Archetypes {
			pops[team][arch] = c.controllers[team][arch].Population()
		}
	}
	return pops
}

// Controller returns the controller of a lineage.
func (c *Campaign) Controller(lineage genetics.Lineage) *genetics.Controller {
	return c.controllers[lineage.Team][lineage.Archetype]
}

// Generation returns the current generation. All lineages evolve together.
func (c *Campaign) Generation() int {
	return c.controllers[components.TeamBlue][components.ArchetypeMelee].Population().Generation
}

// Battles returns the number of battles played.
func (c *Campaign) Battles() int { return c.battles }

// Wins returns how many battles ended with outcome o.
func (c *Campaign) Wins(o Outcome) int { return c.wins[o] }

// HallOfFame returns the campaign's hall of fame.
func (c *Campaign) HallOfFame() *genetics.HallOfFame { return c.hallOfFame }

// FitnessWeights returns the current adapted fitness weights.
func (c *Campaign) FitnessWeights() fitness.Vector { return c.fitness.Weights() }

// Close flushes and closes the campaign output.
func (c *Campaign) Close() error {
	return c.output.Close()
}
