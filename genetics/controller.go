package genetics

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
)

// Lineage identifies one independently evolving population.
type Lineage struct {
	Team      components.Team
	Archetype components.Archetype
}

func (l Lineage) String() string {
	return l.Team.String() + "/" + l.Archetype.String()
}

// Controller owns one lineage's population and its adaptive parameters:
// the mutation rate follows the last change in mean fitness, and the
// population size follows the recent fitness trend.
type Controller struct {
	Lineage Lineage

	cfg   config.EvolutionConfig
	table *TraitTable
	rng   *rand.Rand

	pop          *Population
	mutationRate float64
	targetSize   int
	history      []float64
	nextID       uint64
}

// NewController creates a lineage controller whose initial population is
// cfg.InitialSize fully mutated copies of the seeds, taken in turn.
func NewController(lineage Lineage, seeds []*Genome, cfg config.EvolutionConfig, table *TraitTable, rng *rand.Rand) (*Controller, error) {
	if cfg.MinSize < 1 || cfg.MinSize > cfg.MaxSize {
		return nil, fmt.Errorf("%w: size bounds [%d, %d]", ErrInvalidPopulation, cfg.MinSize, cfg.MaxSize)
	}
	if cfg.InitialSize < cfg.MinSize || cfg.InitialSize > cfg.MaxSize {
		return nil, fmt.Errorf("%w: initial size %d outside [%d, %d]", ErrInvalidPopulation, cfg.InitialSize, cfg.MinSize, cfg.MaxSize)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: %s has no seed genome", ErrInvalidPopulation, lineage)
	}

	c := &Controller{
		Lineage:      lineage,
		cfg:          cfg,
		table:        table,
		rng:          rng,
		mutationRate: cfg.MutationRate,
		targetSize:   cfg.InitialSize,
	}

	genomes := make([]*Genome, cfg.InitialSize)
	for i := range genomes {
		g := seeds[i%len(seeds)].Clone()
		g.Archetype = lineage.Archetype
		g.Generation = 0
		Mutate(g, table, 1.0, cfg.MutationScale, rng)
		c.assignID(g)
		genomes[i] = g
	}

	pop, err := NewPopulation(lineage.Archetype, genomes)
	if err != nil {
		return nil, err
	}
	c.pop = pop
	return c, nil
}

func (c *Controller) assignID(g *Genome) {
	c.nextID++
	g.ID = uint64(c.Lineage.Team)<<56 | uint64(c.Lineage.Archetype)<<48 | c.nextID
}

// Population returns the current population.
func (c *Controller) Population() *Population { return c.pop }

// MutationRate returns the current adaptive mutation rate.
func (c *Controller) MutationRate() float64 { return c.mutationRate }

// History returns the recorded mean fitness per generation, oldest first.
func (c *Controller) History() []float64 { return c.history }

// Evolve records the current population's mean fitness, adapts the mutation
// rate and target size, and replaces the population with the next generation.
// Fitness must already be attached to the genomes.
func (c *Controller) Evolve() *Population {
	prev := c.pop
	c.recordFitness(prev.MeanFitness())
	c.adaptMutationRate()
	c.adaptPopulationSize()

	ranked := prev.Ranked()
	next := make([]*Genome, 0, c.targetSize)

	// Elitism
	// Ceil with slack so 30*0.1 stays 3
	elites := int(math.Ceil(float64(c.targetSize)*c.cfg.EliteFraction - 1e-9))
	elites = min(max(elites, 1), len(ranked))
	for _, g := range ranked[:elites] {
		next = append(next, g.Clone())
	}

	for len(next) < c.targetSize {
		a := TournamentSelect(prev.Genomes, c.cfg.TournamentSize, c.rng)
		b := TournamentSelect(prev.Genomes, c.cfg.TournamentSize, c.rng)
		child := Crossover(a, b, c.table, c.cfg.BlendDeviation, c.rng)
		Mutate(child, c.table, c.mutationRate, c.cfg.MutationScale, c.rng)
		child.Generation = prev.Generation + 1
		c.assignID(child)
		next = append(next, child)
	}

	c.pop = &Population{
		Archetype:  prev.Archetype,
		Genomes:    next,
		Generation: prev.Generation + 1,
	}

	slog.Debug("lineage evolved",
		"lineage", c.Lineage.String(),
		"generation", c.pop.Generation,
		"size", len(next),
		"mutation_rate", c.mutationRate,
		"mean_fitness", c.history[len(c.history)-1],
	)
	return c.pop
}

func (c *Controller) recordFitness(mean float64) {
	c.history = append(c.history, mean)
	if limit := c.cfg.HistorySize; limit > 0 && len(c.history) > limit {
		c.history = c.history[len(c.history)-limit:]
	}
}

// adaptMutationRate lowers the rate after an improvement and raises it otherwise.
func (c *Controller) adaptMutationRate() {
	n := len(c.history)
	if n < 2 {
		return
	}
	cur, prev := c.history[n-1], c.history[n-2]
	change := (cur - prev) / math.Max(math.Abs(prev), 1e-10)

	rate := c.mutationRate
	if change > 0 {
		rate *= 1 - c.cfg.AdaptationRate
	} else {
		rate *= 1 + c.cfg.AdaptationRate
	}
	c.mutationRate = math.Min(math.Max(rate, c.cfg.MinMutationRate), c.cfg.MaxMutationRate)
}

// adaptPopulationSize grows the population on a sustained improvement and
// shrinks it on stagnation, within [MinSize, MaxSize].
func (c *Controller) adaptPopulationSize() {
	window := c.cfg.StagnationThreshold
	if window < 2 || len(c.history) < window {
		return
	}
	recent := c.history[len(c.history)-window:]
	threshold := c.cfg.ImprovementThreshold

	improving, stagnating := true, true
	for i := 1; i < len(recent); i++ {
		if !(recent[i] > recent[i-1]*(1+threshold)) {
			improving = false
		}
		if !(math.Abs(recent[i]-recent[i-1]) < threshold*recent[i-1]) {
			stagnating = false
		}
	}

	switch {
	case improving && c.targetSize < c.cfg.MaxSize:
		c.targetSize = min(c.targetSize+c.cfg.SizeStep, c.cfg.MaxSize)
	case stagnating && c.targetSize > c.cfg.MinSize:
		c.targetSize = max(c.targetSize-c.cfg.SizeStep, c.cfg.MinSize)
	}
}
