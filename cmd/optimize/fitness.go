package main

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/game"
	"github.com/pthm-cable/botwar/genetics"
	"github.com/pthm-cable/botwar/telemetry"
)

// Quality component weights.
const (
	qualityWeightDecisive = 0.6
	qualityWeightHitRate  = 0.4
)

// Evaluation is what one parameter vector achieved, averaged over the seeds
// whose campaign completed.
type Evaluation struct {
	Objective    float64            // Minimised by CMA-ES
	FinalFitness float64            // Mean last-generation avg fitness over all lineages
	Lineages     map[string]float64 // Last-generation avg fitness per "team/archetype"
	DecisiveRate float64            // Share of battles ending with a fallen base
	HitRate      float64            // Mean projectile hit rate of the teams that fired
	Seeds        int
}

// Quality scores how well the battles played out, in [0, 1].
func (e Evaluation) Quality() float64 {
	return clamp01(qualityWeightDecisive*e.DecisiveRate + qualityWeightHitRate*e.HitRate)
}

// LineageNames returns the evaluated lineages in sorted order.
func (e Evaluation) LineageNames() []string {
	names := make([]string, 0, len(e.Lineages))
	for name := range e.Lineages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FitnessEvaluator runs short headless campaigns and scores how well the
// populations evolved.
type FitnessEvaluator struct {
	params     *ParamVector
	battles    int
	maxTicks   int
	seeds      []int64
	baseConfig *config.Config

	mu             sync.Mutex
	best           float64
	bestHallOfFame *genetics.HallOfFame
	last           Evaluation
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, battles, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		battles:    battles,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		best:       math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame of the best seed of the best
// evaluation so far.
func (fe *FitnessEvaluator) BestHallOfFame() *genetics.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastEvaluation returns the breakdown of the most recent Evaluate call.
func (fe *FitnessEvaluator) LastEvaluation() Evaluation {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// campaignResult is one seed's campaign.
type campaignResult struct {
	lineages   map[string]float64
	battles    []telemetry.BattleRecord
	hallOfFame *genetics.HallOfFame
	err        error
}

// Evaluate returns the objective for raw parameter values (lower = better).
// Seeds run concurrently; each owns its campaign.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]*campaignResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runCampaign(x, s)
		}(i, seed)
	}
	wg.Wait()

	ev, bestSeed := summarize(results)

	fe.mu.Lock()
	fe.last = ev
	if ev.Seeds > 0 && ev.Objective < fe.best {
		fe.best = ev.Objective
		fe.bestHallOfFame = bestSeed
	}
	fe.mu.Unlock()

	return ev.Objective
}

// summarize folds the seed campaigns into one Evaluation and picks the hall
// of fame of the seed with the highest final fitness.
func summarize(results []*campaignResult) (Evaluation, *genetics.HallOfFame) {
	ev := Evaluation{Objective: math.Inf(1), Lineages: make(map[string]float64)}

	perLineage := make(map[string][]float64)
	var battles []telemetry.BattleRecord
	var bestHallOfFame *genetics.HallOfFame
	bestSeed := math.Inf(-1)

	for _, r := range results {
		if r == nil {
			continue
		}
		if r.err != nil {
			slog.Warn("campaign failed", "error", r.err)
			continue
		}
		ev.Seeds++
		battles = append(battles, r.battles...)

		var seedFitness []float64
		for name, f := range r.lineages {
			perLineage[name] = append(perLineage[name], f)
			seedFitness = append(seedFitness, f)
		}
		if len(seedFitness) > 0 {
			if m := stat.Mean(seedFitness, nil); m > bestSeed {
				bestSeed = m
				bestHallOfFame = r.hallOfFame
			}
		}
	}
	if ev.Seeds == 0 {
		return ev, nil
	}

	var all []float64
	for name, fs := range perLineage {
		ev.Lineages[name] = stat.Mean(fs, nil)
		all = append(all, fs...)
	}
	if len(all) > 0 {
		ev.FinalFitness = stat.Mean(all, nil)
	}
	ev.DecisiveRate, ev.HitRate = battleStats(battles)
	ev.Objective = computeFitness(ev.FinalFitness, ev.Quality())
	return ev, bestHallOfFame
}

// runCampaign plays a short campaign with the parameters applied and keeps
// the last generation record of every lineage.
func (fe *FitnessEvaluator) runCampaign(x []float64, seed int64) *campaignResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Battle.MaxTicks = fe.maxTicks

	result := &campaignResult{lineages: make(map[string]float64)}
	if err := cfg.Validate(); err != nil {
		result.err = err
		return result
	}

	c, err := game.NewCampaign(cfg, game.Options{Seed: seed})
	if err != nil {
		result.err = err
		return result
	}
	defer c.Close()

	for i := 0; i < fe.battles; i++ {
		res, err := c.RunBattle(context.Background())
		if err != nil {
			result.err = err
			return result
		}
		result.battles = append(result.battles, res.Record)
		for _, rec := range res.Generations {
			result.lineages[rec.Lineage()] = rec.AvgFitness
		}
	}
	result.hallOfFame = c.HallOfFame()
	return result
}

// copyConfig returns a copy of the base config. Config holds no reference
// types, so a value copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar objective (lower = better):
// -(finalFitness × (1 + 0.2 × quality)).
func computeFitness(finalFitness, quality float64) float64 {
	return -(finalFitness * (1.0 + 0.2*quality))
}

// battleStats returns the share of decisive battles and the mean hit rate
// over the teams that fired at all.
func battleStats(battles []telemetry.BattleRecord) (decisive, hitRate float64) {
	if len(battles) == 0 {
		return 0, 0
	}

	hitRates := make([]float64, 0, 2*len(battles))
	for _, b := range battles {
		if b.BlueBaseHealth == 0 || b.RedBaseHealth == 0 {
			decisive++
		}
		if b.BlueShots > 0 {
			hitRates = append(hitRates, b.BlueHitRate)
		}
		if b.RedShots > 0 {
			hitRates = append(hitRates, b.RedHitRate)
		}
	}
	decisive /= float64(len(battles))
	if len(hitRates) > 0 {
		hitRate = stat.Mean(hitRates, nil)
	}
	return decisive, hitRate
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
