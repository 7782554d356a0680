// Package main tunes the evolution parameters with CMA-ES, scoring each
// candidate by how far short headless campaigns push the six battle
// lineages.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/botwar/config"
)

type options struct {
	configPath string
	outputDir  string
	maxTicks   int
	battles    int
	seeds      int
	maxEvals   int
	population int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxTicks, "max-ticks", 6000, "Tick limit of each battle")
	flag.IntVar(&opts.battles, "battles", 8, "Battles per campaign")
	flag.IntVar(&opts.seeds, "seeds", 3, "Campaign seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Parse()

	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("--output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// Progress goes to stdout; the campaigns themselves only report warnings
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	baseCfg := config.Cfg()

	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, opts.battles, opts.maxTicks, seeds, baseCfg)

	evalLog, err := createEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"))
	if err != nil {
		return fmt.Errorf("creating eval log: %w", err)
	}
	defer evalLog.Close()

	var (
		evals   int
		best    = math.Inf(1)
		bestCfg *config.Config
		start   = time.Now()
	)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			objective := evaluator.Evaluate(raw)
			ev := evaluator.LastEvaluation()
			evals++

			applied := *baseCfg
			params.ApplyToConfig(&applied, raw)
			if err := evalLog.Write(newEvalRow(evals, ev, &applied)); err != nil {
				logger.Warn("writing eval log", "error", err)
			}
			if ev.Seeds > 0 && objective < best {
				best = objective
				bestCfg = &applied
			}

			lineages := make([]any, 0, len(ev.Lineages))
			for _, name := range ev.LineageNames() {
				lineages = append(lineages, slog.Float64(name, ev.Lineages[name]))
			}
			logger.Info("evaluation",
				"eval", evals,
				"of", opts.maxEvals,
				"final_fitness", ev.FinalFitness,
				"decisive_rate", ev.DecisiveRate,
				"hit_rate", ev.HitRate,
				"objective", objective,
				"best", best,
				slog.Group("lineages", lineages...),
				"elapsed", time.Since(start).Round(time.Second),
			)
			return objective
		},
	}

	dim := params.Dim()
	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + int(3.0*math.Log(float64(dim)))
	}

	logger.Info("starting CMA-ES",
		"params", dim,
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"battles", opts.battles,
		"max_ticks", opts.maxTicks,
	)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		logger.Warn("optimization ended", "error", err)
	}

	if bestCfg == nil {
		return errors.New("no campaign completed")
	}
	logger.Info("optimization complete", "evals", evals, "best", best, "elapsed", time.Since(start).Round(time.Second))

	configPath := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	logger.Info("best config saved", "path", configPath)

	if hof := evaluator.BestHallOfFame(); hof != nil {
		data, err := hof.MarshalJSON()
		if err != nil {
			return fmt.Errorf("marshaling hall of fame: %w", err)
		}
		hofPath := filepath.Join(opts.outputDir, "hall_of_fame.json")
		if err := os.WriteFile(hofPath, data, 0644); err != nil {
			return fmt.Errorf("writing hall of fame: %w", err)
		}
		logger.Info("hall of fame saved", "path", hofPath)
	}
	return nil
}
