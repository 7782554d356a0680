package main

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/botwar/config"
)

// evalRow is one row of optimize_log.csv: the applied parameters and what
// the campaigns made of them.
type evalRow struct {
	Eval         int     `csv:"eval"`
	Objective    float64 `csv:"objective"`
	FinalFitness float64 `csv:"final_fitness"`
	DecisiveRate float64 `csv:"decisive_rate"`
	HitRate      float64 `csv:"hit_rate"`
	Seeds        int     `csv:"seeds"`

	BlueMelee  float64 `csv:"blue_melee"`
	BlueRanged float64 `csv:"blue_ranged"`
	BlueTank   float64 `csv:"blue_tank"`
	RedMelee   float64 `csv:"red_melee"`
	RedRanged  float64 `csv:"red_ranged"`
	RedTank    float64 `csv:"red_tank"`

	MutationRate          float64 `csv:"mutation_rate"`
	MutationScale         float64 `csv:"mutation_scale"`
	BlendDeviation        float64 `csv:"blend_deviation"`
	EliteFraction         float64 `csv:"elite_fraction"`
	TournamentSize        int     `csv:"tournament_size"`
	AdaptationRate        float64 `csv:"adaptation_rate"`
	ImprovementThreshold  float64 `csv:"improvement_threshold"`
	FitnessAdaptationRate float64 `csv:"fitness_adaptation_rate"`
}

// newEvalRow reads the parameters back from the config the campaigns ran
// with, so the log shows rounded and clamped values.
func newEvalRow(n int, ev Evaluation, cfg *config.Config) evalRow {
	return evalRow{
		Eval:         n,
		Objective:    ev.Objective,
		FinalFitness: ev.FinalFitness,
		DecisiveRate: ev.DecisiveRate,
		HitRate:      ev.HitRate,
		Seeds:        ev.Seeds,

		BlueMelee:  ev.Lineages["blue/melee"],
		BlueRanged: ev.Lineages["blue/ranged"],
		BlueTank:   ev.Lineages["blue/tank"],
		RedMelee:   ev.Lineages["red/melee"],
		RedRanged:  ev.Lineages["red/ranged"],
		RedTank:    ev.Lineages["red/tank"],

		MutationRate:          cfg.Evolution.MutationRate,
		MutationScale:         cfg.Evolution.MutationScale,
		BlendDeviation:        cfg.Evolution.BlendDeviation,
		EliteFraction:         cfg.Evolution.EliteFraction,
		TournamentSize:        cfg.Evolution.TournamentSize,
		AdaptationRate:        cfg.Evolution.AdaptationRate,
		ImprovementThreshold:  cfg.Evolution.ImprovementThreshold,
		FitnessAdaptationRate: cfg.Fitness.AdaptationRate,
	}
}

// evalLog appends rows to optimize_log.csv, header first.
type evalLog struct {
	f             *os.File
	headerWritten bool
}

func createEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &evalLog{f: f}, nil
}

func (l *evalLog) Write(row evalRow) error {
	rows := []evalRow{row}
	if !l.headerWritten {
		l.headerWritten = true
		return gocsv.Marshal(rows, l.f)
	}
	return gocsv.MarshalWithoutHeaders(rows, l.f)
}

func (l *evalLog) Close() error {
	return l.f.Close()
}
