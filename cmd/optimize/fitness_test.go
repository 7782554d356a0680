package main

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/genetics"
	"github.com/pthm-cable/botwar/telemetry"
)

func TestBattleStats(t *testing.T) {
	battles := []telemetry.BattleRecord{
		{BlueBaseHealth: 0, RedBaseHealth: 500, BlueShots: 4, BlueHitRate: 0.25, RedShots: 2, RedHitRate: 1},
		{BlueBaseHealth: 800, RedBaseHealth: 0},
		{BlueBaseHealth: 800, RedBaseHealth: 500, RedShots: 10, RedHitRate: 0.5},
		{BlueBaseHealth: 800, RedBaseHealth: 500},
	}
	decisive, hitRate := battleStats(battles)
	if decisive != 0.5 {
		t.Errorf("decisive = %v, want 0.5", decisive)
	}
	// Teams that never fired do not count
	if want := (0.25 + 1 + 0.5) / 3; math.Abs(hitRate-want) > 1e-12 {
		t.Errorf("hit rate = %v, want %v", hitRate, want)
	}
}

func TestSummarizeAveragesSeeds(t *testing.T) {
	weak := genetics.NewHallOfFame(5)
	strong := genetics.NewHallOfFame(5)
	results := []*campaignResult{
		{
			lineages:   map[string]float64{"blue/melee": 0.2, "red/melee": 0.4},
			battles:    []telemetry.BattleRecord{{RedBaseHealth: 0, BlueBaseHealth: 100}},
			hallOfFame: weak,
		},
		{
			lineages:   map[string]float64{"blue/melee": 0.6, "red/melee": 0.8},
			battles:    []telemetry.BattleRecord{{RedBaseHealth: 100, BlueBaseHealth: 100}},
			hallOfFame: strong,
		},
		{err: errors.New("invalid config")},
		nil,
	}

	ev, hof := summarize(results)
	if ev.Seeds != 2 {
		t.Errorf("seeds = %d, want 2", ev.Seeds)
	}
	if math.Abs(ev.Lineages["blue/melee"]-0.4) > 1e-12 || math.Abs(ev.Lineages["red/melee"]-0.6) > 1e-12 {
		t.Errorf("lineages = %v", ev.Lineages)
	}
	if math.Abs(ev.FinalFitness-0.5) > 1e-12 {
		t.Errorf("final fitness = %v, want 0.5", ev.FinalFitness)
	}
	if ev.DecisiveRate != 0.5 {
		t.Errorf("decisive rate = %v, want 0.5", ev.DecisiveRate)
	}
	if want := computeFitness(0.5, ev.Quality()); ev.Objective != want {
		t.Errorf("objective = %v, want %v", ev.Objective, want)
	}
	if hof != strong {
		t.Error("expected the hall of fame of the fitter seed")
	}
	if names := ev.LineageNames(); len(names) != 2 || names[0] != "blue/melee" {
		t.Errorf("lineage names = %v", names)
	}
}

func TestSummarizeNoCompletedSeed(t *testing.T) {
	ev, hof := summarize([]*campaignResult{{err: errors.New("boom")}})
	if ev.Seeds != 0 || hof != nil {
		t.Errorf("seeds %d hall %v, want none", ev.Seeds, hof)
	}
	if !math.IsInf(ev.Objective, 1) {
		t.Errorf("objective = %v, want +Inf", ev.Objective)
	}
}

func TestEvalLogWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimize_log.csv")
	l, err := createEvalLog(path)
	if err != nil {
		t.Fatal(err)
	}

	pv := NewParamVector()
	cfg := config.Default()
	raw := pv.DefaultVector()
	raw[4] = 3.6 // tournament size rounds on apply
	pv.ApplyToConfig(cfg, raw)

	ev := Evaluation{
		Objective:    -0.7,
		FinalFitness: 0.6,
		DecisiveRate: 1,
		Lineages:     map[string]float64{"blue/tank": 0.3, "red/ranged": 0.9},
		Seeds:        3,
	}
	for i := 1; i <= 2; i++ {
		if err := l.Write(newEvalRow(i, ev, cfg)); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var rows []evalRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		t.Fatalf("reading eval log: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	r := rows[1]
	if r.Eval != 2 || r.BlueTank != 0.3 || r.RedRanged != 0.9 || r.BlueMelee != 0 {
		t.Errorf("row = %+v", r)
	}
	if r.TournamentSize != 4 {
		t.Errorf("tournament size = %d, want the applied value 4", r.TournamentSize)
	}
}
