package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/telemetry"
)

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	want := pv.DefaultVector()
	for i, spec := range pv.Specs {
		if got[i] != want[i] {
			t.Errorf("%s: config %v, spec default %v", spec.Path, got[i], want[i])
		}
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := pv.DefaultVector()
	values[0] = 5    // mutation_rate above range
	values[4] = 3.6  // tournament_size rounds
	values[7] = -1.0 // fitness adaptation below range
	pv.ApplyToConfig(cfg, values)

	if cfg.Evolution.MutationRate != 0.3 {
		t.Errorf("mutation rate = %v, want clamped to 0.3", cfg.Evolution.MutationRate)
	}
	if cfg.Evolution.TournamentSize != 4 {
		t.Errorf("tournament size = %d, want 4", cfg.Evolution.TournamentSize)
	}
	if cfg.Fitness.AdaptationRate != 0 {
		t.Errorf("fitness adaptation = %v, want 0", cfg.Fitness.AdaptationRate)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestEvaluationQuality(t *testing.T) {
	battles := []telemetry.BattleRecord{
		{RedBaseHealth: 0, BlueBaseHealth: 1200, BlueShots: 10, BlueHitRate: 0.5},
		{RedBaseHealth: 300, BlueBaseHealth: 1200},
	}
	quality := func(battles []telemetry.BattleRecord) float64 {
		decisive, hitRate := battleStats(battles)
		return Evaluation{DecisiveRate: decisive, HitRate: hitRate}.Quality()
	}
	// Half the battles decisive, mean hit rate 0.5
	want := 0.6*0.5 + 0.4*0.5
	if got := quality(battles); math.Abs(got-want) > 1e-12 {
		t.Errorf("quality = %v, want %v", got, want)
	}
	if got := quality(nil); got != 0 {
		t.Errorf("quality of no battles = %v, want 0", got)
	}
	if got := (Evaluation{DecisiveRate: 1, HitRate: 1.5}).Quality(); got != 1 {
		t.Errorf("quality = %v, want clamped to 1", got)
	}
	if f := computeFitness(0.5, 1); f != -0.6 {
		t.Errorf("fitness = %v, want -0.6", f)
	}
}
