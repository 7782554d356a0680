// Package fitness scores an agent's battle metrics and adapts the scoring
// weights toward the components that correlate with winning.
package fitness

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
)

// Component indexes one term of the fitness score.
type Component uint8

const (
	TimeAlive Component = iota
	EnemiesKilled
	BaseDamage
	DamageTaken // Penalty
	DamageDealt
	Survival
	KillDeath
	Objective
	NumComponents
)

var componentNames = [NumComponents]string{
	"time_alive",
	"enemies_killed",
	"base_damage",
	"damage_taken",
	"damage_dealt",
	"survival",
	"kill_death",
	"objective",
}

func (c Component) String() string {
	if c < NumComponents {
		return componentNames[c]
	}
	return "unknown"
}

// Vector holds one value per component.
type Vector [NumComponents]float64

func vectorOf(w config.FitnessWeights) Vector {
	return Vector{
		TimeAlive:     w.TimeAlive,
		EnemiesKilled: w.EnemiesKilled,
		BaseDamage:    w.BaseDamage,
		DamageTaken:   w.DamageTaken,
		DamageDealt:   w.DamageDealt,
		Survival:      w.Survival,
		KillDeath:     w.KillDeath,
		Objective:     w.Objective,
	}
}

type sample struct {
	features Vector
	success  float64
}

// Calculator maps battle metrics to a non-negative scalar.
// Its weights always sum to 1.
type Calculator struct {
	cfg     config.FitnessConfig
	weights Vector
	scales  Vector
	history []sample
}

// NewCalculator creates a calculator with the configured initial weights,
// normalised to sum to 1.
func NewCalculator(cfg config.FitnessConfig) *Calculator {
	c := &Calculator{
		cfg:     cfg,
		weights: vectorOf(cfg.Weights),
		scales:  vectorOf(cfg.Scales),
	}
	for i := range c.scales {
		if c.scales[i] <= 0 {
			c.scales[i] = 1
		}
	}
	c.normalize()
	return c
}

// Weights returns the current weight vector.
func (c *Calculator) Weights() Vector { return c.weights }

// Features normalises raw metrics into per-component values.
func (c *Calculator) Features(m components.Metrics) Vector {
	deaths := 0.0
	survived := 1.0
	if m.Died {
		deaths = 1
		survived = 0
	}
	kd := float64(m.Kills) / math.Max(1, deaths)
	if c.cfg.KillDeathCap > 0 {
		kd = math.Min(kd, c.cfg.KillDeathCap)
	}

	raw := Vector{
		TimeAlive:     m.TimeAlive,
		EnemiesKilled: float64(m.Kills),
		BaseDamage:    m.DamageToBase,
		DamageTaken:   m.DamageTaken,
		DamageDealt:   m.DamageToEnemies,
		Survival:      survived,
		KillDeath:     kd,
		Objective:     m.ObjectiveScore,
	}
	var f Vector
	for i := range raw {
		f[i] = raw[i] / c.scales[i]
	}
	return f
}

// Score returns the weighted fitness of the metrics, never below 0.
func (c *Calculator) Score(m components.Metrics) float64 {
	f := c.Features(m)
	var score float64
	for i := Component(0); i < NumComponents; i++ {
		if i == DamageTaken {
			score -= c.weights[i] * f[i]
			continue
		}
		score += c.weights[i] * f[i]
	}
	return math.Max(0, score)
}

// Record stores one agent's features with its battle outcome for adaptation.
// The history is bounded; the oldest samples are dropped first.
func (c *Calculator) Record(m components.Metrics, won bool) {
	s := sample{features: c.Features(m)}
	if won {
		s.success = 1
	}
	c.history = append(c.history, s)
	if limit := c.cfg.HistorySize; limit > 0 && len(c.history) > limit {
		c.history = c.history[len(c.history)-limit:]
	}
}

// Samples returns the number of recorded samples.
func (c *Calculator) Samples() int { return len(c.history) }

// Adapt scales each weight by its component's correlation with success,
// clamps it into [MinWeight, MaxWeight] and renormalises. It needs at least
// MinSamples recorded samples; returns whether the weights changed.
func (c *Calculator) Adapt() bool {
	n := len(c.history)
	if n < c.cfg.MinSamples || n < 2 {
		return false
	}

	success := make([]float64, n)
	for i, s := range c.history {
		success[i] = s.success
	}

	x := make([]float64, n)
	for comp := Component(0); comp < NumComponents; comp++ {
		for i, s := range c.history {
			x[i] = s.features[comp]
		}
		corr := stat.Correlation(x, success, nil)
		if math.IsNaN(corr) {
			corr = 0
		}

		w := c.weights[comp] * (1 + c.cfg.AdaptationRate*corr)
		c.weights[comp] = math.Min(math.Max(w, c.cfg.MinWeight), c.cfg.MaxWeight)
	}
	c.normalize()

	slog.Debug("fitness weights adapted", "samples", n, "weights", c.weights)
	return true
}

func (c *Calculator) normalize() {
	sum := floats.Sum(c.weights[:])
	if sum <= 0 {
		floats.AddConst(1, c.weights[:])
		sum = floats.Sum(c.weights[:])
	}
	floats.Scale(1/sum, c.weights[:])
}

// LogValue implements slog.LogValuer for structured logging.
func (v Vector) LogValue() slog.Value {
	attrs := make([]slog.Attr, NumComponents)
	for i := Component(0); i < NumComponents; i++ {
		attrs[i] = slog.Float64(i.String(), v[i])
	}
	return slog.GroupValue(attrs...)
}
