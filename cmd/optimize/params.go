// Package main provides CMA-ES optimization of the evolution parameters.
package main

import (
	"math"

	"github.com/pthm-cable/botwar/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Genetic operators
			{Name: "mutation_rate", Path: "evolution.mutation_rate", Min: 0.01, Max: 0.3, Default: 0.1},
			{Name: "mutation_scale", Path: "evolution.mutation_scale", Min: 0.05, Max: 0.5, Default: 0.2},
			{Name: "blend_deviation", Path: "evolution.blend_deviation", Min: 0, Max: 0.3, Default: 0.1},
			{Name: "elite_fraction", Path: "evolution.elite_fraction", Min: 0.05, Max: 0.3, Default: 0.1},
			{Name: "tournament_size", Path: "evolution.tournament_size", Min: 2, Max: 6, Default: 3},
			// Adaptive control
			{Name: "adaptation_rate", Path: "evolution.adaptation_rate", Min: 0.02, Max: 0.3, Default: 0.1},
			{Name: "improvement_threshold", Path: "evolution.improvement_threshold", Min: 0.01, Max: 0.2, Default: 0.05},
			// Fitness weight adaptation
			{Name: "fitness_adaptation_rate", Path: "fitness.adaptation_rate", Min: 0, Max: 0.3, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	ev := &cfg.Evolution
	ev.MutationRate = clamped[0]
	ev.MutationScale = clamped[1]
	ev.BlendDeviation = clamped[2]
	ev.EliteFraction = clamped[3]
	ev.TournamentSize = int(math.Round(clamped[4]))
	ev.AdaptationRate = clamped[5]
	ev.ImprovementThreshold = clamped[6]
	cfg.Fitness.AdaptationRate = clamped[7]

	// Keep the starting rate inside the adaptive bounds
	ev.MinMutationRate = math.Min(ev.MinMutationRate, ev.MutationRate)
	ev.MaxMutationRate = math.Max(ev.MaxMutationRate, ev.MutationRate)
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Evolution.MutationRate,
		cfg.Evolution.MutationScale,
		cfg.Evolution.BlendDeviation,
		cfg.Evolution.EliteFraction,
		float64(cfg.Evolution.TournamentSize),
		cfg.Evolution.AdaptationRate,
		cfg.Evolution.ImprovementThreshold,
		cfg.Fitness.AdaptationRate,
	}
}
