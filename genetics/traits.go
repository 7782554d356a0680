// Package genetics implements the evolvable genome of combat agents and the
// adaptive genetic algorithm that breeds them between battles.
package genetics

import (
	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
)

// Trait indexes one gene of a Genome.
type Trait uint8

const (
	TraitHealth Trait = iota
	TraitSpeed
	TraitDamage
	TraitAggression
	TraitComboMultiplier // melee
	TraitLifestealRate   // melee
	TraitAccuracy        // ranged
	TraitMultishotChance // ranged
	NumTraits
)

var traitNames = [NumTraits]string{
	"health",
	"speed",
	"damage",
	"aggression",
	"combo_multiplier",
	"lifesteal_rate",
	"accuracy",
	"multishot_chance",
}

func (t Trait) String() string {
	if t < NumTraits {
		return traitNames[t]
	}
	return "unknown"
}

// Applies reports whether trait t is expressed by archetype a.
// Unexpressed traits stay at their defaults and never evolve.
func (t Trait) Applies(a components.Archetype) bool {
	switch t {
	case TraitComboMultiplier, TraitLifestealRate:
		return a == components.ArchetypeMelee
	case TraitAccuracy, TraitMultishotChance:
		return a == components.ArchetypeRanged
	case TraitHealth, TraitSpeed, TraitDamage, TraitAggression:
		return true
	default:
		return false
	}
}

// Range is the valid interval of one trait.
type Range struct {
	Min, Max, Default float64
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Clamp pulls v into [Min, Max].
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// TraitTable holds the valid range of every trait.
type TraitTable [NumTraits]Range

// NewTraitTable builds the trait table from configuration.
func NewTraitTable(cfg config.TraitsConfig) TraitTable {
	conv := func(r config.TraitRange) Range {
		return Range{Min: r.Min, Max: r.Max, Default: r.Default}
	}
	return TraitTable{
		TraitHealth:          conv(cfg.Health),
		TraitSpeed:           conv(cfg.Speed),
		TraitDamage:          conv(cfg.Damage),
		TraitAggression:      conv(cfg.Aggression),
		TraitComboMultiplier: conv(cfg.ComboMultiplier),
		TraitLifestealRate:   conv(cfg.LifestealRate),
		TraitAccuracy:        conv(cfg.Accuracy),
		TraitMultishotChance: conv(cfg.MultishotChance),
	}
}
