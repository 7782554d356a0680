package genetics

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
)

// Genome is the fixed-shape trait vector of one agent archetype instance.
type Genome struct {
	ID         uint64
	Archetype  components.Archetype
	Generation int
	Values     [NumTraits]float64
	Fitness    float64 // Attached after a battle; reset on cloning
}

// Get returns the value of trait t.
func (g *Genome) Get(t Trait) float64 { return g.Values[t] }

// Clone returns a copy with fitness reset.
func (g *Genome) Clone() *Genome {
	c := *g
	c.Fitness = 0
	return &c
}

// Valid reports whether every trait lies within its range.
func (g *Genome) Valid(table *TraitTable) bool {
	for t := Trait(0); t < NumTraits; t++ {
		v := g.Values[t]
		if v < table[t].Min || v > table[t].Max {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer for structured logging.
func (g *Genome) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Uint64("id", g.ID),
		slog.String("archetype", g.Archetype.String()),
		slog.Int("generation", g.Generation),
		slog.Float64("fitness", g.Fitness),
	}
	for t := Trait(0); t < NumTraits; t++ {
		if t.Applies(g.Archetype) {
			attrs = append(attrs, slog.Float64(t.String(), g.Values[t]))
		}
	}
	return slog.GroupValue(attrs...)
}

// SeedGenome builds the reference genome of an archetype: its profile's
// health, speed and damage, with every other trait at its default.
func SeedGenome(arch components.Archetype, profile config.ArchetypeConfig, table *TraitTable) *Genome {
	g := &Genome{Archetype: arch}
	for t := Trait(0); t < NumTraits; t++ {
		g.Values[t] = table[t].Default
	}
	g.Values[TraitHealth] = table[TraitHealth].Clamp(profile.Health)
	g.Values[TraitSpeed] = table[TraitSpeed].Clamp(profile.Speed)
	g.Values[TraitDamage] = table[TraitDamage].Clamp(profile.Damage)
	return g
}

// Mutate perturbs each expressed trait with probability rate by a uniform
// step of up to scale times the trait's span, then clamps it into range.
func Mutate(g *Genome, table *TraitTable, rate, scale float64, rng *rand.Rand) {
	for t := Trait(0); t < NumTraits; t++ {
		if !t.Applies(g.Archetype) {
			continue
		}
		if rng.Float64() < rate {
			step := (rng.Float64()*2 - 1) * scale * table[t].Span()
			g.Values[t] = table[t].Clamp(g.Values[t] + step)
		}
	}
}

// Crossover builds a child from two parents of the same archetype. Each
// expressed trait is either blended (parent mean jittered by blendDev times
// the parents' difference) or inherited whole from one parent, with equal odds.
func Crossover(a, b *Genome, table *TraitTable, blendDev float64, rng *rand.Rand) *Genome {
	child := a.Clone()
	for t := Trait(0); t < NumTraits; t++ {
		if !t.Applies(child.Archetype) {
			continue
		}
		va, vb := a.Values[t], b.Values[t]
		var v float64
		if rng.Float64() < 0.5 {
			dev := blendDev * abs(va-vb)
			v = (va+vb)/2 + (rng.Float64()*2-1)*dev
		} else if rng.Float64() < 0.5 {
			v = va
		} else {
			v = vb
		}
		child.Values[t] = table[t].Clamp(v)
	}
	return child
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
