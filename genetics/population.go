package genetics

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/botwar/components"
)

// ErrInvalidPopulation is returned when a population cannot be constructed.
var ErrInvalidPopulation = errors.New("invalid population")

// Population is the ordered set of genomes of one lineage.
type Population struct {
	Archetype  components.Archetype
	Genomes    []*Genome
	Generation int

	next int // Round-robin handout cursor
}

// NewPopulation wraps genomes as a population. An empty genome list is rejected.
func NewPopulation(arch components.Archetype, genomes []*Genome) (*Population, error) {
	if len(genomes) < 1 {
		return nil, fmt.Errorf("%w: %s population needs at least one genome", ErrInvalidPopulation, arch)
	}
	for i, g := range genomes {
		if g == nil {
			return nil, fmt.Errorf("%w: %s genome %d is nil", ErrInvalidPopulation, arch, i)
		}
		if g.Archetype != arch {
			return nil, fmt.Errorf("%w: genome %d is %s, want %s", ErrInvalidPopulation, i, g.Archetype, arch)
		}
	}
	return &Population{Archetype: arch, Genomes: genomes}, nil
}

// Size returns the number of genomes.
func (p *Population) Size() int { return len(p.Genomes) }

// Next hands out genomes round-robin for spawning.
func (p *Population) Next() *Genome {
	if len(p.Genomes) == 0 {
		return nil
	}
	g := p.Genomes[p.next%len(p.Genomes)]
	p.next = (p.next + 1) % len(p.Genomes)
	return g
}

// Fitnesses returns the fitness of every genome in order.
func (p *Population) Fitnesses() []float64 {
	out := make([]float64, len(p.Genomes))
	for i, g := range p.Genomes {
		out[i] = g.Fitness
	}
	return out
}

// MeanFitness returns the average fitness, or 0 for an empty population.
func (p *Population) MeanFitness() float64 {
	if len(p.Genomes) == 0 {
		return 0
	}
	return stat.Mean(p.Fitnesses(), nil)
}

// Best returns the fittest genome; ties go to the earliest.
func (p *Population) Best() *Genome {
	var best *Genome
	for _, g := range p.Genomes {
		if best == nil || g.Fitness > best.Fitness {
			best = g
		}
	}
	return best
}

// Ranked returns the genomes sorted by descending fitness, stable on ties.
func (p *Population) Ranked() []*Genome {
	ranked := make([]*Genome, len(p.Genomes))
	copy(ranked, p.Genomes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}

// AssignFitness sets each genome's fitness to the mean score of its carriers.
// Genomes without carriers score 0.
func (p *Population) AssignFitness(scores map[uint64][]float64) {
	for _, g := range p.Genomes {
		s := scores[g.ID]
		if len(s) == 0 {
			g.Fitness = 0
			continue
		}
		g.Fitness = stat.Mean(s, nil)
	}
}

// Diversity returns the mean standard deviation of the expressed traits,
// each normalised by its span. Fewer than two genomes have no diversity.
func (p *Population) Diversity(table *TraitTable) float64 {
	if len(p.Genomes) < 2 {
		return 0
	}
	values := make([]float64, len(p.Genomes))
	var sum float64
	var n int
	for t := Trait(0); t < NumTraits; t++ {
		if !t.Applies(p.Archetype) || table[t].Span() <= 0 {
			continue
		}
		for i, g := range p.Genomes {
			values[i] = g.Values[t] / table[t].Span()
		}
		sum += stat.StdDev(values, nil)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// TournamentSelect samples k distinct genomes and returns the fittest.
// Ties go to the earliest sample. k is capped at the population size.
func TournamentSelect(genomes []*Genome, k int, rng *rand.Rand) *Genome {
	n := len(genomes)
	if n == 0 {
		return nil
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	// Partial Fisher-Yates over an index permutation
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var best *Genome
	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
		candidate := genomes[idx[i]]
		if best == nil || candidate.Fitness > best.Fitness {
			best = candidate
		}
	}
	return best
}
