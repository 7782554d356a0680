package genetics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/pthm-cable/botwar/components"
)

// HallEntry is a proven genome and the battle it was scored in.
type HallEntry struct {
	Genome   Genome
	Fitness  float64
	BattleID string
}

// HallOfFame keeps the fittest genomes seen per lineage, sorted by descending
// fitness and capped at maxSize entries each.
type HallOfFame struct {
	halls   map[Lineage][]HallEntry
	maxSize int
}

// NewHallOfFame creates a hall of fame with the given capacity per lineage.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		halls:   make(map[Lineage][]HallEntry),
		maxSize: maxSize,
	}
}

// Consider offers every genome of a scored population. Returns how many entered.
func (hof *HallOfFame) Consider(lineage Lineage, pop *Population, battleID string) int {
	added := 0
	for _, g := range pop.Genomes {
		if g.Fitness <= 0 {
			continue
		}
		if hof.insert(lineage, HallEntry{Genome: *g, Fitness: g.Fitness, BattleID: battleID}) {
			added++
		}
	}
	return added
}

// insert adds an entry, maintaining sorted order by fitness.
// If the hall is full, the lowest-fitness entry is removed. A genome already
// in the hall keeps a single entry holding its best fitness.
func (hof *HallOfFame) insert(lineage Lineage, entry HallEntry) bool {
	hall := hof.halls[lineage]

	for i := range hall {
		if hall[i].Genome.ID != entry.Genome.ID {
			continue
		}
		if entry.Fitness <= hall[i].Fitness {
			return false
		}
		hall = append(hall[:i], hall[i+1:]...)
		break
	}

	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	hof.halls[lineage] = hall
	return true
}

// Seeds returns clones of every genome in a lineage's hall, best first.
func (hof *HallOfFame) Seeds(lineage Lineage) []*Genome {
	hall := hof.halls[lineage]
	seeds := make([]*Genome, len(hall))
	for i := range hall {
		seeds[i] = hall[i].Genome.Clone()
	}
	return seeds
}

// Size returns the number of entries for a lineage.
func (hof *HallOfFame) Size(lineage Lineage) int {
	return len(hof.halls[lineage])
}

// TopFitness returns the highest fitness recorded for a lineage, or 0.
func (hof *HallOfFame) TopFitness(lineage Lineage) float64 {
	hall := hof.halls[lineage]
	if len(hall) == 0 {
		return 0
	}
	return hall[0].Fitness
}

// hallEntryJSON is the JSON-serializable representation of a hall entry.
type hallEntryJSON struct {
	GenomeID   uint64             `json:"genome_id"`
	Generation int                `json:"generation"`
	Fitness    float64            `json:"fitness"`
	BattleID   string             `json:"battle_id"`
	Traits     map[string]float64 `json:"traits"`
}

// MarshalJSON serializes the hall of fame keyed by lineage ("blue/melee").
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]hallEntryJSON, len(hof.halls))
	for lineage, hall := range hof.halls {
		entries := make([]hallEntryJSON, len(hall))
		for i, e := range hall {
			traits := make(map[string]float64, NumTraits)
			for t := Trait(0); t < NumTraits; t++ {
				traits[t.String()] = e.Genome.Values[t]
			}
			entries[i] = hallEntryJSON{
				GenomeID:   e.Genome.ID,
				Generation: e.Genome.Generation,
				Fitness:    e.Fitness,
				BattleID:   e.BattleID,
				Traits:     traits,
			}
		}
		export[lineage.String()] = entries
	}
	return json.MarshalIndent(export, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file. Unknown lineages and
// trait names are skipped; trait values are clamped into the table's ranges.
func LoadHallOfFameFromFile(path string, maxSize int, table *TraitTable) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw map[string][]hallEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	lineages := make(map[string]Lineage)
	for _, team := range components.Teams {
		for _, arch := range components.Archetypes {
			l := Lineage{Team: team, Archetype: arch}
			lineages[l.String()] = l
		}
	}
	traitIndex := make(map[string]Trait, NumTraits)
	for t := Trait(0); t < NumTraits; t++ {
		traitIndex[t.String()] = t
	}

	hof := NewHallOfFame(maxSize)
	for name, entries := range raw {
		lineage, ok := lineages[name]
		if !ok {
			slog.Warn("hall_of_fame_load: unknown lineage, skipping", "lineage", name)
			continue
		}
		for _, ej := range entries {
			g := Genome{ID: ej.GenomeID, Archetype: lineage.Archetype, Generation: ej.Generation}
			for t := Trait(0); t < NumTraits; t++ {
				g.Values[t] = table[t].Default
			}
			for traitName, v := range ej.Traits {
				if t, ok := traitIndex[traitName]; ok {
					g.Values[t] = table[t].Clamp(v)
				}
			}
			hof.insert(lineage, HallEntry{Genome: g, Fitness: ej.Fitness, BattleID: ej.BattleID})
		}
	}
	return hof, nil
}
