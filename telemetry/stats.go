package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationRecord is one row of generations.csv: a lineage's population at
// a generation boundary, before it is replaced.
type GenerationRecord struct {
	BattleID     string  `csv:"battle_id"`
	Team         string  `csv:"team"`
	Archetype    string  `csv:"archetype"`
	Generation   int     `csv:"generation"`
	Size         int     `csv:"size"`
	AvgFitness   float64 `csv:"avg_fitness"`
	MaxFitness   float64 `csv:"max_fitness"`
	FitnessP10   float64 `csv:"fitness_p10"`
	FitnessP50   float64 `csv:"fitness_p50"`
	FitnessP90   float64 `csv:"fitness_p90"`
	MutationRate float64 `csv:"mutation_rate"`
	Diversity    float64 `csv:"diversity"`

	// Mean relative change of AvgFitness over the trend window
	ImprovementRate float64 `csv:"improvement_rate"`
}

// Lineage returns the "team/archetype" key of the record.
func (r GenerationRecord) Lineage() string {
	return r.Team + "/" + r.Archetype
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats calculates mean, max and percentiles of fitness values.
func ComputeFitnessStats(values []float64) (mean, maxV, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	maxV = sorted[len(sorted)-1]
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, maxV, p10, p50, p90
}

// TrendAnalyzer fills in each record's improvement rate from the lineage's
// recent average fitness.
type TrendAnalyzer struct {
	window  int
	history map[string][]float64
}

// NewTrendAnalyzer creates an analyzer averaging over the last window records.
func NewTrendAnalyzer(window int) *TrendAnalyzer {
	if window < 1 {
		window = 5
	}
	return &TrendAnalyzer{window: window, history: make(map[string][]float64)}
}

// Observe appends rec to its lineage's history and sets rec.ImprovementRate.
func (ta *TrendAnalyzer) Observe(rec *GenerationRecord) {
	key := rec.Lineage()
	h := append(ta.history[key], rec.AvgFitness)
	if len(h) > ta.window+1 {
		h = h[len(h)-ta.window-1:]
	}
	ta.history[key] = h

	var changes []float64
	for i := 1; i < len(h); i++ {
		if h[i-1] == 0 {
			continue
		}
		changes = append(changes, (h[i]-h[i-1])/math.Abs(h[i-1]))
	}
	rec.ImprovementRate = 0
	if len(changes) > 0 {
		rec.ImprovementRate = stat.Mean(changes, nil)
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (r GenerationRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("lineage", r.Lineage()),
		slog.Int("generation", r.Generation),
		slog.Int("size", r.Size),
		slog.Float64("avg_fitness", r.AvgFitness),
		slog.Float64("max_fitness", r.MaxFitness),
		slog.Float64("p50", r.FitnessP50),
		slog.Float64("mutation_rate", r.MutationRate),
		slog.Float64("diversity", r.Diversity),
		slog.Float64("improvement_rate", r.ImprovementRate),
	)
}
