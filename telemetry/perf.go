package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the battle tick.
const (
	PhaseBlueAgents  = "blue_agents"
	PhaseRedAgents   = "red_agents"
	PhaseProjectiles = "projectiles"
	PhaseSpawns      = "spawns"
	PhaseSquads      = "squads"
)

var phases = []string{PhaseBlueAgents, PhaseRedAgents, PhaseProjectiles, PhaseSpawns, PhaseSquads}

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks tick timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string
	now           func() time.Time
}

// NewPerfCollector creates a new performance collector averaging over the
// last windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// StartTick begins timing a new battle tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := p.now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations and share of the tick)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalTick, minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration
		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgTick) * 100
		}
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	BattleID       string  `csv:"battle_id"`
	Tick           int     `csv:"tick"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	BlueAgentsPct  float64 `csv:"blue_agents_pct"`
	RedAgentsPct   float64 `csv:"red_agents_pct"`
	ProjectilesPct float64 `csv:"projectiles_pct"`
	SpawnsPct      float64 `csv:"spawns_pct"`
	SquadsPct      float64 `csv:"squads_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(battleID string, tick int) PerfStatsCSV {
	return PerfStatsCSV{
		BattleID:       battleID,
		Tick:           tick,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		BlueAgentsPct:  s.PhasePct[PhaseBlueAgents],
		RedAgentsPct:   s.PhasePct[PhaseRedAgents],
		ProjectilesPct: s.PhasePct[PhaseProjectiles],
		SpawnsPct:      s.PhasePct[PhaseSpawns],
		SquadsPct:      s.PhasePct[PhaseSquads],
	}
}
