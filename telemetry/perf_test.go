package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBlueAgents)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseRedAgents)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseBlueAgents]; !ok {
		t.Error("expected blue_agents phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseRedAgents]; !ok {
		t.Error("expected red_agents phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBlueAgents)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

// stepClock is a manual clock for PerfCollector.
type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time          { return c.t }
func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)
	clock := &stepClock{t: time.Unix(0, 0)}
	pc.now = clock.now

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		clock.advance(10 * time.Microsecond)
		pc.StartPhase("slow")
		clock.advance(30 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != 40*time.Microsecond {
		t.Errorf("avg tick = %v, want 40µs", stats.AvgTickDuration)
	}
	if got := stats.PhasePct["fast"]; got != 25 {
		t.Errorf("fast phase = %v%%, want 25%%", got)
	}
	if got := stats.PhasePct["slow"]; got != 75 {
		t.Errorf("slow phase = %v%%, want 75%%", got)
	}
	if stats.TicksPerSecond != 25000 {
		t.Errorf("ticks/s = %v, want 25000", stats.TicksPerSecond)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	pc := NewPerfCollector(4)
	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseBlueAgents)
		time.Sleep(50 * time.Microsecond)
		pc.StartPhase(PhaseRedAgents)
		time.Sleep(50 * time.Microsecond)
		pc.EndTick()
	}

	row := pc.Stats().ToCSV("battle-1", 400)
	if row.BattleID != "battle-1" || row.Tick != 400 {
		t.Errorf("row identity = %q/%d", row.BattleID, row.Tick)
	}
	if row.BlueAgentsPct <= 0 || row.RedAgentsPct <= 0 {
		t.Errorf("expected agent phase shares, got %v / %v", row.BlueAgentsPct, row.RedAgentsPct)
	}
	if row.SpawnsPct != 0 {
		t.Errorf("untimed phase should be 0, got %v", row.SpawnsPct)
	}
}
