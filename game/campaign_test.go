package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/genetics"
	"github.com/pthm-cable/botwar/telemetry"
)

func testCampaignConfig() *config.Config {
	cfg := config.Default()
	cfg.Battle.MaxTicks = 200
	return cfg
}

func TestCampaignRunBattle(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCampaign(testCampaignConfig(), Options{Seed: 11, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewCampaign: %v", err)
	}

	res, err := c.RunBattle(context.Background())
	if err != nil {
		t.Fatalf("RunBattle: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	if res.Outcome == OutcomeUndecided {
		t.Error("battle left undecided")
	}
	if len(res.Generations) != 6 {
		t.Fatalf("got %d generation records, want one per lineage", len(res.Generations))
	}
	for _, rec := range res.Generations {
		if rec.Generation != 0 || rec.Size != config.Default().Evolution.InitialSize {
			t.Errorf("generation record %+v", rec)
		}
		if rec.BattleID != res.Record.BattleID {
			t.Errorf("record battle %q, want %q", rec.BattleID, res.Record.BattleID)
		}
	}
	if got := res.Record.BlueSpawns + res.Record.RedSpawns; got != len(res.Agents) {
		t.Errorf("%d agent records for %d spawns", len(res.Agents), got)
	}
	for _, a := range res.Agents {
		if a.GenomeID == 0 {
			t.Errorf("agent %d spawned without a genome", a.AgentID)
		}
		if a.Fitness < 0 {
			t.Errorf("agent %d has negative fitness %v", a.AgentID, a.Fitness)
		}
	}

	if c.Generation() != 1 || c.Battles() != 1 {
		t.Errorf("generation %d battles %d, want 1 and 1", c.Generation(), c.Battles())
	}

	for _, name := range []string{"config.yaml", "battles.csv", "agents.csv", "generations.csv", "perf.csv", "squads.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
	snap, err := telemetry.LoadSnapshot(filepath.Join(dir, "snapshots", res.Record.BattleID+".json"))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Winner != res.Outcome.String() || snap.Tick != res.Record.Ticks {
		t.Errorf("snapshot winner %s tick %d", snap.Winner, snap.Tick)
	}
}

func TestCampaignFitnessAttachedBeforeEvolve(t *testing.T) {
	c, err := NewCampaign(testCampaignConfig(), Options{Seed: 5})
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.RunBattle(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	best := make(map[string]float64)
	for _, a := range res.Agents {
		key := a.Team + "/" + a.Archetype
		best[key] = max(best[key], a.Fitness)
	}
	for _, rec := range res.Generations {
		// A genome scores the mean of its carriers, never more than the best carrier
		if rec.MaxFitness > best[rec.Lineage()]+1e-9 {
			t.Errorf("%s max fitness %v above best agent %v", rec.Lineage(), rec.MaxFitness, best[rec.Lineage()])
		}
	}
}

func TestCampaignDeterministic(t *testing.T) {
	run := func() []telemetry.BattleRecord {
		c, err := NewCampaign(testCampaignConfig(), Options{Seed: 3})
		if err != nil {
			t.Fatal(err)
		}
		var records []telemetry.BattleRecord
		for i := 0; i < 2; i++ {
			res, err := c.RunBattle(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			records = append(records, res.Record)
		}
		return records
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("battle %d diverged:\n%+v\n%+v", i, a[i], b[i])
		}
	}
	if a[0].BattleID == a[1].BattleID {
		t.Error("battle IDs should be unique")
	}
}

func TestCampaignCancelled(t *testing.T) {
	c, err := NewCampaign(testCampaignConfig(), Options{Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Run(ctx, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if c.Battles() != 0 {
		t.Errorf("played %d battles after cancel", c.Battles())
	}
}

func TestCampaignSeedsFromHallOfFame(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCampaign(testCampaignConfig(), Options{Seed: 2, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	c.Close()

	path := filepath.Join(dir, "hall_of_fame.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("hall of fame not written: %v", err)
	}

	next, err := NewCampaign(testCampaignConfig(), Options{Seed: 2, HallOfFamePath: path})
	if err != nil {
		t.Fatalf("NewCampaign from hall: %v", err)
	}
	lineage := genetics.Lineage{Team: components.TeamBlue, Archetype: components.ArchetypeTank}
	if got := next.Controller(lineage).Population().Size(); got != config.Default().Evolution.InitialSize {
		t.Errorf("seeded population size %d", got)
	}
	if next.HallOfFame().Size(lineage) != c.HallOfFame().Size(lineage) {
		t.Errorf("loaded hall has %d entries, wrote %d", next.HallOfFame().Size(lineage), c.HallOfFame().Size(lineage))
	}

	if _, err := NewCampaign(testCampaignConfig(), Options{HallOfFamePath: filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("expected error for missing hall of fame file")
	}
}
