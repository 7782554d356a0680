package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/botwar/components"
)

func testSnapshot() components.Snapshot {
	return components.Snapshot{
		Tick: 900,
		Now:  29700,
		Agents: []components.AgentSnapshot{
			{ID: 1, Team: components.TeamBlue, Archetype: components.ArchetypeRanged, Pos: components.Position{X: 150, Y: 250}, Radius: 18, Health: 40, MaxHealth: 80, Alive: true, State: "engage"},
			{ID: 2, Team: components.TeamRed, Archetype: components.ArchetypeTank, Pos: components.Position{X: 300, Y: 260}, Radius: 25, MaxHealth: 200, State: "escort"},
		},
		Bases: []components.BaseSnapshot{
			{Team: components.TeamBlue, Pos: components.Position{X: 100, Y: 100}, Radius: 40, Health: 5000, MaxHealth: 5000},
			{Team: components.TeamRed, Pos: components.Position{X: 1100, Y: 700}, Radius: 40, Health: 0, MaxHealth: 5000},
		},
		Projectiles: []components.ProjectileSnapshot{{Team: components.TeamBlue, Pos: components.Position{X: 200, Y: 255}}},
		Obstacles:   []components.Obstacle{{Pos: components.Position{X: 600, Y: 400}, Radius: 20, Type: components.ObstacleRock}},
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	bounds := components.Bounds{Width: 1200, Height: 800}

	snapshot := NewSnapshot(42, "0b6f7c1e", "blue", bounds, testSnapshot())

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "0b6f7c1e.json"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != 42 || loaded.Winner != "blue" || loaded.Tick != 900 {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if len(loaded.Agents) != 2 || len(loaded.Bases) != 2 || len(loaded.Projectiles) != 1 || len(loaded.Obstacles) != 1 {
		t.Fatalf("counts: agents %d bases %d projectiles %d obstacles %d",
			len(loaded.Agents), len(loaded.Bases), len(loaded.Projectiles), len(loaded.Obstacles))
	}
	if a := loaded.Agents[0]; a.Archetype != "ranged" || a.Team != "blue" || a.X != 150 || !a.Alive {
		t.Errorf("agent mismatch: %+v", a)
	}
	if o := loaded.Obstacles[0]; o.Type != "rock" || o.Radius != 20 {
		t.Errorf("obstacle mismatch: %+v", o)
	}
}

func TestSnapshotJSONFields(t *testing.T) {
	snapshot := NewSnapshot(7, "b1", "draw", components.Bounds{Width: 10, Height: 10}, testSnapshot())
	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"version", "rng_seed", "battle_id", "winner", "agents", "bases", "obstacles", "now_ms"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing JSON field %q", key)
		}
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unsupported version")
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
