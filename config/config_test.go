package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.World.Width != 1200 || cfg.World.Height != 800 {
		t.Errorf("unexpected world bounds %vx%v", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Archetypes.Melee.AttackRange != 50 {
		t.Errorf("melee attack range = %v, want 50", cfg.Archetypes.Melee.AttackRange)
	}
	if cfg.Archetypes.Tank.DamageReduction != 0.5 {
		t.Errorf("tank damage reduction = %v, want 0.5", cfg.Archetypes.Tank.DamageReduction)
	}
	if cfg.Evolution.MinSize != 6 || cfg.Evolution.MaxSize != 20 {
		t.Errorf("unexpected population bounds [%d, %d]", cfg.Evolution.MinSize, cfg.Evolution.MaxSize)
	}

	w := cfg.Fitness.Weights
	sum := w.TimeAlive + w.EnemiesKilled + w.BaseDamage + w.DamageTaken + w.DamageDealt + w.Survival + w.KillDeath + w.Objective
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("default fitness weights sum to %v, want 1", sum)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("world:\n  width: 640\nevolution:\n  tournament_size: 5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.World.Width != 640 {
		t.Errorf("width = %v, want 640", cfg.World.Width)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.World.Height != 800 {
		t.Errorf("height = %v, want default 800", cfg.World.Height)
	}
	if cfg.Evolution.TournamentSize != 5 {
		t.Errorf("tournament size = %d, want 5", cfg.Evolution.TournamentSize)
	}
}

func TestValidateRejectsBadPopulation(t *testing.T) {
	cfg := Default()
	cfg.Evolution.MinSize = 0
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for min_size 0, got %v", err)
	}

	cfg = Default()
	cfg.Evolution.InitialSize = cfg.Evolution.MaxSize + 1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for oversized initial population, got %v", err)
	}

	cfg = Default()
	cfg.Traits.Speed.Min = 20
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for inverted trait range, got %v", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Spawn.MaxAgents = 3
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Spawn.MaxAgents != 3 {
		t.Errorf("max agents = %d, want 3", loaded.Spawn.MaxAgents)
	}
}
