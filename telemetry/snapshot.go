package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/botwar/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the end state of a battle for a presentation layer.
type Snapshot struct {
	Version  int    `json:"version"`
	RNGSeed  int64  `json:"rng_seed"`
	BattleID string `json:"battle_id"`
	Winner   string `json:"winner"`

	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	Tick int     `json:"tick"`
	Now  float64 `json:"now_ms"`

	Agents      []AgentState      `json:"agents"`
	Bases       []BaseState       `json:"bases"`
	Projectiles []ProjectileState `json:"projectiles"`
	Obstacles   []ObstacleState   `json:"obstacles"`
}

// AgentState holds one agent's renderable state.
type AgentState struct {
	ID        uint32  `json:"id"`
	Team      string  `json:"team"`
	Archetype string  `json:"archetype"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	Alive     bool    `json:"alive"`
	State     string  `json:"state"`
}

// BaseState holds one base's renderable state.
type BaseState struct {
	Team      string  `json:"team"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
}

// ProjectileState holds one in-flight projectile.
type ProjectileState struct {
	Team string  `json:"team"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ObstacleState holds one obstacle.
type ObstacleState struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// NewSnapshot converts a battle's draw-less state into its JSON form.
func NewSnapshot(seed int64, battleID, winner string, bounds components.Bounds, s components.Snapshot) *Snapshot {
	snap := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     seed,
		BattleID:    battleID,
		Winner:      winner,
		WorldWidth:  bounds.Width,
		WorldHeight: bounds.Height,
		Tick:        s.Tick,
		Now:         s.Now,
	}
	for _, a := range s.Agents {
		snap.Agents = append(snap.Agents, AgentState{
			ID:        a.ID,
			Team:      a.Team.String(),
			Archetype: a.Archetype.String(),
			X:         a.Pos.X,
			Y:         a.Pos.Y,
			Radius:    a.Radius,
			Health:    a.Health,
			MaxHealth: a.MaxHealth,
			Alive:     a.Alive,
			State:     a.State,
		})
	}
	for _, b := range s.Bases {
		snap.Bases = append(snap.Bases, BaseState{
			Team:      b.Team.String(),
			X:         b.Pos.X,
			Y:         b.Pos.Y,
			Radius:    b.Radius,
			Health:    b.Health,
			MaxHealth: b.MaxHealth,
		})
	}
	for _, p := range s.Projectiles {
		snap.Projectiles = append(snap.Projectiles, ProjectileState{Team: p.Team.String(), X: p.Pos.X, Y: p.Pos.Y})
	}
	for _, o := range s.Obstacles {
		snap.Obstacles = append(snap.Obstacles, ObstacleState{Type: o.Type.String(), X: o.Pos.X, Y: o.Pos.Y, Radius: o.Radius})
	}
	return snap
}

// SaveSnapshot writes a snapshot to dir as <battle_id>.json.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := snapshot.BattleID
	if name == "" {
		name = fmt.Sprintf("snapshot_%d", snapshot.Tick)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}
	return &snapshot, nil
}
