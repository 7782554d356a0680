// Package config provides configuration loading and access for the battle simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	Base        BaseConfig        `yaml:"base"`
	Spawn       SpawnConfig       `yaml:"spawn"`
	Archetypes  ArchetypesConfig  `yaml:"archetypes"`
	Traits      TraitsConfig      `yaml:"traits"`
	Evolution   EvolutionConfig   `yaml:"evolution"`
	Fitness     FitnessConfig     `yaml:"fitness"`
	Squads      SquadsConfig      `yaml:"squads"`
	Battle      BattleConfig      `yaml:"battle"`
	Obstacles   ObstaclesConfig   `yaml:"obstacles"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// WorldConfig holds map bounds in world units.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PathfindingConfig holds grid quantization parameters.
type PathfindingConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// BaseConfig holds home base parameters.
type BaseConfig struct {
	Health float64 `yaml:"health"`
	Radius float64 `yaml:"radius"`
	Inset  float64 `yaml:"inset"` // Distance of each base from its map corner
}

// SpawnConfig holds base spawn policy parameters.
type SpawnConfig struct {
	Cooldown    float64 `yaml:"cooldown"`     // Milliseconds between spawns
	MinRadius   float64 `yaml:"min_radius"`   // Spawn ring inner radius
	MaxRadius   float64 `yaml:"max_radius"`   // Spawn ring outer radius
	MaxAgents   int     `yaml:"max_agents"`   // Living roster cap per team (0 = unlimited)
	InitialWave int     `yaml:"initial_wave"` // Agents spawned per team at battle start
}

// ArchetypeConfig holds default combat stats for one agent archetype.
// Genome-carrying agents override health, speed and damage.
type ArchetypeConfig struct {
	Health          float64 `yaml:"health"`
	Speed           float64 `yaml:"speed"`
	Damage          float64 `yaml:"damage"`
	Radius          float64 `yaml:"radius"`
	AttackRange     float64 `yaml:"attack_range"`
	DetectionRange  float64 `yaml:"detection_range"`
	OptimalRange    float64 `yaml:"optimal_range"`
	RetreatRange    float64 `yaml:"retreat_range"`
	ProtectionRange float64 `yaml:"protection_range"`
	AttackCooldown  float64 `yaml:"attack_cooldown"`  // Milliseconds
	DamageReduction float64 `yaml:"damage_reduction"` // Incoming damage multiplier (1 = none)
	BaseDamageScale float64 `yaml:"base_damage_scale"`
	ProjectileSpeed float64 `yaml:"projectile_speed"`
	ProjectileSize  float64 `yaml:"projectile_radius"`
	EscortThreshold float64 `yaml:"escort_threshold"` // Ally health ratio that triggers escort
	MaxSpread       float64 `yaml:"max_spread"`       // Aim spread (radians) at zero accuracy
}

// ArchetypesConfig holds the per-archetype capability tables.
type ArchetypesConfig struct {
	Melee  ArchetypeConfig `yaml:"melee"`
	Ranged ArchetypeConfig `yaml:"ranged"`
	Tank   ArchetypeConfig `yaml:"tank"`
}

// TraitRange is the valid interval and seed default of one genome trait.
type TraitRange struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

// TraitsConfig holds the declared range of every genome trait.
type TraitsConfig struct {
	Health          TraitRange `yaml:"health"`
	Speed           TraitRange `yaml:"speed"`
	Damage          TraitRange `yaml:"damage"`
	Aggression      TraitRange `yaml:"aggression"`
	ComboMultiplier TraitRange `yaml:"combo_multiplier"`
	LifestealRate   TraitRange `yaml:"lifesteal_rate"`
	Accuracy        TraitRange `yaml:"accuracy"`
	MultishotChance TraitRange `yaml:"multishot_chance"`
}

// EvolutionConfig holds genetic algorithm parameters.
type EvolutionConfig struct {
	InitialSize          int     `yaml:"initial_size"`
	MinSize              int     `yaml:"min_size"`
	MaxSize              int     `yaml:"max_size"`
	SizeStep             int     `yaml:"size_step"`
	TournamentSize       int     `yaml:"tournament_size"`
	EliteFraction        float64 `yaml:"elite_fraction"`
	MutationRate         float64 `yaml:"mutation_rate"`
	MinMutationRate      float64 `yaml:"min_mutation_rate"`
	MaxMutationRate      float64 `yaml:"max_mutation_rate"`
	MutationScale        float64 `yaml:"mutation_scale"` // Perturbation as a fraction of trait range
	BlendDeviation       float64 `yaml:"blend_deviation"`
	AdaptationRate       float64 `yaml:"adaptation_rate"`
	StagnationThreshold  int     `yaml:"stagnation_threshold"`
	ImprovementThreshold float64 `yaml:"improvement_threshold"`
	HistorySize          int     `yaml:"history_size"`
}

// FitnessWeights holds one weight per fitness component.
type FitnessWeights struct {
	TimeAlive     float64 `yaml:"time_alive"`
	EnemiesKilled float64 `yaml:"enemies_killed"`
	BaseDamage    float64 `yaml:"base_damage"`
	DamageTaken   float64 `yaml:"damage_taken"`
	DamageDealt   float64 `yaml:"damage_dealt"`
	Survival      float64 `yaml:"survival"`
	KillDeath     float64 `yaml:"kill_death"`
	Objective     float64 `yaml:"objective"`
}

// FitnessConfig holds fitness scoring parameters.
type FitnessConfig struct {
	Weights        FitnessWeights `yaml:"weights"`
	Scales         FitnessWeights `yaml:"scales"` // Reference scale each raw metric is divided by
	KillDeathCap   float64        `yaml:"kill_death_cap"`
	AdaptationRate float64        `yaml:"adaptation_rate"`
	MinWeight      float64        `yaml:"min_weight"`
	MaxWeight      float64        `yaml:"max_weight"`
	HistorySize    int            `yaml:"history_size"`
	MinSamples     int            `yaml:"min_samples"`
}

// SquadsConfig holds squad system parameters.
type SquadsConfig struct {
	CheckInterval      float64 `yaml:"check_interval"` // Milliseconds between reformation checks
	AttackDamageGoal   float64 `yaml:"attack_damage_goal"`
	CriticalBaseHealth float64 `yaml:"critical_base_health"` // Base health ratio
	MinForceRatio      float64 `yaml:"min_force_ratio"`
	MaxForceRatio      float64 `yaml:"max_force_ratio"`
	MaxLosses          float64 `yaml:"max_losses"`
}

// BattleConfig holds battle driver parameters.
type BattleConfig struct {
	TickMillis float64 `yaml:"tick_millis"`
	MaxTicks   int     `yaml:"max_ticks"`
}

// ObstaclesConfig holds obstacle field generation parameters.
type ObstaclesConfig struct {
	Count       int     `yaml:"count"`
	Margin      float64 `yaml:"margin"`
	BaseClear   float64 `yaml:"base_clearance"`
	TreeRadius  float64 `yaml:"tree_radius"`
	RockRadius  float64 `yaml:"rock_radius"`
	MaxAttempts int     `yaml:"max_attempts"`
}

// TelemetryConfig holds output parameters.
type TelemetryConfig struct {
	TrendWindow    int             `yaml:"trend_window"` // Records averaged for the improvement rate
	PerfWindow     int             `yaml:"perf_window"`  // Ticks in the rolling timing window
	HallOfFameSize int             `yaml:"hall_of_fame_size"`
	Bookmarks      BookmarksConfig `yaml:"bookmarks"`
}

// BookmarksConfig holds thresholds for campaign milestone detection.
type BookmarksConfig struct {
	HistorySize       int     `yaml:"history_size"`
	BreakthroughRatio float64 `yaml:"breakthrough_ratio"` // Max fitness over previous best
	StagnationRecords int     `yaml:"stagnation_records"`
	StagnationEpsilon float64 `yaml:"stagnation_epsilon"`
	DiversityFloor    float64 `yaml:"diversity_floor"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("%w: world bounds must be positive, got %vx%v", ErrInvalidConfig, c.World.Width, c.World.Height)
	}
	if c.Pathfinding.CellSize <= 0 {
		return fmt.Errorf("%w: pathfinding cell size must be positive", ErrInvalidConfig)
	}

	ev := c.Evolution
	if ev.MinSize < 1 {
		return fmt.Errorf("%w: evolution min_size must be at least 1, got %d", ErrInvalidConfig, ev.MinSize)
	}
	if ev.MinSize > ev.MaxSize {
		return fmt.Errorf("%w: evolution min_size %d exceeds max_size %d", ErrInvalidConfig, ev.MinSize, ev.MaxSize)
	}
	if ev.InitialSize < ev.MinSize || ev.InitialSize > ev.MaxSize {
		return fmt.Errorf("%w: evolution initial_size %d outside [%d, %d]", ErrInvalidConfig, ev.InitialSize, ev.MinSize, ev.MaxSize)
	}
	if ev.TournamentSize < 1 {
		return fmt.Errorf("%w: tournament_size must be at least 1", ErrInvalidConfig)
	}
	if ev.MinMutationRate > ev.MaxMutationRate {
		return fmt.Errorf("%w: min_mutation_rate exceeds max_mutation_rate", ErrInvalidConfig)
	}

	traits := map[string]TraitRange{
		"health":           c.Traits.Health,
		"speed":            c.Traits.Speed,
		"damage":           c.Traits.Damage,
		"aggression":       c.Traits.Aggression,
		"combo_multiplier": c.Traits.ComboMultiplier,
		"lifesteal_rate":   c.Traits.LifestealRate,
		"accuracy":         c.Traits.Accuracy,
		"multishot_chance": c.Traits.MultishotChance,
	}
	for name, r := range traits {
		if r.Min > r.Max {
			return fmt.Errorf("%w: trait %s min %v exceeds max %v", ErrInvalidConfig, name, r.Min, r.Max)
		}
	}

	f := c.Fitness
	if f.MinWeight < 0 || f.MinWeight > f.MaxWeight {
		return fmt.Errorf("%w: fitness weight bounds [%v, %v] are inconsistent", ErrInvalidConfig, f.MinWeight, f.MaxWeight)
	}
	if c.Battle.TickMillis <= 0 {
		return fmt.Errorf("%w: battle tick_millis must be positive", ErrInvalidConfig)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
