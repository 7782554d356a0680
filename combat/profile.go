// Package combat implements agents, bases and squads, and the per-tick
// decision state machine that drives every agent archetype.
package combat

import (
	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
)

// Profile is the capability table of one archetype.
type Profile struct {
	Archetype       components.Archetype
	Health          float64
	Speed           float64
	Damage          float64
	Radius          float64
	AttackRange     float64
	DetectionRange  float64
	OptimalRange    float64 // ranged
	RetreatRange    float64 // ranged
	ProtectionRange float64 // tank
	AttackCooldown  float64 // Milliseconds
	DamageReduction float64 // Incoming damage multiplier
	BaseDamageScale float64
	ProjectileSpeed float64 // ranged
	ProjectileSize  float64 // ranged
	EscortThreshold float64 // tank: ally health ratio that triggers escort
	MaxSpread       float64 // ranged: aim spread at zero accuracy, radians
}

// Ranged reports whether the archetype attacks with projectiles.
func (p Profile) Ranged() bool { return p.Archetype == components.ArchetypeRanged }

// NewProfile builds an archetype profile from configuration.
func NewProfile(arch components.Archetype, cfg config.ArchetypeConfig) Profile {
	p := Profile{
		Archetype:       arch,
		Health:          cfg.Health,
		Speed:           cfg.Speed,
		Damage:          cfg.Damage,
		Radius:          cfg.Radius,
		AttackRange:     cfg.AttackRange,
		DetectionRange:  cfg.DetectionRange,
		OptimalRange:    cfg.OptimalRange,
		RetreatRange:    cfg.RetreatRange,
		ProtectionRange: cfg.ProtectionRange,
		AttackCooldown:  cfg.AttackCooldown,
		DamageReduction: cfg.DamageReduction,
		BaseDamageScale: cfg.BaseDamageScale,
		ProjectileSpeed: cfg.ProjectileSpeed,
		ProjectileSize:  cfg.ProjectileSize,
		EscortThreshold: cfg.EscortThreshold,
		MaxSpread:       cfg.MaxSpread,
	}
	if p.DamageReduction <= 0 {
		p.DamageReduction = 1
	}
	if p.BaseDamageScale <= 0 {
		p.BaseDamageScale = 1
	}
	return p
}

// Profiles builds the profile of every archetype.
func Profiles(cfg *config.Config) [components.NumArchetypes]Profile {
	return [components.NumArchetypes]Profile{
		components.ArchetypeMelee:  NewProfile(components.ArchetypeMelee, cfg.Archetypes.Melee),
		components.ArchetypeRanged: NewProfile(components.ArchetypeRanged, cfg.Archetypes.Ranged),
		components.ArchetypeTank:   NewProfile(components.ArchetypeTank, cfg.Archetypes.Tank),
	}
}

// ProfileConfig returns the configuration section of an archetype.
func ProfileConfig(cfg *config.Config, arch components.Archetype) config.ArchetypeConfig {
	switch arch {
	case components.ArchetypeRanged:
		return cfg.Archetypes.Ranged
	case components.ArchetypeTank:
		return cfg.Archetypes.Tank
	default:
		return cfg.Archetypes.Melee
	}
}
