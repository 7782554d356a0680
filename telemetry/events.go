// Package telemetry provides battle event counting, generation trend
// tracking, campaign bookmarks, snapshots and CSV output.
package telemetry

import "github.com/pthm-cable/botwar/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventDeath
	EventKill
	EventShot
	EventProjectileHit
	EventBaseHit
)

// Event represents a single battle event, attributed to Team.
type Event struct {
	Type      EventType
	Now       float64 // Battle milliseconds
	AgentID   uint32
	Team      components.Team
	Archetype components.Archetype

	// Optional fields depending on event type
	TargetID uint32  // kill events
	Amount   float64 // damage for hit events
}

// NewSpawnEvent creates a spawn event.
func NewSpawnEvent(now float64, agentID uint32, team components.Team, arch components.Archetype) Event {
	return Event{Type: EventSpawn, Now: now, AgentID: agentID, Team: team, Archetype: arch}
}

// NewDeathEvent creates a death event.
func NewDeathEvent(now float64, agentID uint32, team components.Team, arch components.Archetype) Event {
	return Event{Type: EventDeath, Now: now, AgentID: agentID, Team: team, Archetype: arch}
}

// NewKillEvent creates a kill event credited to the killer's team.
func NewKillEvent(now float64, killerID, victimID uint32, team components.Team) Event {
	return Event{Type: EventKill, Now: now, AgentID: killerID, Team: team, TargetID: victimID}
}

// NewShotEvent creates a projectile launch event.
func NewShotEvent(now float64, shooterID uint32, team components.Team) Event {
	return Event{Type: EventShot, Now: now, AgentID: shooterID, Team: team, Archetype: components.ArchetypeRanged}
}

// NewProjectileHitEvent creates a projectile hit event.
func NewProjectileHitEvent(now float64, shooterID uint32, team components.Team, damage float64) Event {
	return Event{Type: EventProjectileHit, Now: now, AgentID: shooterID, Team: team, Archetype: components.ArchetypeRanged, Amount: damage}
}

// NewBaseHitEvent creates an event for damage dealt to the enemy base.
func NewBaseHitEvent(now float64, agentID uint32, team components.Team, damage float64) Event {
	return Event{Type: EventBaseHit, Now: now, AgentID: agentID, Team: team, Amount: damage}
}
