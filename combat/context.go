package combat

import (
	"math/rand"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/systems"
)

// State is an agent's current behavior.
type State uint8

const (
	StateIdle State = iota
	StateAdvance
	StateEngage
	StateRetreat
	StateEscort
	StateAttackBase
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvance:
		return "advance"
	case StateEngage:
		return "engage"
	case StateRetreat:
		return "retreat"
	case StateEscort:
		return "escort"
	case StateAttackBase:
		return "attack_base"
	default:
		return "unknown"
	}
}

// Context carries the battle-scoped collaborators of an agent update.
// Nothing in it outlives one battle.
type Context struct {
	Now         float64 // Battle clock in milliseconds
	Bounds      components.Bounds
	Pathfinder  *systems.Pathfinder
	Projectiles *systems.ProjectileSystem
	Knowledge   *Knowledge
	Rng         *rand.Rand

	nextID uint32
}

// NewID allocates a battle-unique agent ID, starting at 1.
func (c *Context) NewID() uint32 {
	c.nextID++
	return c.nextID
}

// View is what one agent sees of the battle when it updates.
type View struct {
	Allies    []*Agent
	Enemies   []*Agent
	EnemyBase *Base
}

// Knowledge is each team's shared record of last known enemy positions.
type Knowledge struct {
	enemies [2]map[uint32]components.Position
}

// NewKnowledge creates empty shared knowledge for both teams.
func NewKnowledge() *Knowledge {
	k := &Knowledge{}
	for i := range k.enemies {
		k.enemies[i] = make(map[uint32]components.Position)
	}
	return k
}

// Report records that team has seen enemy at its current position.
func (k *Knowledge) Report(team components.Team, enemy *Agent) {
	k.enemies[team][enemy.ID] = enemy.Pos
}

// Forget drops an enemy from team's knowledge, e.g. once it is dead.
func (k *Knowledge) Forget(team components.Team, id uint32) {
	delete(k.enemies[team], id)
}

// EnemyCount returns how many enemies team currently knows about.
func (k *Knowledge) EnemyCount(team components.Team) int {
	return len(k.enemies[team])
}

// LastKnown returns the last reported position of an enemy.
func (k *Knowledge) LastKnown(team components.Team, id uint32) (components.Position, bool) {
	p, ok := k.enemies[team][id]
	return p, ok
}
