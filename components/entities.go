package components

// ObstacleType tags an obstacle for the presentation layer.
// Collision always uses the obstacle's own Radius.
type ObstacleType uint8

const (
	ObstacleTree ObstacleType = iota
	ObstacleRock
)

func (t ObstacleType) String() string {
	if t == ObstacleTree {
		return "tree"
	}
	return "rock"
}

// Obstacle is a static circular blocker.
type Obstacle struct {
	Pos    Position
	Radius float64
	Type   ObstacleType
}

// Projectile is the ECS component of a ranged shot.
// Direction is a unit vector fixed at creation.
type Projectile struct {
	Owner     uint32 // Agent ID of the shooter
	Team      Team
	Direction Position
	Target    Position // Aim point; the shot expires on reaching it
	Speed     float64
	Damage    float64
	Radius    float64
	Active    bool
}

// Metrics accumulates an agent's battle performance.
// Damage counters are raw (unclamped) amounts.
type Metrics struct {
	Kills           int
	DamageToEnemies float64
	DamageToBase    float64
	DamageTaken     float64
	TimeAlive       float64 // Seconds
	Healed          float64
	ShotsFired      int
	ProjectileHits  int
	Died            bool
	ObjectiveScore  float64 // Squad task completion in [0,1]
}

// AgentSnapshot is the draw-less state of one agent.
type AgentSnapshot struct {
	ID        uint32
	Team      Team
	Archetype Archetype
	Pos       Position
	Radius    float64
	Health    float64
	MaxHealth float64
	Alive     bool
	State     string
}

// BaseSnapshot is the draw-less state of one base.
type BaseSnapshot struct {
	Team      Team
	Pos       Position
	Radius    float64
	Health    float64
	MaxHealth float64
}

// ProjectileSnapshot is the draw-less state of one projectile.
type ProjectileSnapshot struct {
	Team Team
	Pos  Position
}

// Snapshot is the full renderable state of a battle at one tick.
type Snapshot struct {
	Tick        int
	Now         float64
	Agents      []AgentSnapshot
	Bases       []BaseSnapshot
	Projectiles []ProjectileSnapshot
	Obstacles   []Obstacle
}
