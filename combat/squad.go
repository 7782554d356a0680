package combat

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/botwar/components"
	"github.com/pthm-cable/botwar/config"
)

// Task is the objective a squad works toward.
type Task uint8

const (
	TaskAttack Task = iota
	TaskDefense
	TaskBase
)

func (t Task) String() string {
	switch t {
	case TaskAttack:
		return "attack"
	case TaskDefense:
		return "defense"
	default:
		return "base"
	}
}

// TaskFor returns the squad task an archetype joins.
func TaskFor(arch components.Archetype) Task {
	if arch == components.ArchetypeTank {
		return TaskDefense
	}
	return TaskAttack
}

// SquadMetrics measures a squad since its last formation.
type SquadMetrics struct {
	TaskCompletion float64 // [0,1]
	Losses         float64 // Fraction of members lost
	DamageDealt    float64 // Damage to the enemy base
	Timestamp      float64 // Battle milliseconds
}

// Squad is a group of same-team agents sharing a task.
type Squad struct {
	ID           string
	Team         components.Team
	Task         Task
	Members      []*Agent
	Metrics      SquadMetrics
	Reformations int

	joined int
}

// Add enrolls an agent in the squad.
func (s *Squad) Add(a *Agent) {
	s.Members = append(s.Members, a)
	s.joined++
	a.squad = s
}

// AliveCount returns the number of living members.
func (s *Squad) AliveCount() int {
	n := 0
	for _, a := range s.Members {
		if a.Alive() {
			n++
		}
	}
	return n
}

func (s *Squad) updateMetrics(now, damageGoal float64) {
	if s.joined == 0 {
		return
	}
	alive := s.AliveCount()
	s.Metrics.Losses = 1 - float64(alive)/float64(s.joined)

	var dealt float64
	for _, a := range s.Members {
		dealt += a.Metrics.DamageToBase
	}
	s.Metrics.DamageDealt = dealt

	switch s.Task {
	case TaskAttack:
		if damageGoal > 0 {
			s.Metrics.TaskCompletion = math.Min(1, dealt/damageGoal)
		}
	case TaskDefense:
		s.Metrics.TaskCompletion = 1 - s.Metrics.Losses
	default:
		s.Metrics.TaskCompletion = float64(alive) / float64(s.joined)
	}
	s.Metrics.Timestamp = now

	for _, a := range s.Members {
		a.Metrics.ObjectiveScore = s.Metrics.TaskCompletion
	}
}

// reform drops dead members and makes the survivors the new baseline.
func (s *Squad) reform() {
	alive := s.Members[:0]
	for _, a := range s.Members {
		if a.Alive() {
			alive = append(alive, a)
		} else {
			a.squad = nil
		}
	}
	clear(s.Members[len(alive):])
	s.Members = alive
	s.joined = len(alive)
	s.Metrics.Losses = 0
	s.Reformations++
}

type squadKey struct {
	team components.Team
	task Task
}

// SquadManager assigns agents to squads and periodically reforms squads
// whose situation has changed.
type SquadManager struct {
	cfg        config.SquadsConfig
	generation int
	squads     []*Squad
	byKey      map[squadKey]*Squad
	lastCheck  float64
}

// NewSquadManager creates an empty manager for one battle. generation is
// only used to name squads.
func NewSquadManager(cfg config.SquadsConfig, generation int) *SquadManager {
	return &SquadManager{
		cfg:        cfg,
		generation: generation,
		byKey:      make(map[squadKey]*Squad),
	}
}

// Assign enrolls an agent in its team's squad for the agent's task.
func (m *SquadManager) Assign(a *Agent) *Squad {
	key := squadKey{team: a.Team, task: TaskFor(a.Profile.Archetype)}
	s, ok := m.byKey[key]
	if !ok {
		s = &Squad{
			ID:   fmt.Sprintf("%s_gen%d_%s%d", key.team, m.generation, key.task, 1),
			Team: key.team,
			Task: key.task,
		}
		m.byKey[key] = s
		m.squads = append(m.squads, s)
	}
	s.Add(a)
	return s
}

// Squads returns every squad in creation order.
func (m *SquadManager) Squads() []*Squad { return m.squads }

// Update refreshes squad metrics and, every check interval, reforms squads
// whose base is critical, whose force ratio is unfavorable or whose losses
// are too high. Returns the number of squads reformed.
func (m *SquadManager) Update(now float64, bases [2]*Base, knowledge *Knowledge) int {
	for _, s := range m.squads {
		s.updateMetrics(now, m.cfg.AttackDamageGoal)
	}
	if now-m.lastCheck < m.cfg.CheckInterval {
		return 0
	}
	m.lastCheck = now

	reformed := 0
	for _, s := range m.squads {
		if m.needsReformation(s, bases[s.Team], knowledge) {
			s.reform()
			reformed++
			slog.Debug("squad reformed", "squad", s.ID, "members", len(s.Members), "battle_ms", now)
		}
	}
	return reformed
}

func (m *SquadManager) needsReformation(s *Squad, base *Base, knowledge *Knowledge) bool {
	if base != nil && base.HealthRatio() <= m.cfg.CriticalBaseHealth {
		return true
	}
	if base != nil && knowledge != nil {
		ratio := float64(base.AliveCount()) / float64(max(knowledge.EnemyCount(s.Team), 1))
		if ratio < m.cfg.MinForceRatio || ratio > m.cfg.MaxForceRatio {
			return true
		}
	}
	return s.Metrics.Losses >= m.cfg.MaxLosses
}
