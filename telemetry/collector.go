package telemetry

import (
	"log/slog"

	"github.com/pthm-cable/botwar/components"
)

// teamCounters holds one team's event counts.
type teamCounters struct {
	spawns         int
	deaths         int
	kills          int
	shots          int
	projectileHits int
	baseHits       int
	baseDamage     float64
}

// Collector accumulates events during one battle and produces its BattleRecord.
type Collector struct {
	teams [2]teamCounters
}

// NewCollector creates an empty battle collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record counts one event against its team.
func (c *Collector) Record(e Event) {
	t := &c.teams[e.Team]
	switch e.Type {
	case EventSpawn:
		t.spawns++
	case EventDeath:
		t.deaths++
	case EventKill:
		t.kills++
	case EventShot:
		t.shots++
	case EventProjectileHit:
		t.projectileHits++
	case EventBaseHit:
		t.baseHits++
		t.baseDamage += e.Amount
	}
}

// BattleOutcome holds the end-of-battle facts the caller must provide.
type BattleOutcome struct {
	BattleID   string
	Index      int
	Seed       int64
	Ticks      int
	Now        float64 // Battle milliseconds
	Winner     string  // "blue", "red" or "draw"
	BaseHealth [2]float64
	Survivors  [2]int
	Obstacles  int
}

// BattleRecord is one row of battles.csv.
type BattleRecord struct {
	BattleID    string  `csv:"battle_id"`
	Index       int     `csv:"battle"`
	Seed        int64   `csv:"seed"`
	Ticks       int     `csv:"ticks"`
	DurationSec float64 `csv:"duration_sec"`
	Winner      string  `csv:"winner"`
	Obstacles   int     `csv:"obstacles"`

	BlueBaseHealth float64 `csv:"blue_base_health"`
	RedBaseHealth  float64 `csv:"red_base_health"`
	BlueSurvivors  int     `csv:"blue_survivors"`
	RedSurvivors   int     `csv:"red_survivors"`

	BlueSpawns int `csv:"blue_spawns"`
	RedSpawns  int `csv:"red_spawns"`
	BlueDeaths int `csv:"blue_deaths"`
	RedDeaths  int `csv:"red_deaths"`
	BlueKills  int `csv:"blue_kills"`
	RedKills   int `csv:"red_kills"`

	BlueShots   int     `csv:"blue_shots"`
	RedShots    int     `csv:"red_shots"`
	BlueHits    int     `csv:"blue_projectile_hits"`
	RedHits     int     `csv:"red_projectile_hits"`
	BlueHitRate float64 `csv:"blue_hit_rate"`
	RedHitRate  float64 `csv:"red_hit_rate"`

	BlueBaseHits   int     `csv:"blue_base_hits"`
	RedBaseHits    int     `csv:"red_base_hits"`
	BlueBaseDamage float64 `csv:"blue_base_damage"`
	RedBaseDamage  float64 `csv:"red_base_damage"`
}

func hitRate(hits, shots int) float64 {
	if shots == 0 {
		return 0
	}
	return float64(hits) / float64(shots)
}

// Flush produces the battle record and resets the counters.
func (c *Collector) Flush(out BattleOutcome) BattleRecord {
	blue, red := c.teams[components.TeamBlue], c.teams[components.TeamRed]
	rec := BattleRecord{
		BattleID:    out.BattleID,
		Index:       out.Index,
		Seed:        out.Seed,
		Ticks:       out.Ticks,
		DurationSec: out.Now / 1000,
		Winner:      out.Winner,
		Obstacles:   out.Obstacles,

		BlueBaseHealth: out.BaseHealth[components.TeamBlue],
		RedBaseHealth:  out.BaseHealth[components.TeamRed],
		BlueSurvivors:  out.Survivors[components.TeamBlue],
		RedSurvivors:   out.Survivors[components.TeamRed],

		BlueSpawns: blue.spawns,
		RedSpawns:  red.spawns,
		BlueDeaths: blue.deaths,
		RedDeaths:  red.deaths,
		BlueKills:  blue.kills,
		RedKills:   red.kills,

		BlueShots:   blue.shots,
		RedShots:    red.shots,
		BlueHits:    blue.projectileHits,
		RedHits:     red.projectileHits,
		BlueHitRate: hitRate(blue.projectileHits, blue.shots),
		RedHitRate:  hitRate(red.projectileHits, red.shots),

		BlueBaseHits:   blue.baseHits,
		RedBaseHits:    red.baseHits,
		BlueBaseDamage: blue.baseDamage,
		RedBaseDamage:  red.baseDamage,
	}
	c.teams = [2]teamCounters{}
	return rec
}

// LogValue implements slog.LogValuer for structured logging.
func (r BattleRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("battle_id", r.BattleID),
		slog.Int("battle", r.Index),
		slog.Int("ticks", r.Ticks),
		slog.String("winner", r.Winner),
		slog.Float64("blue_base_health", r.BlueBaseHealth),
		slog.Float64("red_base_health", r.RedBaseHealth),
		slog.Int("blue_kills", r.BlueKills),
		slog.Int("red_kills", r.RedKills),
		slog.Int("blue_deaths", r.BlueDeaths),
		slog.Int("red_deaths", r.RedDeaths),
		slog.Float64("blue_hit_rate", r.BlueHitRate),
		slog.Float64("red_hit_rate", r.RedHitRate),
	)
}
