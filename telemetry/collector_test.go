package telemetry

import (
	"testing"

	"github.com/pthm-cable/botwar/components"
)

func TestCollectorFlush(t *testing.T) {
	c := NewCollector()

	blue, red := components.TeamBlue, components.TeamRed
	events := []Event{
		NewSpawnEvent(0, 1, blue, components.ArchetypeRanged),
		NewSpawnEvent(0, 2, red, components.ArchetypeMelee),
		NewShotEvent(100, 1, blue),
		NewShotEvent(200, 1, blue),
		NewShotEvent(300, 1, blue),
		NewShotEvent(400, 1, blue),
		NewProjectileHitEvent(500, 1, blue, 15),
		NewKillEvent(500, 1, 2, blue),
		NewDeathEvent(500, 2, red, components.ArchetypeMelee),
		NewBaseHitEvent(900, 1, blue, 7.5),
		NewBaseHitEvent(1900, 1, blue, 7.5),
	}
	for _, e := range events {
		c.Record(e)
	}

	rec := c.Flush(BattleOutcome{BattleID: "b", Index: 2, Ticks: 60, Now: 1980, Winner: "blue"})

	if rec.BlueSpawns != 1 || rec.RedSpawns != 1 {
		t.Errorf("spawns = %d/%d, want 1/1", rec.BlueSpawns, rec.RedSpawns)
	}
	if rec.BlueShots != 4 || rec.BlueHits != 1 {
		t.Errorf("shots/hits = %d/%d, want 4/1", rec.BlueShots, rec.BlueHits)
	}
	if rec.BlueHitRate != 0.25 || rec.RedHitRate != 0 {
		t.Errorf("hit rates = %v/%v, want 0.25/0", rec.BlueHitRate, rec.RedHitRate)
	}
	if rec.BlueKills != 1 || rec.RedDeaths != 1 || rec.BlueDeaths != 0 {
		t.Errorf("kills/deaths = %d/%d/%d", rec.BlueKills, rec.RedDeaths, rec.BlueDeaths)
	}
	if rec.BlueBaseHits != 2 || rec.BlueBaseDamage != 15 {
		t.Errorf("base hits = %d dmg %v, want 2 and 15", rec.BlueBaseHits, rec.BlueBaseDamage)
	}
	if rec.DurationSec != 1.98 || rec.Winner != "blue" || rec.Index != 2 {
		t.Errorf("outcome fields = %+v", rec)
	}

	// Counters start over for the next battle
	next := c.Flush(BattleOutcome{BattleID: "c"})
	if next.BlueShots != 0 || next.BlueSpawns != 0 || next.BlueBaseDamage != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
