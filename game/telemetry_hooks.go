package game

import (
	"log/slog"

	"github.com/pthm-cable/botwar/combat"
	"github.com/pthm-cable/botwar/genetics"
	"github.com/pthm-cable/botwar/telemetry"
)

// agentRecord exports one agent's battle metrics with its fitness.
func agentRecord(battleID string, a *combat.Agent, fitness float64) telemetry.AgentRecord {
	rec := telemetry.AgentRecord{
		BattleID:        battleID,
		AgentID:         a.ID,
		Team:            a.Team.String(),
		Archetype:       a.Profile.Archetype.String(),
		Health:          a.MaxHealth,
		Damage:          a.Damage,
		Speed:           a.Speed,
		Aggression:      a.Aggression,
		Kills:           a.Metrics.Kills,
		DamageToEnemies: a.Metrics.DamageToEnemies,
		DamageToBase:    a.Metrics.DamageToBase,
		DamageTaken:     a.Metrics.DamageTaken,
		TimeAlive:       a.Metrics.TimeAlive,
		ShotsFired:      a.Metrics.ShotsFired,
		ProjectileHits:  a.Metrics.ProjectileHits,
		Survived:        !a.Metrics.Died,
		Objective:       a.Metrics.ObjectiveScore,
		Fitness:         fitness,
	}
	if a.Genome != nil {
		rec.GenomeID = a.Genome.ID
		rec.Generation = a.Genome.Generation
	}
	return rec
}

// squadRecords exports the final metrics of every squad.
func squadRecords(battleID string, squads []*combat.Squad) []telemetry.SquadRecord {
	records := make([]telemetry.SquadRecord, len(squads))
	for i, s := range squads {
		records[i] = telemetry.SquadRecord{
			BattleID:       battleID,
			Timestamp:      s.Metrics.Timestamp,
			SquadID:        s.ID,
			Task:           s.Task.String(),
			Members:        len(s.Members),
			TaskCompletion: s.Metrics.TaskCompletion,
			Losses:         s.Metrics.Losses,
			DamageDealt:    s.Metrics.DamageDealt,
			Reformations:   s.Reformations,
		}
	}
	return records
}

// generationRecord summarizes a lineage's scored population before it is
// replaced by the next generation.
func generationRecord(battleID string, ctrl *genetics.Controller, table *genetics.TraitTable) telemetry.GenerationRecord {
	pop := ctrl.Population()
	mean, maxV, p10, p50, p90 := telemetry.ComputeFitnessStats(pop.Fitnesses())
	return telemetry.GenerationRecord{
		BattleID:     battleID,
		Team:         ctrl.Lineage.Team.String(),
		Archetype:    ctrl.Lineage.Archetype.String(),
		Generation:   pop.Generation,
		Size:         pop.Size(),
		AvgFitness:   mean,
		MaxFitness:   maxV,
		FitnessP10:   p10,
		FitnessP50:   p50,
		FitnessP90:   p90,
		MutationRate: ctrl.MutationRate(),
		Diversity:    pop.Diversity(table),
	}
}

// createSnapshot builds the JSON end state of the battle.
func (b *Battle) createSnapshot() *telemetry.Snapshot {
	return telemetry.NewSnapshot(b.opts.Seed, b.opts.ID, b.outcome.String(), b.bounds, b.Snapshot())
}

// flushTelemetry writes a finished battle's records to the output manager.
// Write failures are logged and do not stop the campaign.
func (c *Campaign) flushTelemetry(b *Battle, res *BattleResult) {
	if c.output == nil {
		return
	}

	if err := c.output.WriteBattle(res.Record); err != nil {
		slog.Error("failed to write battle", "error", err)
	}
	if err := c.output.WriteAgents(res.Agents); err != nil {
		slog.Error("failed to write agents", "error", err)
	}
	for _, rec := range res.Generations {
		if err := c.output.WriteGeneration(rec); err != nil {
			slog.Error("failed to write generation", "error", err)
		}
	}
	for _, bm := range res.Bookmarks {
		if err := c.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
	if err := c.output.WritePerf(b.Perf(), b.ID(), b.Tick()); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
	if err := c.output.WriteSquads(squadRecords(b.ID(), b.Squads())); err != nil {
		slog.Error("failed to write squads", "error", err)
	}

	path, err := c.output.WriteSnapshot(b.createSnapshot())
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Debug("snapshot saved", "path", path, "tick", b.Tick())
}
