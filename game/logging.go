package game

import (
	"log/slog"

	"github.com/pthm-cable/botwar/telemetry"
)

// logBattle logs a finished battle.
func logBattle(res *BattleResult, perf telemetry.PerfStats) {
	slog.Info("battle finished",
		"battle", res.Record,
		"skipped_updates", res.Skipped,
		"perf", perf,
	)
}

// logGenerations logs each lineage's summary and any bookmarks it triggered.
func logGenerations(res *BattleResult) {
	for _, rec := range res.Generations {
		slog.Info("generation", "record", rec)
	}
	for _, bm := range res.Bookmarks {
		bm.LogBookmark()
	}
}

// logCampaign logs the campaign standings.
func (c *Campaign) logCampaign() {
	slog.Info("campaign finished",
		"battles", c.battles,
		"blue_wins", c.wins[OutcomeBlue],
		"red_wins", c.wins[OutcomeRed],
		"draws", c.wins[OutcomeDraw],
		"fitness_weights", c.fitness.Weights(),
	)
}
