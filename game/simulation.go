package game

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/botwar/combat"
	"github.com/pthm-cable/botwar/components"
)

// updateTeam runs the decision state machine of every living agent of team.
// Agents in an invalid state are logged and skipped for the tick.
func (b *Battle) updateTeam(team components.Team) {
	enemy := team.Opponent()
	view := combat.View{
		Allies:    b.bases[team].Roster(),
		Enemies:   b.bases[enemy].Roster(),
		EnemyBase: b.bases[enemy],
	}

	for _, a := range view.Allies {
		if !a.Alive() {
			continue
		}
		if err := a.Update(b.ctx, view); err != nil {
			if errors.Is(err, combat.ErrNoGenome) {
				b.skipped++
				slog.Debug("agent update skipped", "agent", a, "error", err, "tick", b.tick)
				continue
			}
			slog.Error("agent update failed", "agent", a, "error", err, "tick", b.tick)
		}
	}
}

// spawnReinforcements lets each standing base spawn, subject to its cooldown.
func (b *Battle) spawnReinforcements() {
	for _, team := range components.Teams {
		enemy := b.bases[team.Opponent()]
		if a := b.bases[team].Spawn(b.ctx, enemy.Pos); a != nil {
			b.onSpawn(a)
		}
	}
}

// checkEnd decides the battle once a base falls or the tick limit is reached.
// On timeout the base with the higher health ratio wins.
func (b *Battle) checkEnd() Outcome {
	blue, red := b.bases[components.TeamBlue], b.bases[components.TeamRed]
	switch {
	case !blue.Alive() && !red.Alive():
		return OutcomeDraw
	case !red.Alive():
		return OutcomeBlue
	case !blue.Alive():
		return OutcomeRed
	case b.tick < b.cfg.Battle.MaxTicks:
		return OutcomeUndecided
	}

	slog.Debug("battle timed out", "battle_id", b.opts.ID, "tick", b.tick)
	switch br, rr := blue.HealthRatio(), red.HealthRatio(); {
	case br > rr:
		return OutcomeBlue
	case rr > br:
		return OutcomeRed
	default:
		return OutcomeDraw
	}
}
