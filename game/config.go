package game

// Options holds campaign initialization parameters that do not belong in the
// YAML configuration.
type Options struct {
	Seed           int64  // Master seed; every battle seed is drawn from it
	OutputDir      string // CSV, snapshot and hall of fame output (empty = disabled)
	HallOfFamePath string // hall_of_fame.json to seed the populations from
	LogBattles     bool   // Log per-battle and per-generation summaries
}

// DefaultOptions returns the default campaign options.
func DefaultOptions() Options {
	return Options{
		Seed:       42,
		LogBattles: true,
	}
}

// BattleOptions identifies one battle of a campaign.
type BattleOptions struct {
	ID         string
	Index      int
	Seed       int64
	Generation int // Used to name squads
}
