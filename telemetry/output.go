package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/botwar/config"
	"github.com/pthm-cable/botwar/genetics"
)

// AgentRecord is one row of agents.csv: an agent's exported battle metrics.
type AgentRecord struct {
	BattleID        string  `csv:"battle_id"`
	AgentID         uint32  `csv:"agent_id"`
	GenomeID        uint64  `csv:"genome_id"`
	Team            string  `csv:"team"`
	Archetype       string  `csv:"archetype"`
	Generation      int     `csv:"generation"`
	Health          float64 `csv:"health"`
	Damage          float64 `csv:"damage"`
	Speed           float64 `csv:"speed"`
	Aggression      float64 `csv:"aggression"`
	Kills           int     `csv:"kills"`
	DamageToEnemies float64 `csv:"damage_to_enemies"`
	DamageToBase    float64 `csv:"damage_to_base"`
	DamageTaken     float64 `csv:"damage_taken"`
	TimeAlive       float64 `csv:"time_alive"`
	ShotsFired      int     `csv:"shots_fired"`
	ProjectileHits  int     `csv:"projectile_hits"`
	Survived        bool    `csv:"survived"`
	Objective       float64 `csv:"objective"`
	Fitness         float64 `csv:"fitness"`
}

// SquadRecord is one row of squads.csv.
type SquadRecord struct {
	BattleID       string  `csv:"battle_id"`
	Timestamp      float64 `csv:"timestamp"`
	SquadID        string  `csv:"squad_id"`
	Task           string  `csv:"task_type"`
	Members        int     `csv:"robots_count"`
	TaskCompletion float64 `csv:"task_completion"`
	Losses         float64 `csv:"squad_losses"`
	DamageDealt    float64 `csv:"damage_dealt"`
	Reformations   int     `csv:"reformations"`
}

// csvFile is an output CSV that writes its header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func writeRecords[T any](cf *csvFile, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if !cf.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, cf.f); err != nil {
			return err
		}
		cf.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, cf.f)
}

// OutputManager handles structured campaign output with CSV logging.
// A nil manager is valid and discards everything.
type OutputManager struct {
	dir         string
	agents      csvFile
	generations csvFile
	battles     csvFile
	perf        csvFile
	bookmarks   csvFile
	squads      csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		cf   *csvFile
	}{
		{"agents.csv", &om.agents},
		{"generations.csv", &om.generations},
		{"battles.csv", &om.battles},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"squads.csv", &om.squads},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		file.cf.f = f
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteAgents appends agent records to agents.csv.
func (om *OutputManager) WriteAgents(records []AgentRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(&om.agents, records); err != nil {
		return fmt.Errorf("writing agents: %w", err)
	}
	return nil
}

// WriteGeneration appends a generation record to generations.csv.
func (om *OutputManager) WriteGeneration(rec GenerationRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(&om.generations, []GenerationRecord{rec}); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// WriteBattle appends a battle record to battles.csv.
func (om *OutputManager) WriteBattle(rec BattleRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(&om.battles, []BattleRecord{rec}); err != nil {
		return fmt.Errorf("writing battle: %w", err)
	}
	return nil
}

// WritePerf appends a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, battleID string, tick int) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(&om.perf, []PerfStatsCSV{stats.ToCSV(battleID, tick)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark appends a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(&om.bookmarks, []Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteSquads appends squad records to squads.csv.
func (om *OutputManager) WriteSquads(records []SquadRecord) error {
	if om == nil {
		return nil
	}
	if err := writeRecords(&om.squads, records); err != nil {
		return fmt.Errorf("writing squads: %w", err)
	}
	return nil
}

// WriteHallOfFame saves the hall of fame as JSON.
func (om *OutputManager) WriteHallOfFame(hof *genetics.HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}

	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"), data, 0644); err != nil {
		return fmt.Errorf("writing hall_of_fame.json: %w", err)
	}
	return nil
}

// WriteSnapshot saves a battle's end state under snapshots/.
func (om *OutputManager) WriteSnapshot(s *Snapshot) (string, error) {
	if om == nil {
		return "", nil
	}
	return SaveSnapshot(s, filepath.Join(om.dir, "snapshots"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, cf := range []*csvFile{&om.agents, &om.generations, &om.battles, &om.perf, &om.bookmarks, &om.squads} {
		if cf.f == nil {
			continue
		}
		if err := cf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
