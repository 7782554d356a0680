package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/botwar/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBreakthrough      BookmarkType = "breakthrough"
	BookmarkStagnation        BookmarkType = "stagnation"
	BookmarkDiversityCollapse BookmarkType = "diversity_collapse"
)

// Bookmark is one row of bookmarks.csv: a milestone in a lineage's evolution.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	BattleID    string       `csv:"battle_id"`
	Lineage     string       `csv:"lineage"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"lineage", b.Lineage,
		"generation", b.Generation,
		"description", b.Description,
	)
}

type lineageTrack struct {
	avg          []float64 // Rolling average fitness
	bestMax      float64
	stagnant     int
	lowDiversity bool
}

// BookmarkDetector detects campaign milestones from generation records.
type BookmarkDetector struct {
	cfg    config.BookmarksConfig
	tracks map[string]*lineageTrack
}

// NewBookmarkDetector creates a detector with the given thresholds.
func NewBookmarkDetector(cfg config.BookmarksConfig) *BookmarkDetector {
	if cfg.StagnationRecords < 2 {
		cfg.StagnationRecords = 2
	}
	if cfg.HistorySize < cfg.StagnationRecords {
		cfg.HistorySize = cfg.StagnationRecords
	}
	return &BookmarkDetector{cfg: cfg, tracks: make(map[string]*lineageTrack)}
}

// Check analyzes the latest record of a lineage and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(rec GenerationRecord) []Bookmark {
	key := rec.Lineage()
	tr, ok := bd.tracks[key]
	if !ok {
		tr = &lineageTrack{}
		bd.tracks[key] = tr
	}

	var bookmarks []Bookmark
	mk := func(t BookmarkType, desc string) {
		bookmarks = append(bookmarks, Bookmark{
			Type:        t,
			BattleID:    rec.BattleID,
			Lineage:     key,
			Generation:  rec.Generation,
			Description: desc,
		})
	}

	// Breakthrough: max fitness beats the previous best by the configured ratio
	if tr.bestMax > 0 && rec.MaxFitness > tr.bestMax*bd.cfg.BreakthroughRatio {
		mk(BookmarkBreakthrough, fmt.Sprintf("Max fitness %.3f is %.2fx previous best %.3f", rec.MaxFitness, rec.MaxFitness/tr.bestMax, tr.bestMax))
	}
	tr.bestMax = math.Max(tr.bestMax, rec.MaxFitness)

	tr.avg = append(tr.avg, rec.AvgFitness)
	if len(tr.avg) > bd.cfg.HistorySize {
		tr.avg = tr.avg[len(tr.avg)-bd.cfg.HistorySize:]
	}
	if bd.flat(tr.avg) {
		tr.stagnant++
	} else {
		tr.stagnant = 0
	}
	// Trigger exactly once per stagnant stretch
	if tr.stagnant == 1 {
		mk(BookmarkStagnation, fmt.Sprintf("Average fitness flat at %.3f for %d records", rec.AvgFitness, bd.cfg.StagnationRecords))
	}

	low := rec.Size > 1 && rec.Diversity < bd.cfg.DiversityFloor
	if low && !tr.lowDiversity {
		mk(BookmarkDiversityCollapse, fmt.Sprintf("Diversity %.4f fell below %.4f", rec.Diversity, bd.cfg.DiversityFloor))
	}
	tr.lowDiversity = low

	return bookmarks
}

// flat reports whether the last StagnationRecords values span no more than
// the stagnation epsilon.
func (bd *BookmarkDetector) flat(h []float64) bool {
	n := bd.cfg.StagnationRecords
	if len(h) < n {
		return false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range h[len(h)-n:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi-lo <= bd.cfg.StagnationEpsilon
}
