package telemetry

import (
	"testing"

	"github.com/pthm-cable/botwar/config"
)

func newDetector(t *testing.T) *BookmarkDetector {
	t.Helper()
	return NewBookmarkDetector(config.Default().Telemetry.Bookmarks)
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_Breakthrough(t *testing.T) {
	bd := newDetector(t)

	for i := 0; i < 3; i++ {
		rec := GenerationRecord{Team: "blue", Archetype: "melee", Generation: i, Size: 10, AvgFitness: 0.2 + 0.05*float64(i), MaxFitness: 0.5, Diversity: 0.1}
		if b := bd.Check(rec); hasBookmark(b, BookmarkBreakthrough) {
			t.Fatalf("unexpected breakthrough at generation %d", i)
		}
	}

	rec := GenerationRecord{Team: "blue", Archetype: "melee", Generation: 3, Size: 10, AvgFitness: 0.4, MaxFitness: 0.8, Diversity: 0.1}
	bookmarks := bd.Check(rec)
	if !hasBookmark(bookmarks, BookmarkBreakthrough) {
		t.Error("expected breakthrough bookmark")
	}
	if bookmarks[0].Lineage != "blue/melee" || bookmarks[0].Generation != 3 {
		t.Errorf("bookmark = %+v", bookmarks[0])
	}

	// Other lineages keep their own best
	other := GenerationRecord{Team: "red", Archetype: "melee", Generation: 0, Size: 10, MaxFitness: 0.1, Diversity: 0.1}
	if b := bd.Check(other); hasBookmark(b, BookmarkBreakthrough) {
		t.Error("first record of a lineage cannot be a breakthrough")
	}
}

func TestBookmarkDetector_StagnationFiresOnce(t *testing.T) {
	cfg := config.Default().Telemetry.Bookmarks
	bd := NewBookmarkDetector(cfg)

	fired := 0
	for i := 0; i < cfg.StagnationRecords+4; i++ {
		rec := GenerationRecord{Team: "red", Archetype: "tank", Generation: i, Size: 10, AvgFitness: 0.3, MaxFitness: 0.4, Diversity: 0.1}
		if hasBookmark(bd.Check(rec), BookmarkStagnation) {
			fired++
			if i != cfg.StagnationRecords-1 {
				t.Errorf("stagnation fired at record %d, want %d", i, cfg.StagnationRecords-1)
			}
		}
	}
	if fired != 1 {
		t.Errorf("stagnation fired %d times, want 1", fired)
	}
}

func TestBookmarkDetector_DiversityCollapse(t *testing.T) {
	bd := newDetector(t)
	floor := config.Default().Telemetry.Bookmarks.DiversityFloor

	seq := []float64{floor * 4, floor / 2, floor / 3, floor * 2, floor / 2}
	var fired []int
	for i, d := range seq {
		rec := GenerationRecord{Team: "blue", Archetype: "ranged", Generation: i, Size: 8, AvgFitness: float64(i), MaxFitness: float64(i), Diversity: d}
		if hasBookmark(bd.Check(rec), BookmarkDiversityCollapse) {
			fired = append(fired, i)
		}
	}
	if len(fired) != 2 || fired[0] != 1 || fired[1] != 4 {
		t.Errorf("diversity collapse fired at %v, want [1 4]", fired)
	}
}
