package compaction

import (
	"testing"

	"github.com/hummockdb/compactsel/internal/lsm"
)

func TestPickTierMergesUntilThreshold(t *testing.T) {
	cfg := &lsm.CompactionConfig{Level0TierCompactFileNumber: 3}
	l0 := buildL0(10, 10, 10)
	levels := lsm.NewLevels(l0, nil)
	handlers := NewLevelHandlers(0)

	p := &Picker{Kind: KindTier, Config: cfg}
	input := p.pickTier(levels, handlers, nil)
	if input == nil {
		t.Fatal("expected pickTier to produce an input once file_number threshold is reached")
	}
	if input.TargetLevel != 0 || len(input.InputLevels) != 1 || input.InputLevels[0].LevelIdx != 0 {
		t.Errorf("expected a single L0 input level, got %+v", input)
	}
	if len(input.InputLevels[0].Files) != 3 {
		t.Errorf("expected 3 files merged, got %d", len(input.InputLevels[0].Files))
	}
}

func TestPickTierAbortsBelowThreshold(t *testing.T) {
	cfg := &lsm.CompactionConfig{Level0TierCompactFileNumber: 10}
	l0 := buildL0(10, 10)
	levels := lsm.NewLevels(l0, nil)
	handlers := NewLevelHandlers(0)

	stats := &LocalPickerStatistic{}
	p := &Picker{Kind: KindTier, Config: cfg}
	if input := p.pickTier(levels, handlers, stats); input != nil {
		t.Errorf("expected nil input below threshold, got %+v", input)
	}
	if stats.AbortReason != AbortInsufficientFiles {
		t.Errorf("AbortReason = %q, want %q", stats.AbortReason, AbortInsufficientFiles)
	}
}

func TestPickTierStopsAtReservedSubLevel(t *testing.T) {
	cfg := &lsm.CompactionConfig{Level0TierCompactFileNumber: 3}
	l0 := buildL0(10, 10, 10)
	levels := lsm.NewLevels(l0, nil)
	handlers := NewLevelHandlers(0)

	// Reserve the first sub-level's only file under a different task.
	firstFile := l0.SubLevels[0].Files[0]
	handlers[0].AddTask(99, []*lsm.SstFile{firstFile}, 0)

	p := &Picker{Kind: KindTier, Config: cfg}
	if input := p.pickTier(levels, handlers, nil); input != nil {
		t.Errorf("expected pickTier to refuse to skip past a reserved sub-level, got %+v", input)
	}
}
