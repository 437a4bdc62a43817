package compaction

import (
	"testing"

	"github.com/hummockdb/compactsel/internal/lsm"
)

func TestPickSpaceReclaimDrainsDeepestDeadFilesFirst(t *testing.T) {
	cfg := &lsm.CompactionConfig{MaxLevel: 2, MaxSpaceReclaimBytes: 1 << 30}

	dead1 := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	dead1.TableIDs = []uint32{7}
	alive1 := lsm.NewSstFileFixture(1, 1, lsm.FixtureKey(10), lsm.FixtureKey(20), 100)
	alive1.TableIDs = []uint32{1}
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{dead1, alive1})

	dead2 := lsm.NewSstFileFixture(2, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	dead2.TableIDs = []uint32{8}
	l2 := lsm.NewLevel(2, lsm.Nonoverlapping, []*lsm.SstFile{dead2})

	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1, l2})
	handlers := NewLevelHandlers(2)

	live := map[uint32]struct{}{1: {}}
	p := &Picker{Kind: KindSpaceReclaim, Config: cfg, LiveTableIDs: live}
	input := p.pickSpaceReclaim(levels, handlers, nil)
	if input == nil {
		t.Fatal("expected pickSpaceReclaim to produce an input")
	}
	if input.TargetLevel != 2 {
		t.Errorf("TargetLevel = %d, want 2 (deepest level with dead files checked first)", input.TargetLevel)
	}
	if len(input.InputLevels[0].Files) != 1 || input.InputLevels[0].Files[0] != dead2 {
		t.Errorf("expected only dead2 selected, got %+v", input.InputLevels[0].Files)
	}
}

func TestPickSpaceReclaimAbortsWhenNothingIsDead(t *testing.T) {
	cfg := &lsm.CompactionConfig{MaxLevel: 1, MaxSpaceReclaimBytes: 1 << 30}
	alive := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	alive.TableIDs = []uint32{1}
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{alive})
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1})
	handlers := NewLevelHandlers(1)

	stats := &LocalPickerStatistic{}
	p := &Picker{Kind: KindSpaceReclaim, Config: cfg, LiveTableIDs: map[uint32]struct{}{1: {}}}
	if input := p.pickSpaceReclaim(levels, handlers, stats); input != nil {
		t.Errorf("expected nil input when every file still has a live table, got %+v", input)
	}
	if stats.AbortReason != AbortNoOverlap {
		t.Errorf("AbortReason = %q, want %q", stats.AbortReason, AbortNoOverlap)
	}
}
