package compaction

import (
	"testing"

	"github.com/hummockdb/compactsel/internal/lsm"
)

func TestPickManualRestrictsToKeyRange(t *testing.T) {
	cfg := &lsm.CompactionConfig{}
	inRange := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(5), lsm.FixtureKey(10), 100)
	outOfRange := lsm.NewSstFileFixture(1, 1, lsm.FixtureKey(50), lsm.FixtureKey(60), 100)
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{inRange, outOfRange})
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1})
	handlers := NewLevelHandlers(1)

	opt := &lsm.ManualCompactionOption{Level: 1, KeyRangeBegin: lsm.FixtureKey(0), KeyRangeEnd: lsm.FixtureKey(20)}
	p := &Picker{Kind: KindManual, SelectLevel: 1, TargetLevel: 1, Config: cfg, ManualOption: opt}
	input := p.pickManual(levels, handlers, nil)
	if input == nil {
		t.Fatal("expected pickManual to produce an input")
	}
	if len(input.InputLevels[0].Files) != 1 || input.InputLevels[0].Files[0] != inRange {
		t.Errorf("expected only the in-range file selected, got %+v", input.InputLevels[0].Files)
	}
}

func TestPickManualRestrictsToExplicitFileIDs(t *testing.T) {
	cfg := &lsm.CompactionConfig{}
	wanted := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	other := lsm.NewSstFileFixture(1, 1, lsm.FixtureKey(10), lsm.FixtureKey(20), 100)
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{wanted, other})
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1})
	handlers := NewLevelHandlers(1)

	opt := &lsm.ManualCompactionOption{Level: 1, FileIDs: map[lsm.FileID]struct{}{wanted.ID: {}}}
	p := &Picker{Kind: KindManual, SelectLevel: 1, TargetLevel: 1, Config: cfg, ManualOption: opt}
	input := p.pickManual(levels, handlers, nil)
	if input == nil || len(input.InputLevels[0].Files) != 1 || input.InputLevels[0].Files[0] != wanted {
		t.Fatalf("expected exactly the requested file id selected, got %+v", input)
	}
}

func TestPickManualAbortsWhenCandidateAlreadyReserved(t *testing.T) {
	cfg := &lsm.CompactionConfig{}
	f := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{f})
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1})
	handlers := NewLevelHandlers(1)
	handlers[1].AddTask(3, []*lsm.SstFile{f}, 0)

	stats := &LocalPickerStatistic{}
	opt := &lsm.ManualCompactionOption{Level: 1}
	p := &Picker{Kind: KindManual, SelectLevel: 1, TargetLevel: 1, Config: cfg, ManualOption: opt}
	if input := p.pickManual(levels, handlers, stats); input != nil {
		t.Errorf("expected nil input when the only candidate is already reserved, got %+v", input)
	}
	if stats.AbortReason != AbortReservationRace {
		t.Errorf("AbortReason = %q, want %q", stats.AbortReason, AbortReservationRace)
	}
}
