package compaction

import (
	"testing"

	"github.com/hummockdb/compactsel/internal/lsm"
)

func fixedClock(unix int64) func() int64 {
	return func() int64 { return unix }
}

func TestPickTTLSelectsOnlyExpiredFiles(t *testing.T) {
	cfg := &lsm.CompactionConfig{MaxLevel: 1, MaxSpaceReclaimBytes: 1 << 30}

	expired := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	expired.CreatedAtUnix = 1000
	fresh := lsm.NewSstFileFixture(1, 1, lsm.FixtureKey(10), lsm.FixtureKey(20), 100)
	fresh.CreatedAtUnix = 1900
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{expired, fresh})
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1})
	handlers := NewLevelHandlers(1)

	p := &Picker{Kind: KindTTL, Config: cfg, TTLSeconds: 500, TTLNowUnix: fixedClock(2000)}
	input := p.pickTTL(levels, handlers, nil)
	if input == nil {
		t.Fatal("expected pickTTL to produce an input")
	}
	if len(input.InputLevels[0].Files) != 1 || input.InputLevels[0].Files[0] != expired {
		t.Errorf("expected only the expired file selected, got %+v", input.InputLevels[0].Files)
	}
}

func TestPickTTLAbortsWhenTTLSecondsUnset(t *testing.T) {
	cfg := &lsm.CompactionConfig{MaxLevel: 1, MaxSpaceReclaimBytes: 1 << 30}
	f := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	f.CreatedAtUnix = 0
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{f})
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1})
	handlers := NewLevelHandlers(1)

	stats := &LocalPickerStatistic{}
	p := &Picker{Kind: KindTTL, Config: cfg, TTLNowUnix: fixedClock(2000)}
	if input := p.pickTTL(levels, handlers, stats); input != nil {
		t.Errorf("expected nil input with TTLSeconds unset, got %+v", input)
	}
	if stats.AbortReason != AbortBelowThreshold {
		t.Errorf("AbortReason = %q, want %q", stats.AbortReason, AbortBelowThreshold)
	}
}

func TestPickTTLFallsBackToWallClockWhenNowUnixNil(t *testing.T) {
	cfg := &lsm.CompactionConfig{MaxLevel: 1, MaxSpaceReclaimBytes: 1 << 30}
	f := lsm.NewSstFileFixture(1, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), 100)
	f.CreatedAtUnix = 0 // unix epoch: always expired against the real wall clock
	l1 := lsm.NewLevel(1, lsm.Nonoverlapping, []*lsm.SstFile{f})
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{l1})
	handlers := NewLevelHandlers(1)

	p := &Picker{Kind: KindTTL, Config: cfg, TTLSeconds: 1}
	input := p.pickTTL(levels, handlers, nil)
	if input == nil {
		t.Fatal("expected pickTTL to fall back to defaultNowUnix and still find the expired file")
	}
}
