package compaction

import (
	"testing"

	"github.com/hummockdb/compactsel/internal/lsm"
)

func buildL0(fileSizes ...uint64) *lsm.L0 {
	var subLevels []*lsm.Level
	for i, sz := range fileSizes {
		f := lsm.NewSstFileFixture(0, i, lsm.FixtureKey(0), lsm.FixtureKey(10), sz)
		subLevels = append(subLevels, lsm.NewL0SubLevel(uint64(i), lsm.Overlapping, []*lsm.SstFile{f}))
	}
	return lsm.NewL0(subLevels)
}

func TestGetPriorityLevelsEmitsBothL0Candidates(t *testing.T) {
	cfg := &lsm.CompactionConfig{
		MaxLevel:                    2,
		MaxBytesForLevelBase:        1000,
		MaxBytesForLevelMultiplier:  10,
		Level0TierCompactFileNumber: 4,
	}
	core := newDynamicLevelCore(cfg)
	levels := lsm.NewLevels(buildL0(100, 100), []*lsm.Level{
		flatLevelOfSize(1, 0), flatLevelOfSize(2, 0),
	})
	handlers := NewLevelHandlers(cfg.MaxLevel)

	ctx := core.GetPriorityLevels(levels, handlers, nil)
	if ctx.BaseLevel != cfg.MaxLevel {
		t.Fatalf("BaseLevel = %d, want %d (empty flat levels)", ctx.BaseLevel, cfg.MaxLevel)
	}
	if len(ctx.ScoreLevels) != 2 {
		t.Fatalf("ScoreLevels has %d entries, want 2 (both L0-shaped candidates)", len(ctx.ScoreLevels))
	}

	tierCandidate, levelCandidate := ctx.ScoreLevels[0], ctx.ScoreLevels[1]
	if tierCandidate.Score != 50 || tierCandidate.SelectLevel != 0 || tierCandidate.TargetLevel != 0 {
		t.Errorf("tier candidate = %+v, want {Score:50 SelectLevel:0 TargetLevel:0}", tierCandidate)
	}
	if levelCandidate.Score != 20 || levelCandidate.SelectLevel != 0 || levelCandidate.TargetLevel != cfg.MaxLevel {
		t.Errorf("level candidate = %+v, want {Score:20 SelectLevel:0 TargetLevel:%d}", levelCandidate, cfg.MaxLevel)
	}
	if tierCandidate.Score < levelCandidate.Score {
		t.Error("expected candidates sorted descending by score")
	}
}

func TestGetPriorityLevelsSkipsBottommostLevel(t *testing.T) {
	cfg := &lsm.CompactionConfig{
		MaxLevel:                    2,
		MaxBytesForLevelBase:        100,
		MaxBytesForLevelMultiplier:  10,
		Level0TierCompactFileNumber: 4,
	}
	core := newDynamicLevelCore(cfg)
	// Only the bottom level has data, so base_level resolves to it and no
	// select-level candidate should ever target past MaxLevel.
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{
		flatLevelOfSize(1, 0), flatLevelOfSize(2, 5000),
	})
	handlers := NewLevelHandlers(cfg.MaxLevel)

	ctx := core.GetPriorityLevels(levels, handlers, nil)
	for _, c := range ctx.ScoreLevels {
		if c.SelectLevel == cfg.MaxLevel {
			t.Errorf("bottommost level %d should never appear as a select level, got candidate %+v", cfg.MaxLevel, c)
		}
	}
}

func TestGetPriorityLevelsRecordsSaturationAnomaly(t *testing.T) {
	cfg := &lsm.CompactionConfig{
		MaxLevel:                    1,
		MaxBytesForLevelBase:        1000,
		MaxBytesForLevelMultiplier:  10,
		Level0TierCompactFileNumber: 4,
	}
	core := newDynamicLevelCore(cfg)
	levels := lsm.NewLevels(buildL0(100), []*lsm.Level{flatLevelOfSize(1, 0)})
	handlers := NewLevelHandlers(cfg.MaxLevel)

	// Force a bookkeeping-lag scenario: more files reserved at L0 than
	// actually exist, which must saturate at zero rather than wrap.
	handlers[0].reserved[lsm.FileID(999)] = 1
	handlers[0].reserved[lsm.FileID(1000)] = 1

	stats := &LocalSelectorStatistic{}
	core.GetPriorityLevels(levels, handlers, stats)
	if len(stats.Anomalies) == 0 {
		t.Error("expected at least one anomaly recorded when pending file count exceeds actual file count")
	}
}
