package compaction

import (
	"testing"

	"github.com/hummockdb/compactsel/internal/lsm"
)

func flatLevelOfSize(idx int, size uint64) *lsm.Level {
	var files []*lsm.SstFile
	if size > 0 {
		files = []*lsm.SstFile{lsm.NewSstFileFixture(idx, 0, lsm.FixtureKey(0), lsm.FixtureKey(10), size)}
	}
	return lsm.NewLevel(idx, lsm.Nonoverlapping, files)
}

func TestCalculateLevelBaseSizeEmptyTree(t *testing.T) {
	cfg := &lsm.CompactionConfig{MaxLevel: 4, MaxBytesForLevelBase: 100, MaxBytesForLevelMultiplier: 10}
	core := newDynamicLevelCore(cfg)
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{
		flatLevelOfSize(1, 0), flatLevelOfSize(2, 0), flatLevelOfSize(3, 0), flatLevelOfSize(4, 0),
	})

	ctx := core.CalculateLevelBaseSize(levels)
	if ctx.BaseLevel != cfg.MaxLevel {
		t.Errorf("BaseLevel = %d, want %d on an empty tree", ctx.BaseLevel, cfg.MaxLevel)
	}
	for i, b := range ctx.LevelMaxBytes {
		if b != ^uint64(0) {
			t.Errorf("LevelMaxBytes[%d] = %d, want max uint64 on an empty tree", i, b)
		}
	}
}

func TestCalculateLevelBaseSizeBottomHeavy(t *testing.T) {
	// Only the bottom level carries data; base_bytes_max/min walk the base
	// level up from the bottom until the target level size fits under
	// base_bytes_max.
	cfg := &lsm.CompactionConfig{MaxLevel: 4, MaxBytesForLevelBase: 100, MaxBytesForLevelMultiplier: 10}
	core := newDynamicLevelCore(cfg)
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{
		flatLevelOfSize(1, 0), flatLevelOfSize(2, 0), flatLevelOfSize(3, 0), flatLevelOfSize(4, 10000),
	})

	ctx := core.CalculateLevelBaseSize(levels)
	if ctx.BaseLevel != 2 {
		t.Fatalf("BaseLevel = %d, want 2", ctx.BaseLevel)
	}
	want := map[int]uint64{2: 100, 3: 1000, 4: 10000}
	for idx, expect := range want {
		if ctx.LevelMaxBytes[idx] != expect {
			t.Errorf("LevelMaxBytes[%d] = %d, want %d", idx, ctx.LevelMaxBytes[idx], expect)
		}
	}
}

func TestCalculateLevelBaseSizeClampsToBaseBytesMin(t *testing.T) {
	// A small dataset whose target level size would fall under
	// base_bytes_min clamps base_level to the first non-empty level and
	// seeds its size at base_bytes_min+1 (101), which the base_bytes_max
	// floor then raises to 1000.
	cfg := &lsm.CompactionConfig{MaxLevel: 4, MaxBytesForLevelBase: 1000, MaxBytesForLevelMultiplier: 10}
	core := newDynamicLevelCore(cfg)
	levels := lsm.NewLevels(lsm.NewL0(nil), []*lsm.Level{
		flatLevelOfSize(1, 0), flatLevelOfSize(2, 5), flatLevelOfSize(3, 0), flatLevelOfSize(4, 0),
	})

	ctx := core.CalculateLevelBaseSize(levels)
	if ctx.BaseLevel != 2 {
		t.Fatalf("BaseLevel = %d, want 2", ctx.BaseLevel)
	}
	want := map[int]uint64{2: 1000, 3: 1010, 4: 10100}
	for idx, expect := range want {
		if ctx.LevelMaxBytes[idx] != expect {
			t.Errorf("LevelMaxBytes[%d] = %d, want %d", idx, ctx.LevelMaxBytes[idx], expect)
		}
	}
}

func TestSubSaturating(t *testing.T) {
	if r, sat := subSaturating(10, 3); r != 7 || sat {
		t.Errorf("subSaturating(10,3) = (%d,%v), want (7,false)", r, sat)
	}
	if r, sat := subSaturating(3, 10); r != 0 || !sat {
		t.Errorf("subSaturating(3,10) = (%d,%v), want (0,true)", r, sat)
	}
	if r, sat := subSaturating(5, 5); r != 0 || sat {
		t.Errorf("subSaturating(5,5) = (%d,%v), want (0,false)", r, sat)
	}
}
