package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// SelectContext is transient, owned by one tick: the computed base level,
// the per-level capacity targets, and (once the scorer has run) the scored
// candidate list.
type SelectContext struct {
	BaseLevel    int
	LevelMaxBytes []uint64

	// ScoreLevels holds (score, selectLevel, targetLevel) triples, sorted
	// descending by score once the scorer has populated them. Left empty
	// by CalculateLevelBaseSize.
	ScoreLevels []ScoredCandidate
}

// ScoredCandidate is one (score, select_level, target_level) entry the
// priority scorer emits; see §4.2.
type ScoredCandidate struct {
	Score       uint64
	SelectLevel int
	TargetLevel int
}

// dynamicLevelCore holds the config shared by every selector built on top
// of the dynamic-level sizing algorithm — the teacher's picker structs hold
// their tunables directly; here every selector variant shares one core so
// TryUpdate only needs to swap a single pointer.
type dynamicLevelCore struct {
	config *lsm.CompactionConfig
}

func newDynamicLevelCore(config *lsm.CompactionConfig) *dynamicLevelCore {
	return &dynamicLevelCore{config: config}
}

// CalculateLevelBaseSize computes the target size of each non-zero level
// and the base level, the highest-numbered non-empty level below which
// newly compacted data is placed.
//
// Reference: RocksDB v7.2.2 db/version_set.cc:3706
// (VersionStorageInfo::CalculateBaseBytes), as carried into
// original_source/src/meta/src/hummock/compaction/level_selector.rs
// (DynamicLevelSelectorCore::calculate_level_base_size) and cross-checked
// against _examples/miretskiy-rollingstone/simulator/lsm.go's
// calculateDynamicBaseLevel/calculateLevelTargets.
func (c *dynamicLevelCore) CalculateLevelBaseSize(levels *lsm.Levels) *SelectContext {
	cfg := c.config
	ctx := &SelectContext{}

	firstNonEmptyLevel := 0
	var maxLevelSize uint64
	for _, l := range levels.Levels {
		if l.TotalFileSize > 0 && firstNonEmptyLevel == 0 {
			firstNonEmptyLevel = l.LevelIdx
		}
		if l.TotalFileSize > maxLevelSize {
			maxLevelSize = l.TotalFileSize
		}
	}

	ctx.LevelMaxBytes = make([]uint64, cfg.MaxLevel+1)
	for i := range ctx.LevelMaxBytes {
		ctx.LevelMaxBytes[i] = ^uint64(0)
	}

	if maxLevelSize == 0 {
		ctx.BaseLevel = cfg.MaxLevel
		return ctx
	}

	baseBytesMax := cfg.MaxBytesForLevelBase
	baseBytesMin := baseBytesMax / cfg.MaxBytesForLevelMultiplier

	curLevelSize := maxLevelSize
	for i := firstNonEmptyLevel; i < cfg.MaxLevel; i++ {
		curLevelSize /= cfg.MaxBytesForLevelMultiplier
	}

	var baseLevelSize uint64
	if curLevelSize <= baseBytesMin {
		// Target size of the first non-empty level would be smaller than
		// base_bytes_min; clamp it there instead.
		ctx.BaseLevel = firstNonEmptyLevel
		baseLevelSize = baseBytesMin + 1
	} else {
		ctx.BaseLevel = firstNonEmptyLevel
		for ctx.BaseLevel > 1 && curLevelSize > baseBytesMax {
			ctx.BaseLevel--
			curLevelSize /= cfg.MaxBytesForLevelMultiplier
		}
		baseLevelSize = min64(baseBytesMax, curLevelSize)
	}

	levelSize := baseLevelSize
	for i := ctx.BaseLevel; i <= cfg.MaxLevel; i++ {
		// Never size a level below base_bytes_max: an hourglass shape,
		// where L1+ targets shrink below L0's, would starve L0 relative
		// to the levels below it under the scorer.
		ctx.LevelMaxBytes[i] = max64(levelSize, baseBytesMax)
		levelSize = uint64(float64(levelSize) * float64(cfg.MaxBytesForLevelMultiplier))
	}
	return ctx
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// subSaturating returns a-b, or 0 if that would underflow. Both the
// idle-file-count and the L0-to-base-level size computations must saturate
// rather than wrap: the source this selector is adapted from subtracts
// unconditionally, and an implementation that copies that literally
// produces a huge bogus score whenever bookkeeping lags behind reality.
func subSaturating(a, b uint64) (result uint64, saturated bool) {
	if b > a {
		return 0, true
	}
	return a - b, false
}
