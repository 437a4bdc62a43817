package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// ScoreBase is the score value that means "exactly at capacity"; any score
// greater than ScoreBase triggers a compaction.
const ScoreBase uint64 = 100

// GetPriorityLevels runs the sizing engine and then appends every scored
// candidate the priority scorer can find, sorted descending by score with
// ties broken by insertion order.
//
// Reference: original_source/src/meta/src/hummock/compaction/level_selector.rs
// (DynamicLevelSelectorCore::get_priority_levels), cross-checked against
// _examples/miretskiy-rollingstone/simulator/lsm.go's calculateCompactionScore.
func (c *dynamicLevelCore) GetPriorityLevels(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalSelectorStatistic) *SelectContext {
	ctx := c.CalculateLevelBaseSize(levels)
	cfg := c.config

	l0FileCount := uint64(levels.L0.NumFiles())
	pendingL0Files := uint64(handlers[0].GetPendingFileCount())
	idleFileCount, saturated := subSaturating(l0FileCount, pendingL0Files)
	if saturated && stats != nil {
		stats.RecordAnomaly("idle_file_count underflowed; saturated at zero")
	}

	subLevelCount := uint64(len(levels.L0.SubLevels))
	maxL0Score := ScoreBase * 2
	if cap := subLevelCount * ScoreBase / cfg.Level0TierCompactFileNumber; cap > maxL0Score {
		maxL0Score = cap
	}

	pendingOutputToBase := handlers[ctx.BaseLevel].GetPendingOutputFileSize(ctx.BaseLevel)
	totalL0Size, saturated := subSaturating(levels.L0.TotalFileSize, pendingOutputToBase)
	if saturated && stats != nil {
		stats.RecordAnomaly("effective L0 size underflowed; saturated at zero")
	}

	if idleFileCount > 0 {
		// Intra-L0 tiered score: always emitted alongside the L0-to-base
		// score below whenever there are idle files, even if one would
		// score higher than the other. The sort order is the only
		// arbiter between the two; this is deliberate, not an oversight.
		l0Score := idleFileCount * ScoreBase / cfg.Level0TierCompactFileNumber
		if l0Score > maxL0Score {
			l0Score = maxL0Score
		}
		ctx.ScoreLevels = append(ctx.ScoreLevels, ScoredCandidate{Score: l0Score, SelectLevel: 0, TargetLevel: 0})

		score := totalL0Size * ScoreBase / cfg.MaxBytesForLevelBase
		ctx.ScoreLevels = append(ctx.ScoreLevels, ScoredCandidate{Score: score, SelectLevel: 0, TargetLevel: ctx.BaseLevel})
	}

	// The bottommost level can never be a select level.
	for _, level := range levels.Levels {
		idx := level.LevelIdx
		if idx < ctx.BaseLevel || idx >= cfg.MaxLevel {
			continue
		}
		upperLevel := idx - 1
		if idx == ctx.BaseLevel {
			upperLevel = 0
		}
		incoming := handlers[upperLevel].GetPendingOutputFileSize(idx)
		outgoing := handlers[idx].GetPendingOutputFileSize(idx + 1)

		effective := level.TotalFileSize + incoming
		effective, saturated = subSaturating(effective, outgoing)
		if saturated && stats != nil {
			stats.RecordAnomaly("level size underflowed; saturated at zero")
		}
		if effective == 0 {
			continue
		}
		score := effective * ScoreBase / ctx.LevelMaxBytes[idx]
		ctx.ScoreLevels = append(ctx.ScoreLevels, ScoredCandidate{Score: score, SelectLevel: idx, TargetLevel: idx + 1})
	}

	stableSortDescending(ctx.ScoreLevels)
	return ctx
}

// stableSortDescending sorts candidates by score descending, preserving
// insertion order among equal scores. Written out explicitly (an
// insertion sort over the small candidate list, which never exceeds
// roughly 2+MaxLevel entries) rather than relying on sort.Slice's
// unspecified tie behavior, per the "explicit comparator" design note.
func stableSortDescending(candidates []ScoredCandidate) {
	for i := 1; i < len(candidates); i++ {
		j := i
		for j > 0 && candidates[j-1].Score < candidates[j].Score {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
			j--
		}
	}
}
