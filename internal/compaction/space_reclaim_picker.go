package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// pickSpaceReclaim finds files whose table membership has been entirely
// dropped (no TableID is present in LiveTableIDs) and accumulates them,
// deepest level first, until the accumulated size reaches
// max_space_reclaim_bytes or the level is exhausted. The output level
// equals the select level: this is a rewrite-in-place that drops dead
// rows, not a level-to-level drain.
//
// Reference: adapted from internal/compaction/fifo_picker.go's
// getAllFilesSortedByAge/pickSizeCompaction greedy-accumulation shape,
// re-keyed from file age to table liveness.
func (p *Picker) pickSpaceReclaim(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalPickerStatistic) *CompactionInput {
	for levelIdx := p.Config.MaxLevel; levelIdx >= 0; levelIdx-- {
		files, handler := levelFiles(levels, handlers, levelIdx)
		if len(files) == 0 {
			continue
		}
		var dead []*lsm.SstFile
		var size uint64
		for _, f := range files {
			if handler.IsPendingCompact(f.ID) {
				continue
			}
			if stats != nil {
				stats.FilesExamined++
			}
			if f.HasLiveTable(p.LiveTableIDs) {
				continue
			}
			dead = append(dead, f)
			size += f.FileSize
			if stats != nil {
				stats.BytesConsidered += f.FileSize
			}
			if size >= p.Config.MaxSpaceReclaimBytes {
				break
			}
		}
		if len(dead) > 0 {
			return &CompactionInput{
				InputLevels: []*InputLevel{{LevelIdx: levelIdx, Files: dead}},
				TargetLevel: levelIdx,
			}
		}
	}
	if stats != nil {
		stats.AbortReason = AbortNoOverlap
	}
	return nil
}

// levelFiles returns the files and handler for a level index, treating L0
// as the flattened union of its sub-levels.
func levelFiles(levels *lsm.Levels, handlers []*LevelHandler, levelIdx int) ([]*lsm.SstFile, *LevelHandler) {
	if levelIdx == 0 {
		var files []*lsm.SstFile
		for _, sl := range levels.L0.SubLevels {
			files = append(files, sl.Files...)
		}
		return files, handlers[0]
	}
	return levels.Files(levelIdx), handlers[levelIdx]
}
