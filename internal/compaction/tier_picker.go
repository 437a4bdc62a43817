package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// maxTierMergeWidth bounds how many sub-levels a single intra-L0 task may
// merge at once, keeping individual tasks cheap regardless of how deep the
// idle-file backlog has grown.
const maxTierMergeWidth = 32

// pickTier merges adjacent, unreserved overlapping sub-levels inside L0.
// Walks sub-levels oldest to newest, greedily accumulating a contiguous
// run; commits only once the accumulated file count reaches
// level0_tier_compact_file_number.
//
// Reference: adapted from internal/compaction/universal_picker.go's
// getSortedRuns/createCompactionFromRuns (size-tiered run accumulation)
// and this store's own pickL0Compaction (BeingCompacted filtering).
func (p *Picker) pickTier(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalPickerStatistic) *CompactionInput {
	subLevels := levels.L0.SubLevels
	var run []*lsm.SstFile
	fileCount := 0

	for _, sl := range subLevels {
		available := unreserved(sl.Files, handlers[0])
		if len(available) != len(sl.Files) {
			// A reserved file breaks the contiguous run: starting over
			// here would re-merge files from a different in-flight task.
			break
		}
		if fileCount+len(sl.Files) > maxTierMergeWidth {
			break
		}
		run = append(run, sl.Files...)
		fileCount += len(sl.Files)
		if stats != nil {
			stats.FilesExamined += len(sl.Files)
			stats.BytesConsidered += sl.TotalFileSize
		}
		if uint64(fileCount) >= p.Config.Level0TierCompactFileNumber {
			return &CompactionInput{
				InputLevels: []*InputLevel{{LevelIdx: 0, Files: run}},
				TargetLevel: 0,
			}
		}
	}

	if stats != nil {
		stats.AbortReason = AbortInsufficientFiles
	}
	return nil
}
