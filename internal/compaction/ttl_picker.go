package compaction

import (
	"time"

	"github.com/hummockdb/compactsel/internal/lsm"
)

// defaultNowUnix is the clock pickTTL falls back to when a Picker's
// TTLNowUnix field is left nil.
func defaultNowUnix() int64 {
	return time.Now().Unix()
}

// pickTTL mirrors pickSpaceReclaim but selects files whose TTL has expired
// (CreatedAtUnix older than TTLNowUnix()-TTLSeconds) instead of files whose
// table membership has been dropped.
//
// Reference: adapted from internal/compaction/fifo_picker.go's
// findExpiredFiles, re-keyed from a single flat file list to this
// selector's per-level, deepest-first accumulation.
func (p *Picker) pickTTL(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalPickerStatistic) *CompactionInput {
	if p.TTLSeconds <= 0 {
		if stats != nil {
			stats.AbortReason = AbortBelowThreshold
		}
		return nil
	}
	now := p.TTLNowUnix
	if now == nil {
		now = defaultNowUnix
	}
	cutoff := now() - p.TTLSeconds

	for levelIdx := p.Config.MaxLevel; levelIdx >= 0; levelIdx-- {
		files, handler := levelFiles(levels, handlers, levelIdx)
		if len(files) == 0 {
			continue
		}
		var expired []*lsm.SstFile
		var size uint64
		for _, f := range files {
			if handler.IsPendingCompact(f.ID) {
				continue
			}
			if stats != nil {
				stats.FilesExamined++
			}
			if f.CreatedAtUnix >= cutoff {
				continue
			}
			expired = append(expired, f)
			size += f.FileSize
			if stats != nil {
				stats.BytesConsidered += f.FileSize
			}
			if size >= p.Config.MaxSpaceReclaimBytes {
				break
			}
		}
		if len(expired) > 0 {
			return &CompactionInput{
				InputLevels: []*InputLevel{{LevelIdx: levelIdx, Files: expired}},
				TargetLevel: levelIdx,
			}
		}
	}
	if stats != nil {
		stats.AbortReason = AbortNoOverlap
	}
	return nil
}
