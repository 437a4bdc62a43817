package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// pickManual restricts the candidate set to ManualOption's key range and
// (optionally) explicit level/file list, producing an input at the target
// level the selector facade already resolved: base_level if the operator
// asked for level 0, the same level for a trivial bottom-level merge, or
// level+1 otherwise.
//
// Reference: distilled from original_source/level_selector.rs's
// ManualCompactionSelector::pick_compaction; this store carries no manual
// picker of its own (RocksDB manual compaction is driven by db.CompactRange
// directly rather than a picker object) so this is new code in the
// teacher's idiom, built on the same unreserved/OverlappingInputs helpers
// the other pickers use.
func (p *Picker) pickManual(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalPickerStatistic) *CompactionInput {
	opt := p.ManualOption
	selectLevel := p.SelectLevel
	if selectLevel < 0 {
		selectLevel = 0
	}

	var pool []*lsm.SstFile
	if selectLevel == 0 {
		for _, sl := range levels.L0.SubLevels {
			pool = append(pool, sl.Files...)
		}
	} else {
		pool = levels.Files(selectLevel)
	}

	var candidates []*lsm.SstFile
	for _, f := range pool {
		if opt.FileIDs != nil {
			if _, ok := opt.FileIDs[f.ID]; !ok {
				continue
			}
		} else if !f.Overlaps(opt.KeyRangeBegin, opt.KeyRangeEnd) {
			continue
		}
		if handlers[selectLevel].IsPendingCompact(f.ID) {
			if stats != nil {
				stats.AbortReason = AbortReservationRace
			}
			return nil
		}
		candidates = append(candidates, f)
	}

	if len(candidates) == 0 {
		if stats != nil {
			stats.AbortReason = AbortInsufficientFiles
		}
		return nil
	}
	if stats != nil {
		stats.FilesExamined = len(candidates)
		stats.BytesConsidered = totalSize(candidates)
	}

	inputLevels := []*InputLevel{{LevelIdx: selectLevel, Files: candidates}}

	if p.TargetLevel != selectLevel {
		smallest, largest := lsm.KeyRange(candidates)
		targetFiles := levels.OverlappingInputs(p.TargetLevel, smallest, largest)
		for _, f := range targetFiles {
			if handlers[p.TargetLevel].IsPendingCompact(f.ID) {
				if stats != nil {
					stats.AbortReason = AbortReservationRace
				}
				return nil
			}
		}
		if len(targetFiles) > 0 {
			inputLevels = append(inputLevels, &InputLevel{LevelIdx: p.TargetLevel, Files: targetFiles})
		}
	}

	return &CompactionInput{InputLevels: inputLevels, TargetLevel: p.TargetLevel}
}
