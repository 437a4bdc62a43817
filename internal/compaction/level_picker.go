package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// pickLevel drains a prefix of L0 sub-levels down into the target level.
// Selects the oldest unreserved sub-level block: the first sub-level is
// always taken, and later ones are added while the combined byte size stays
// within max_compaction_bytes; pulls in every target-level file that
// overlaps the union key range of the chosen L0 files, aborting if any of
// them is already reserved.
//
// Reference: adapted from this store's own pickL0Compaction
// (internal/compaction/picker.go) generalized from a fixed L0->L1 drain to
// an arbitrary target level.
func (p *Picker) pickLevel(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalPickerStatistic) *CompactionInput {
	subLevels := levels.L0.SubLevels
	var chosen []*lsm.SstFile
	var size uint64

	for _, sl := range subLevels {
		available := unreserved(sl.Files, handlers[0])
		if len(available) != len(sl.Files) {
			break
		}
		slSize := sl.TotalFileSize
		if size+slSize > p.Config.MaxCompactionBytes && len(chosen) > 0 {
			break
		}
		chosen = append(chosen, sl.Files...)
		size += slSize
		if stats != nil {
			stats.FilesExamined += len(sl.Files)
			stats.BytesConsidered += slSize
		}
	}

	if len(chosen) == 0 {
		if stats != nil {
			stats.AbortReason = AbortInsufficientFiles
		}
		return nil
	}

	smallest, largest := lsm.KeyRange(chosen)
	targetFiles := levels.OverlappingInputs(p.TargetLevel, smallest, largest)
	targetHandler := handlers[p.TargetLevel]
	for _, f := range targetFiles {
		if targetHandler.IsPendingCompact(f.ID) {
			if stats != nil {
				stats.AbortReason = AbortReservationRace
			}
			return nil
		}
	}

	inputLevels := []*InputLevel{{LevelIdx: 0, Files: chosen}}
	if len(targetFiles) > 0 {
		inputLevels = append(inputLevels, &InputLevel{LevelIdx: p.TargetLevel, Files: targetFiles})
	}
	return &CompactionInput{InputLevels: inputLevels, TargetLevel: p.TargetLevel}
}
