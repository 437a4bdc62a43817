package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// pickMinOverlap chooses, among the unreserved files at SelectLevel, the
// one whose overlap with TargetLevel is cheapest relative to its own size:
// minimal target_overlap_bytes / select_file_size, ties broken first by
// smaller absolute target overlap, then by smaller file id. Files whose
// target-level overlap set contains any reserved file are skipped
// entirely.
//
// Reference: adapted from this store's own pickLevelCompaction
// (internal/compaction/picker.go), generalized from "largest file first"
// to the overlap-ratio comparator the distilled design specifies.
func (p *Picker) pickMinOverlap(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalPickerStatistic) *CompactionInput {
	selectHandler := handlers[p.SelectLevel]
	candidates := unreserved(levels.Files(p.SelectLevel), selectHandler)
	if len(candidates) == 0 {
		if stats != nil {
			stats.AbortReason = AbortInsufficientFiles
		}
		return nil
	}

	targetHandler := handlers[p.TargetLevel]

	var bestFile *lsm.SstFile
	var bestOverlap []*lsm.SstFile
	var bestRatio float64
	var bestOverlapSize uint64

	for _, f := range candidates {
		overlap := levels.OverlappingInputs(p.TargetLevel, f.Smallest, f.Largest)
		blocked := false
		var overlapSize uint64
		for _, o := range overlap {
			if targetHandler.IsPendingCompact(o.ID) {
				blocked = true
				break
			}
			overlapSize += o.FileSize
		}
		if blocked {
			continue
		}
		if stats != nil {
			stats.FilesExamined++
			stats.BytesConsidered += f.FileSize
		}

		ratio := 0.0
		if f.FileSize > 0 {
			ratio = float64(overlapSize) / float64(f.FileSize)
		}

		switch {
		case bestFile == nil:
		case ratio < bestRatio:
		case ratio == bestRatio && overlapSize < bestOverlapSize:
		case ratio == bestRatio && overlapSize == bestOverlapSize && f.ID < bestFile.ID:
		default:
			continue
		}
		bestFile, bestOverlap, bestRatio, bestOverlapSize = f, overlap, ratio, overlapSize
	}

	if bestFile == nil {
		if stats != nil {
			stats.AbortReason = AbortReservationRace
		}
		return nil
	}

	inputLevels := []*InputLevel{{LevelIdx: p.SelectLevel, Files: []*lsm.SstFile{bestFile}}}
	if len(bestOverlap) > 0 {
		inputLevels = append(inputLevels, &InputLevel{LevelIdx: p.TargetLevel, Files: bestOverlap})
	}
	return &CompactionInput{InputLevels: inputLevels, TargetLevel: p.TargetLevel}
}
