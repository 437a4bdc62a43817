package compaction

import "github.com/hummockdb/compactsel/internal/lsm"

// PickerKind tags which shape of compaction a Picker builds. A tagged
// variant dispatched by switch, rather than one interface satisfied by six
// unrelated types: the config each kind needs differs enough (a manual
// option here, a live-table set there) that a shared interface would
// either bloat every variant with unused fields or force a type-assertion
// dance at the call site anyway.
type PickerKind int

const (
	KindTier PickerKind = iota
	KindLevel
	KindMinOverlap
	KindManual
	KindSpaceReclaim
	KindTTL
)

// Picker builds a concrete CompactionInput for one scored candidate. Only
// the fields relevant to Kind are populated. The dynamic selector gets one
// per candidate from CreatePicker, mirroring the distilled design's
// create_compaction_picker factory; the manual, space-reclaim and TTL
// selectors construct theirs directly.
type Picker struct {
	Kind        PickerKind
	SelectLevel int
	TargetLevel int
	Config      *lsm.CompactionConfig

	ManualOption *lsm.ManualCompactionOption
	LiveTableIDs map[uint32]struct{}
	TTLSeconds   int64
	TTLNowUnix   func() int64
}

// CreatePicker returns the picker dictated by (selectLevel, targetLevel),
// the shape every dynamic-selector candidate is scored under.
//
// Reference: original_source/level_selector.rs's
// DynamicLevelSelectorCore::create_compaction_picker.
func CreatePicker(selectLevel, targetLevel int, cfg *lsm.CompactionConfig) *Picker {
	if selectLevel == 0 {
		if targetLevel == 0 {
			return &Picker{Kind: KindTier, SelectLevel: 0, TargetLevel: 0, Config: cfg}
		}
		return &Picker{Kind: KindLevel, SelectLevel: 0, TargetLevel: targetLevel, Config: cfg}
	}
	if selectLevel+1 != targetLevel {
		panic("compaction: non-L0 select level must target exactly select+1")
	}
	return &Picker{Kind: KindMinOverlap, SelectLevel: selectLevel, TargetLevel: targetLevel, Config: cfg}
}

// Pick dispatches to the picker-kind-specific implementation.
func (p *Picker) Pick(levels *lsm.Levels, handlers []*LevelHandler, stats *LocalPickerStatistic) *CompactionInput {
	switch p.Kind {
	case KindTier:
		return p.pickTier(levels, handlers, stats)
	case KindLevel:
		return p.pickLevel(levels, handlers, stats)
	case KindMinOverlap:
		return p.pickMinOverlap(levels, handlers, stats)
	case KindManual:
		return p.pickManual(levels, handlers, stats)
	case KindSpaceReclaim:
		return p.pickSpaceReclaim(levels, handlers, stats)
	case KindTTL:
		return p.pickTTL(levels, handlers, stats)
	default:
		return nil
	}
}

func unreserved(files []*lsm.SstFile, h *LevelHandler) []*lsm.SstFile {
	out := make([]*lsm.SstFile, 0, len(files))
	for _, f := range files {
		if !h.IsPendingCompact(f.ID) {
			out = append(out, f)
		}
	}
	return out
}

func totalSize(files []*lsm.SstFile) uint64 {
	var total uint64
	for _, f := range files {
		total += f.FileSize
	}
	return total
}
