package lsm

import "sort"

// LevelType distinguishes L0 sub-levels, whose files may share key ranges,
// from the flat levels below base level, which are always disjoint.
type LevelType int

const (
	// Overlapping levels may contain files whose key ranges intersect.
	Overlapping LevelType = iota
	// Nonoverlapping levels contain disjoint, key-sorted files.
	Nonoverlapping
)

// MaxNumLevels bounds the depth of the tree (L0..L6, matching the
// RocksDB-compatible default of 7 levels this store inherits).
const MaxNumLevels = 7

// Level is an ordered collection of files at one depth of the tree.
// SubLevelID is only meaningful for the sub-levels inside L0; flat levels
// 1..max leave it zero.
type Level struct {
	LevelIdx      int
	Type          LevelType
	Files         []*SstFile
	TotalFileSize uint64
	SubLevelID    uint64
}

// NewLevel builds a Level from a file list, computing the aggregate size.
func NewLevel(idx int, typ LevelType, files []*SstFile) *Level {
	var total uint64
	for _, f := range files {
		total += f.FileSize
	}
	return &Level{LevelIdx: idx, Type: typ, Files: files, TotalFileSize: total}
}

// NewL0SubLevel builds one L0 sub-level from a file list.
func NewL0SubLevel(subLevelID uint64, typ LevelType, files []*SstFile) *Level {
	l := NewLevel(0, typ, files)
	l.SubLevelID = subLevelID
	return l
}

// NewL0 assembles an L0 container from a list of sub-levels, oldest first.
func NewL0(subLevels []*Level) *L0 {
	var total uint64
	for _, sl := range subLevels {
		total += sl.TotalFileSize
	}
	return &L0{SubLevels: subLevels, TotalFileSize: total}
}

// L0 is the special newest level: an ordered sequence of sub-levels, each a
// Level in its own right, plus the aggregate size across all of them.
type L0 struct {
	SubLevels     []*Level
	TotalFileSize uint64
}

// NumFiles returns the total file count across every L0 sub-level.
func (l *L0) NumFiles() int {
	n := 0
	for _, sl := range l.SubLevels {
		n += len(sl.Files)
	}
	return n
}

// Levels is the full-tree, read-only snapshot a single scheduling tick
// operates on: the L0 container plus the flat levels 1..max.
type Levels struct {
	L0     *L0
	Levels []*Level // indexed by LevelIdx-1; Levels[i].LevelIdx == i+1
}

// NewLevels builds a snapshot from an L0 container and the flat levels,
// sorting each flat level's files by smallest key (the Nonoverlapping
// invariant pickers rely on).
func NewLevels(l0 *L0, flat []*Level) *Levels {
	if l0 == nil {
		l0 = &L0{}
	}
	for _, lvl := range flat {
		sort.Slice(lvl.Files, func(i, j int) bool {
			return CompareKeys(lvl.Files[i].Smallest, lvl.Files[j].Smallest) < 0
		})
	}
	return &Levels{L0: l0, Levels: flat}
}

// Level returns the flat level with the given index (1..max), or nil if out
// of range. Level(0) is not served here; use L0 directly.
func (lv *Levels) Level(idx int) *Level {
	for _, l := range lv.Levels {
		if l.LevelIdx == idx {
			return l
		}
	}
	return nil
}

// Files returns the file list at a flat level, or nil if empty/absent.
func (lv *Levels) Files(idx int) []*SstFile {
	if l := lv.Level(idx); l != nil {
		return l.Files
	}
	return nil
}

// TotalFileSize returns the aggregate byte size at a flat level.
func (lv *Levels) TotalFileSize(idx int) uint64 {
	if l := lv.Level(idx); l != nil {
		return l.TotalFileSize
	}
	return 0
}

// OverlappingInputs returns every file at the given flat level whose key
// range intersects [begin, end], in key order.
//
// Reference: RocksDB v10.7.5 db/version_set.cc (Version::GetOverlappingInputs)
func (lv *Levels) OverlappingInputs(levelIdx int, begin, end []byte) []*SstFile {
	level := lv.Level(levelIdx)
	if level == nil {
		return nil
	}
	var out []*SstFile
	for _, f := range level.Files {
		if begin != nil && CompareKeys(f.Largest, begin) < 0 {
			continue
		}
		if end != nil && CompareKeys(f.Smallest, end) > 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// KeyRange computes the smallest and largest key across a set of files.
func KeyRange(files []*SstFile) (smallest, largest []byte) {
	for i, f := range files {
		if i == 0 {
			smallest, largest = f.Smallest, f.Largest
			continue
		}
		if CompareKeys(f.Smallest, smallest) < 0 {
			smallest = f.Smallest
		}
		if CompareKeys(f.Largest, largest) > 0 {
			largest = f.Largest
		}
	}
	return smallest, largest
}
