// Package lsm holds the read-only data model the compaction selector
// consumes on every scheduling tick: SST file metadata, levels, and the
// full-tree snapshot.
//
// Reference: RocksDB v10.7.5 db/version_set.h (FileMetaData, VersionStorageInfo)
package lsm

import "github.com/hummockdb/compactsel/internal/checksum"

// FileID uniquely identifies an SstFile within a store. Monotonically
// assigned by the ingest/flush path (out of scope here).
type FileID uint64

// SstFile is the unit of compaction: an immutable, on-disk sorted run
// covering a half-open key range.
type SstFile struct {
	ID FileID

	// Smallest and Largest bound the key range this file covers.
	// RightExclusive indicates Largest is not itself present in the file
	// (used by some picker key-range computations).
	Smallest       []byte
	Largest        []byte
	RightExclusive bool

	FileSize uint64

	// TableIDs is the set of logical table identifiers whose rows this
	// file contains. Used by SpaceReclaimCompactionPicker to find files
	// whose entire table membership has been dropped.
	TableIDs []uint32

	// StaleKeyCount and TotalKeyCount are auxiliary statistics carried
	// from the write path; not consulted by the sizing engine or scorer.
	StaleKeyCount uint64
	TotalKeyCount uint64

	// CreatedAtUnix backs TtlReclaimCompactionPicker's expiry check.
	CreatedAtUnix int64

	// BeingCompacted is set by LevelHandler.AddTask and cleared by
	// RemoveTask; pickers must never select a file with this set.
	BeingCompacted bool

	// FooterChecksumType and FooterChecksum cover the file's key range the
	// same way a real SST footer's checksum covers its block contents: a
	// cheap integrity check a picker can run before trusting a file's
	// bounds, without reading the file itself.
	FooterChecksumType checksum.Type
	FooterChecksum      uint32
}

// StampFooterChecksum computes and stores a footer checksum of type t over
// the file's key range, the way the ingest/flush path would stamp one over
// actual block contents before handing an SstFile to the selector. t is
// normally CompactionConfig.ChecksumType, the store-wide algorithm choice.
func (f *SstFile) StampFooterChecksum(t checksum.Type) {
	f.FooterChecksumType = t
	f.FooterChecksum = checksum.ComputeChecksum(t, append(append([]byte{}, f.Smallest...), f.Largest...), byte(t))
}

// VerifyFooterChecksum reports whether the stored checksum still matches the
// file's current key range. A mismatch means either corruption or a caller
// mutating Smallest/Largest after construction, both programmer errors this
// selector never expects to recover from mid-tick.
func (f *SstFile) VerifyFooterChecksum() bool {
	if f.FooterChecksumType == checksum.TypeNoChecksum {
		return true
	}
	want := checksum.ComputeChecksum(f.FooterChecksumType, append(append([]byte{}, f.Smallest...), f.Largest...), byte(f.FooterChecksumType))
	return want == f.FooterChecksum
}

// Overlaps reports whether the file's key range intersects [begin, end].
// A nil begin or end means unbounded on that side.
func (f *SstFile) Overlaps(begin, end []byte) bool {
	if end != nil && compareKeys(f.Smallest, end) > 0 {
		return false
	}
	if begin != nil && compareKeys(f.Largest, begin) < 0 {
		return false
	}
	return true
}

// HasLiveTable reports whether any of the file's table ids are present in
// live.
func (f *SstFile) HasLiveTable(live map[uint32]struct{}) bool {
	for _, id := range f.TableIDs {
		if _, ok := live[id]; ok {
			return true
		}
	}
	return false
}

func compareKeys(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// CompareKeys exposes the bytewise key comparator used throughout the
// selector (pickers need it to sort candidate files and compute unions of
// key ranges).
func CompareKeys(a, b []byte) int { return compareKeys(a, b) }
