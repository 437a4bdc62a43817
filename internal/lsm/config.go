package lsm

import (
	"github.com/hummockdb/compactsel/internal/checksum"
	"github.com/hummockdb/compactsel/internal/compression"
)

// CompactionMode determines how the overlap strategy compares key ranges.
type CompactionMode int

const (
	// ModeRange compares ranges by the ordinary byte-wise key comparator.
	ModeRange CompactionMode = iota
	// ModeHash compares ranges by a hash-partition predicate instead
	// (used when the keyspace is sharded by consistent hash rather than
	// a total order). The selector core only threads this value through;
	// partition-aware comparison lives with the caller's key encoding.
	ModeHash
)

// FilterFlag is a bitmask of compaction-filter behaviors threaded from
// config into an assembled CompactionTask. The selector never interprets
// these bits itself.
type FilterFlag uint32

const (
	FilterFlagStateClean FilterFlag = 1 << iota
	FilterFlagTTL
)

// CompactionConfig holds every tunable the sizing engine and pickers
// consult. Shared by pointer across every picker constructed within a tick;
// never cloned. Updated only between ticks, via a selector's TryUpdate.
//
// Reference: distilled from risingwave_pb::hummock::CompactionConfig
// (original_source/src/meta/src/hummock/compaction/level_selector.rs).
type CompactionConfig struct {
	MaxLevel                    int
	MaxBytesForLevelBase        uint64
	MaxBytesForLevelMultiplier  uint64
	Level0TierCompactFileNumber uint64
	MaxCompactionBytes          uint64
	MaxSpaceReclaimBytes        uint64
	CompactionMode              CompactionMode
	TargetFileSizeBase          uint64
	TargetFileSizeMultiplier    uint64
	CompactionFilterMask        FilterFlag

	// ChecksumType is the footer checksum algorithm newly flushed/ingested
	// SstFiles are stamped with. Mirrors RocksDB's BlockBasedTableOptions
	// checksum setting: a store-wide choice, not a per-file one.
	ChecksumType checksum.Type

	// CompressionAlgorithm is a level-indexed table keyed by a task's target
	// level (index 0 serves intra-L0 tier tasks). DefaultCompactionConfig and
	// the YAML loader fill it from internal/compression.DefaultTable; a
	// target level with no entry (including a nil table) gets LZ4.
	CompressionAlgorithm []compression.Type

	// AllTableIDs is the live-table set consulted by
	// SpaceReclaimCompactionPicker. Only meaningful for that selector.
	AllTableIDs map[uint32]struct{}
}

// Equal reports whether two configs are identical by value, the comparison
// TryUpdate uses to decide whether a reconfiguration actually changes
// anything.
func (c *CompactionConfig) Equal(o *CompactionConfig) bool {
	if c == o {
		return true
	}
	if c == nil || o == nil {
		return false
	}
	if c.MaxLevel != o.MaxLevel ||
		c.MaxBytesForLevelBase != o.MaxBytesForLevelBase ||
		c.MaxBytesForLevelMultiplier != o.MaxBytesForLevelMultiplier ||
		c.Level0TierCompactFileNumber != o.Level0TierCompactFileNumber ||
		c.MaxCompactionBytes != o.MaxCompactionBytes ||
		c.MaxSpaceReclaimBytes != o.MaxSpaceReclaimBytes ||
		c.CompactionMode != o.CompactionMode ||
		c.TargetFileSizeBase != o.TargetFileSizeBase ||
		c.TargetFileSizeMultiplier != o.TargetFileSizeMultiplier ||
		c.CompactionFilterMask != o.CompactionFilterMask ||
		c.ChecksumType != o.ChecksumType {
		return false
	}
	if len(c.CompressionAlgorithm) != len(o.CompressionAlgorithm) {
		return false
	}
	for i := range c.CompressionAlgorithm {
		if c.CompressionAlgorithm[i] != o.CompressionAlgorithm[i] {
			return false
		}
	}
	if len(c.AllTableIDs) != len(o.AllTableIDs) {
		return false
	}
	for id := range c.AllTableIDs {
		if _, ok := o.AllTableIDs[id]; !ok {
			return false
		}
	}
	return true
}

// DefaultCompactionConfig mirrors the defaults a freshly bootstrapped store
// would carry: a 7-level tree (L0..L6), 256 MiB base, 5x growth per level.
func DefaultCompactionConfig() *CompactionConfig {
	maxLevel := MaxNumLevels - 1
	return &CompactionConfig{
		MaxLevel:                    maxLevel,
		MaxBytesForLevelBase:        256 * 1024 * 1024,
		MaxBytesForLevelMultiplier:  5,
		Level0TierCompactFileNumber: 4,
		MaxCompactionBytes:          128 * 1024 * 1024 * 1024 / 25,
		MaxSpaceReclaimBytes:        512 * 1024 * 1024,
		CompactionMode:              ModeRange,
		TargetFileSizeBase:          64 * 1024 * 1024,
		TargetFileSizeMultiplier:    2,
		CompressionAlgorithm:        compression.DefaultTable(maxLevel),
		ChecksumType:                checksum.TypeCRC32C,
	}
}

// ManualCompactionOption parameterizes ManualCompactionSelector: an optional
// key range restriction, an optional explicit level, and an optional
// explicit file list (by id).
type ManualCompactionOption struct {
	Level     int // -1 means unset: let the sizing engine pick base_level
	KeyRangeBegin []byte
	KeyRangeEnd   []byte
	FileIDs       map[FileID]struct{} // nil means "every unreserved file in range"
}
