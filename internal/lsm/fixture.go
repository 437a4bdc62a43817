package lsm

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/hummockdb/compactsel/internal/checksum"
)

// NewSstFileFixture builds a deterministic SstFile for tests and the
// compactsel CLI's --once sanity check: its FileID is derived from
// (levelIdx, ordinal) via XXH3 rather than an incrementing counter, so two
// fixtures built from the same coordinates always collide on id the same
// way a real ingest path's content-addressed naming would. Its footer
// checksum is stamped with TypeCRC32C, matching DefaultCompactionConfig;
// callers exercising a different store config should restamp via
// SstFile.StampFooterChecksum.
//
// Reference: this store's internal/checksum carries a hand-rolled XXH3
// matching RocksDB's on-disk block-checksum format exactly; fixture ids
// have no on-disk format to match, so this uses the zeebo/xxh3 library
// directly instead of duplicating that implementation.
func NewSstFileFixture(levelIdx int, ordinal int, smallest, largest []byte, fileSize uint64) *SstFile {
	var seed [16]byte
	binary.LittleEndian.PutUint64(seed[:8], uint64(levelIdx))
	binary.LittleEndian.PutUint64(seed[8:], uint64(ordinal))
	id := FileID(xxh3.Hash(seed[:]))

	f := &SstFile{
		ID:       id,
		Smallest: smallest,
		Largest:  largest,
		FileSize: fileSize,
	}
	f.StampFooterChecksum(checksum.TypeCRC32C)
	return f
}

// FixtureKey builds a sortable key of the form "k<n>" zero-padded to a fixed
// width, used by tests to build overlapping/non-overlapping fixture runs
// without hand-writing byte slices.
func FixtureKey(n int) []byte {
	return []byte(fmt.Sprintf("k%08d", n))
}
