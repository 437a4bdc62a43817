// Package config loads the scheduler's full tunable set from a YAML
// document: the compaction config the sizing engine consults plus a TTL
// threshold and a logging level. Manual ranges and space-reclaim table sets
// are not read from YAML.
//
// Reference: struct-tag convention distilled from
// _examples/miretskiy-rollingstone/integration/gensim.go's RocksDBConfig.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hummockdb/compactsel/internal/checksum"
	"github.com/hummockdb/compactsel/internal/compression"
	"github.com/hummockdb/compactsel/internal/lsm"
)

// CompactionDoc is the YAML document shape this package decodes. Byte sizes
// are given in MiB; CompactionMode and ChecksumType are names, and
// CompressionAlgorithm is a short name per level (e.g. "snappy", "lz4",
// "zstd", "none") rather than the compression.Type byte RocksDB persists.
// TTLSeconds and Logging have no lsm.CompactionConfig counterpart.
type CompactionDoc struct {
	MaxLevel                    int      `yaml:"max_level"`
	MaxBytesForLevelBaseMB      int      `yaml:"max_bytes_for_level_base_mb"`
	MaxBytesForLevelMultiplier  int      `yaml:"max_bytes_for_level_multiplier"`
	Level0TierCompactFileNumber int      `yaml:"level0_tier_compact_file_number"`
	MaxCompactionBytesMB        int      `yaml:"max_compaction_bytes_mb"`
	MaxSpaceReclaimBytesMB      int      `yaml:"max_space_reclaim_bytes_mb"`
	CompactionMode              string   `yaml:"compaction_mode"`
	TargetFileSizeBaseMB        int      `yaml:"target_file_size_base_mb"`
	TargetFileSizeMultiplier    int      `yaml:"target_file_size_multiplier"`
	CompressionAlgorithm        []string `yaml:"compression_algorithm,omitempty"`
	ChecksumType                string   `yaml:"checksum_type,omitempty"`

	TTLSeconds int64 `yaml:"ttl_seconds,omitempty"`

	Logging LoggingDoc `yaml:"logging,omitempty"`
}

// LoggingDoc configures internal/logging's verbosity.
type LoggingDoc struct {
	Level string `yaml:"level,omitempty"`
}

// Load reads and decodes path into a CompactionDoc.
func Load(path string) (*CompactionDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode decodes a CompactionDoc from r.
func Decode(r io.Reader) (*CompactionDoc, error) {
	doc := &CompactionDoc{
		MaxLevel:                    lsm.MaxNumLevels - 1,
		MaxBytesForLevelMultiplier:  5,
		Level0TierCompactFileNumber: 4,
		TargetFileSizeMultiplier:    2,
		CompactionMode:              "range",
		ChecksumType:                "crc32c",
	}
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return doc, nil
}

// ToCompactionConfig converts MB-denominated YAML fields into the byte-exact
// lsm.CompactionConfig the selector consumes, resolving each
// CompressionAlgorithm entry through parseCompressionName. An empty list
// falls back to compression.DefaultTable.
func (d *CompactionDoc) ToCompactionConfig() (*lsm.CompactionConfig, error) {
	mode := lsm.ModeRange
	if d.CompactionMode == "hash" {
		mode = lsm.ModeHash
	}

	table := make([]compression.Type, 0, len(d.CompressionAlgorithm))
	for _, name := range d.CompressionAlgorithm {
		t, err := parseCompressionName(name)
		if err != nil {
			return nil, err
		}
		table = append(table, t)
	}
	if len(table) == 0 {
		table = compression.DefaultTable(d.MaxLevel)
	}

	checksumType, err := parseChecksumName(d.ChecksumType)
	if err != nil {
		return nil, err
	}

	return &lsm.CompactionConfig{
		MaxLevel:                    d.MaxLevel,
		MaxBytesForLevelBase:        uint64(d.MaxBytesForLevelBaseMB) * 1024 * 1024,
		MaxBytesForLevelMultiplier:  uint64(d.MaxBytesForLevelMultiplier),
		Level0TierCompactFileNumber: uint64(d.Level0TierCompactFileNumber),
		MaxCompactionBytes:          uint64(d.MaxCompactionBytesMB) * 1024 * 1024,
		MaxSpaceReclaimBytes:        uint64(d.MaxSpaceReclaimBytesMB) * 1024 * 1024,
		CompactionMode:              mode,
		TargetFileSizeBase:          uint64(d.TargetFileSizeBaseMB) * 1024 * 1024,
		TargetFileSizeMultiplier:    uint64(d.TargetFileSizeMultiplier),
		CompressionAlgorithm:        table,
		ChecksumType:                checksumType,
	}, nil
}

func parseChecksumName(name string) (checksum.Type, error) {
	switch name {
	case "", "crc32c":
		return checksum.TypeCRC32C, nil
	case "xxhash":
		return checksum.TypeXXHash, nil
	case "xxhash64":
		return checksum.TypeXXHash64, nil
	case "xxh3":
		return checksum.TypeXXH3, nil
	case "none":
		return checksum.TypeNoChecksum, nil
	default:
		return 0, fmt.Errorf("config: unknown checksum type %q", name)
	}
}

func parseCompressionName(name string) (compression.Type, error) {
	switch name {
	case "none":
		return compression.NoCompression, nil
	case "snappy":
		return compression.SnappyCompression, nil
	case "zlib":
		return compression.ZlibCompression, nil
	case "lz4":
		return compression.LZ4Compression, nil
	case "lz4hc":
		return compression.LZ4HCCompression, nil
	case "zstd":
		return compression.ZstdCompression, nil
	default:
		return 0, fmt.Errorf("config: unknown compression algorithm %q", name)
	}
}
