// Package options implements OPTIONS-file style parsing for the compaction
// config this selector runs against: a flat key=value file grouped into
// bracketed sections, the same shape RocksDB persists its DBOptions/
// CFOptions in.
//
// This package is internal and not part of the public API.
//
// Reference: RocksDB v10.7.5 options/options_helper.cc, options/db_options.cc.
package options

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hummockdb/compactsel/internal/checksum"
	"github.com/hummockdb/compactsel/internal/lsm"
)

// ParsedOptions is the flat view an OPTIONS file decodes into before it's
// folded into a lsm.CompactionConfig.
type ParsedOptions struct {
	NumLevels                   int
	MaxBytesForLevelBase        int64
	MaxBytesForLevelMultiplier  float64
	Level0TierCompactFileNumber int
	MaxCompactionBytes          int64
	MaxSpaceReclaimBytes        int64
	TargetFileSizeBase          int64
	TargetFileSizeMultiplier    int
	CompactionMode              string
	ChecksumType                string
}

// ReadOptionsFile opens path directly (no vfs indirection: this package has
// no reason to run against anything but the host filesystem) and parses it.
func ReadOptionsFile(path string) (*ParsedOptions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return ParseOptionsFile(file)
}

// ParseOptionsFile parses options from a reader.
func ParseOptionsFile(r io.Reader) (*ParsedOptions, error) {
	opts := &ParsedOptions{
		NumLevels:                   lsm.MaxNumLevels,
		MaxBytesForLevelBase:        256 * 1024 * 1024,
		MaxBytesForLevelMultiplier:  5,
		Level0TierCompactFileNumber: 4,
		TargetFileSizeBase:          64 * 1024 * 1024,
		TargetFileSizeMultiplier:    2,
		CompactionMode:              "range",
		ChecksumType:                "crc32c",
	}

	scanner := bufio.NewScanner(r)
	currentSection := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = line[1 : len(line)-1]
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if currentSection != "CompactionOptions" {
			continue
		}
		switch key {
		case "num_levels":
			opts.NumLevels, _ = strconv.Atoi(value)
		case "max_bytes_for_level_base":
			opts.MaxBytesForLevelBase, _ = strconv.ParseInt(value, 10, 64)
		case "max_bytes_for_level_multiplier":
			opts.MaxBytesForLevelMultiplier, _ = strconv.ParseFloat(value, 64)
		case "level0_tier_compact_file_number":
			opts.Level0TierCompactFileNumber, _ = strconv.Atoi(value)
		case "max_compaction_bytes":
			opts.MaxCompactionBytes, _ = strconv.ParseInt(value, 10, 64)
		case "max_space_reclaim_bytes":
			opts.MaxSpaceReclaimBytes, _ = strconv.ParseInt(value, 10, 64)
		case "target_file_size_base":
			opts.TargetFileSizeBase, _ = strconv.ParseInt(value, 10, 64)
		case "target_file_size_multiplier":
			opts.TargetFileSizeMultiplier, _ = strconv.Atoi(value)
		case "compaction_mode":
			opts.CompactionMode = value
		case "checksum_type":
			opts.ChecksumType = value
		}
	}

	return opts, scanner.Err()
}

// ToCompactionConfig folds a parsed OPTIONS file into a lsm.CompactionConfig,
// leaving CompressionAlgorithm/AllTableIDs for the caller to populate
// (neither has a natural OPTIONS-file representation in this store).
func (o *ParsedOptions) ToCompactionConfig() *lsm.CompactionConfig {
	mode := lsm.ModeRange
	if o.CompactionMode == "hash" {
		mode = lsm.ModeHash
	}
	maxLevel := o.NumLevels - 1
	if maxLevel < 1 {
		maxLevel = lsm.MaxNumLevels - 1
	}
	checksumType := checksum.TypeCRC32C
	switch o.ChecksumType {
	case "xxhash":
		checksumType = checksum.TypeXXHash
	case "xxhash64":
		checksumType = checksum.TypeXXHash64
	case "xxh3":
		checksumType = checksum.TypeXXH3
	case "none":
		checksumType = checksum.TypeNoChecksum
	}
	return &lsm.CompactionConfig{
		MaxLevel:                    maxLevel,
		MaxBytesForLevelBase:        uint64(o.MaxBytesForLevelBase),
		MaxBytesForLevelMultiplier:  uint64(o.MaxBytesForLevelMultiplier),
		Level0TierCompactFileNumber: uint64(o.Level0TierCompactFileNumber),
		MaxCompactionBytes:          uint64(o.MaxCompactionBytes),
		MaxSpaceReclaimBytes:        uint64(o.MaxSpaceReclaimBytes),
		CompactionMode:              mode,
		TargetFileSizeBase:          uint64(o.TargetFileSizeBase),
		TargetFileSizeMultiplier:    uint64(o.TargetFileSizeMultiplier),
		ChecksumType:                checksumType,
	}
}
