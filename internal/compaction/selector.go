package compaction

import (
	"github.com/hummockdb/compactsel/internal/logging"
	"github.com/hummockdb/compactsel/internal/lsm"
)

// LevelSelector is the public, tick-driving surface every concrete selector
// implements: pick one task (or none) against a read-only snapshot, report
// what kind of task it produces, and accept a reconfiguration between
// ticks.
//
// Reference: original_source/src/meta/src/hummock/compaction/level_selector.rs's
// LevelSelector trait.
type LevelSelector interface {
	// PickCompaction inspects levels and the live handler set and returns
	// one task, reserving its input files (and crediting its target
	// level's pending output) in handlers as a side effect. Returns nil
	// if nothing qualifies.
	PickCompaction(taskID uint64, levels *lsm.Levels, handlers []*LevelHandler, stats *LocalSelectorStatistic) *CompactionTask
	Name() string
	TaskType() TaskType
	TryUpdate(option SelectorOption)
}

// SelectorOptionKind tags which selector a SelectorOption reconfigures.
type SelectorOptionKind int

const (
	OptionDynamic SelectorOptionKind = iota
	OptionManual
	OptionSpaceReclaim
	OptionTtl
)

// SelectorOption is the tagged argument TryUpdate accepts. Only the fields
// relevant to Kind are read; passing the wrong Kind to a selector's
// TryUpdate is a caller bug and panics rather than silently no-opping.
//
// Reference: original_source/level_selector.rs's selector_option module
// (DynamicLevelSelectorOption / ManualCompactionOption wrapped per-variant).
type SelectorOption struct {
	Kind   SelectorOptionKind
	Config *lsm.CompactionConfig

	// Manual is read only when Kind == OptionManual.
	Manual *lsm.ManualCompactionOption

	// TTLSeconds and TTLNowUnix are read only when Kind == OptionTtl.
	// TTLNowUnix may be left nil to fall back to the wall clock.
	TTLSeconds int64
	TTLNowUnix func() int64
}

// reconfigState models the two states a selector oscillates between: holding
// a config it was last given (Configured), and the brief window inside
// TryUpdate where the incoming config has been validated but not yet swapped
// in (Reconfiguring). No caller ever observes Reconfiguring directly; a
// selector's zero value is stateConfigured.
type reconfigState int

const (
	stateConfigured reconfigState = iota
	stateReconfiguring
)

// pendingOutputNum/pendingOutputDenom approximate the output side of a
// compaction as 90% of its input size: real output shrinks from dropping
// overwritten versions and tombstones, but the selector has no way to know
// the exact ratio before the task runs, so it reserves a conservative
// estimate against the target level's budget rather than reserving zero.
const (
	pendingOutputNum   = 9
	pendingOutputDenom = 10
)

// reserveInput reserves every file a CompactionInput references across its
// input levels, then credits the target level's pending-output bytes. All
// or nothing: if any level's reservation fails (a race against another
// concurrently produced task touching the same files), every earlier
// reservation in this call is rolled back before returning false.
func reserveInput(handlers []*LevelHandler, taskID uint64, input *CompactionInput) bool {
	reservedSoFar := make([]*InputLevel, 0, len(input.InputLevels))
	for _, il := range input.InputLevels {
		if !handlers[il.LevelIdx].AddTask(taskID, il.Files, 0) {
			for _, done := range reservedSoFar {
				handlers[done.LevelIdx].RemoveTask(taskID, done.Files)
			}
			return false
		}
		reservedSoFar = append(reservedSoFar, il)
	}
	outputBytes := totalSize(input.AllFiles()) * pendingOutputNum / pendingOutputDenom
	handlers[input.TargetLevel].AddTask(taskID, nil, outputBytes)
	return true
}

// DynamicLevelSelector is the everyday selector: it scores every level with
// GetPriorityLevels and tries candidates in descending score order, skipping
// any whose picker declines (usually a reservation race against a task
// already in flight) until one succeeds or the candidate list is exhausted.
//
// Reference: original_source/level_selector.rs's DynamicLevelSelector.
type DynamicLevelSelector struct {
	core   *dynamicLevelCore
	state  reconfigState
	logger logging.Logger
}

// NewDynamicLevelSelector builds a selector over cfg. A nil logger falls
// back to logging.OrDefault's WARN-level stderr logger.
func NewDynamicLevelSelector(cfg *lsm.CompactionConfig, logger logging.Logger) *DynamicLevelSelector {
	return &DynamicLevelSelector{core: newDynamicLevelCore(cfg), logger: logging.OrDefault(logger)}
}

func (s *DynamicLevelSelector) Name() string     { return "dynamic" }
func (s *DynamicLevelSelector) TaskType() TaskType { return TaskTypeDynamic }

func (s *DynamicLevelSelector) TryUpdate(option SelectorOption) {
	if option.Kind != OptionDynamic {
		panic("compaction: DynamicLevelSelector.TryUpdate given a non-dynamic option")
	}
	if s.core.config.Equal(option.Config) {
		return
	}
	s.state = stateReconfiguring
	s.core = newDynamicLevelCore(option.Config)
	s.state = stateConfigured
}

func (s *DynamicLevelSelector) PickCompaction(taskID uint64, levels *lsm.Levels, handlers []*LevelHandler, stats *LocalSelectorStatistic) *CompactionTask {
	ctx := s.core.GetPriorityLevels(levels, handlers, stats)
	cfg := s.core.config

	for _, candidate := range ctx.ScoreLevels {
		if candidate.Score <= ScoreBase {
			break
		}
		picker := CreatePicker(candidate.SelectLevel, candidate.TargetLevel, cfg)
		pickerStats := &LocalPickerStatistic{}
		input := picker.Pick(levels, handlers, pickerStats)
		if input == nil {
			if stats != nil {
				stats.SkipPicker = append(stats.SkipPicker, SkippedCandidate{
					SelectLevel: candidate.SelectLevel,
					TargetLevel: candidate.TargetLevel,
					Stats:       *pickerStats,
				})
			}
			continue
		}
		if !reserveInput(handlers, taskID, input) {
			if stats != nil {
				pickerStats.AbortReason = AbortReservationRace
				stats.SkipPicker = append(stats.SkipPicker, SkippedCandidate{
					SelectLevel: candidate.SelectLevel,
					TargetLevel: candidate.TargetLevel,
					Stats:       *pickerStats,
				})
			}
			continue
		}
		task := assembleTask(cfg, input, ctx.BaseLevel, TaskTypeDynamic, candidate.Score)
		s.logger.Infof("%stask produced select=%d target=%d base_level=%d score=%d",
			logging.NSSelector, candidate.SelectLevel, candidate.TargetLevel, ctx.BaseLevel, candidate.Score)
		return task
	}
	s.logger.Debugf("%sno candidate cleared score_base base_level=%d candidates=%d",
		logging.NSSelector, ctx.BaseLevel, len(ctx.ScoreLevels))
	return nil
}

// ManualCompactionSelector drains a single operator-requested key range (or
// explicit file list) regardless of score. It still runs the sizing engine
// every tick, purely to learn base_level: an unset (negative)
// ManualOption.Level selects base_level itself, compacting it into the level
// below (or in place at max_level), matching what an operator expects
// "compact this range" to mean when they haven't named a level.
//
// Reference: original_source/level_selector.rs's ManualCompactionSelector;
// this store's engine has no picker-driven equivalent (manual compaction
// there is a direct CompactRange call), so the selector itself is new code
// in the teacher's idiom, built from the same core every other selector
// shares.
type ManualCompactionSelector struct {
	core   *dynamicLevelCore
	option *lsm.ManualCompactionOption
	state  reconfigState
}

// NewManualCompactionSelector builds a selector over cfg and opt.
func NewManualCompactionSelector(cfg *lsm.CompactionConfig, opt *lsm.ManualCompactionOption) *ManualCompactionSelector {
	return &ManualCompactionSelector{core: newDynamicLevelCore(cfg), option: opt}
}

func (s *ManualCompactionSelector) Name() string     { return "manual" }
func (s *ManualCompactionSelector) TaskType() TaskType { return TaskTypeManual }

func (s *ManualCompactionSelector) TryUpdate(option SelectorOption) {
	if option.Kind != OptionManual {
		panic("compaction: ManualCompactionSelector.TryUpdate given a non-manual option")
	}
	s.state = stateReconfiguring
	if option.Config != nil && !s.core.config.Equal(option.Config) {
		s.core = newDynamicLevelCore(option.Config)
	}
	s.option = option.Manual
	s.state = stateConfigured
}

func (s *ManualCompactionSelector) PickCompaction(taskID uint64, levels *lsm.Levels, handlers []*LevelHandler, stats *LocalSelectorStatistic) *CompactionTask {
	cfg := s.core.config
	ctx := s.core.CalculateLevelBaseSize(levels)

	opt := s.option
	selectLevel := opt.Level
	if selectLevel < 0 {
		selectLevel = ctx.BaseLevel
	}
	targetLevel := selectLevel
	switch {
	case selectLevel == 0:
		targetLevel = ctx.BaseLevel
	case selectLevel < cfg.MaxLevel:
		targetLevel = selectLevel + 1
	}

	// A level below base_level is a dead zone: nothing ever compacts into it,
	// so a manual request targeting one can never be satisfied.
	if selectLevel > 0 && selectLevel < ctx.BaseLevel {
		return nil
	}

	picker := &Picker{Kind: KindManual, SelectLevel: selectLevel, TargetLevel: targetLevel, Config: cfg, ManualOption: opt}
	pickerStats := &LocalPickerStatistic{}
	input := picker.Pick(levels, handlers, pickerStats)
	if input == nil {
		if stats != nil {
			stats.SkipPicker = append(stats.SkipPicker, SkippedCandidate{SelectLevel: selectLevel, TargetLevel: targetLevel, Stats: *pickerStats})
		}
		return nil
	}
	if !reserveInput(handlers, taskID, input) {
		return nil
	}
	return assembleTask(cfg, input, ctx.BaseLevel, TaskTypeManual, 0)
}

// SpaceReclaimCompactionSelector drains files whose table membership has
// been entirely dropped, independent of the priority scorer: a dropped
// table's data has no read path left, so reclaiming it is always justified
// the moment any file qualifies, score or no score.
//
// Reference: original_source/level_selector.rs's
// SpaceReclaimCompactionSelector.
type SpaceReclaimCompactionSelector struct {
	core  *dynamicLevelCore
	state reconfigState
}

// NewSpaceReclaimCompactionSelector builds a selector over cfg. cfg.AllTableIDs
// is consulted directly by the underlying picker on every tick, so updating
// it in place (rather than through TryUpdate) is also observed immediately.
func NewSpaceReclaimCompactionSelector(cfg *lsm.CompactionConfig) *SpaceReclaimCompactionSelector {
	return &SpaceReclaimCompactionSelector{core: newDynamicLevelCore(cfg)}
}

func (s *SpaceReclaimCompactionSelector) Name() string     { return "space_reclaim" }
func (s *SpaceReclaimCompactionSelector) TaskType() TaskType { return TaskTypeSpaceReclaim }

func (s *SpaceReclaimCompactionSelector) TryUpdate(option SelectorOption) {
	if option.Kind != OptionSpaceReclaim {
		panic("compaction: SpaceReclaimCompactionSelector.TryUpdate given a non-space-reclaim option")
	}
	if s.core.config.Equal(option.Config) {
		return
	}
	s.state = stateReconfiguring
	s.core = newDynamicLevelCore(option.Config)
	s.state = stateConfigured
}

func (s *SpaceReclaimCompactionSelector) PickCompaction(taskID uint64, levels *lsm.Levels, handlers []*LevelHandler, stats *LocalSelectorStatistic) *CompactionTask {
	cfg := s.core.config
	ctx := s.core.CalculateLevelBaseSize(levels)

	picker := &Picker{Kind: KindSpaceReclaim, Config: cfg, LiveTableIDs: cfg.AllTableIDs}
	pickerStats := &LocalPickerStatistic{}
	input := picker.Pick(levels, handlers, pickerStats)
	if input == nil {
		if stats != nil {
			stats.SkipPicker = append(stats.SkipPicker, SkippedCandidate{Stats: *pickerStats})
		}
		return nil
	}
	if !reserveInput(handlers, taskID, input) {
		return nil
	}
	return assembleTask(cfg, input, ctx.BaseLevel, TaskTypeSpaceReclaim, 0)
}

// TtlCompactionSelector drains files created (CreatedAtUnix) more than
// TTLSeconds ago, independent of the priority scorer, for the same reason space
// reclaim is: an expired file's data is no longer valid to serve regardless
// of how the tree is currently shaped.
//
// Reference: original_source/level_selector.rs's TtlCompactionSelector.
type TtlCompactionSelector struct {
	core       *dynamicLevelCore
	ttlSeconds int64
	nowUnix    func() int64
	state      reconfigState
}

// NewTtlCompactionSelector builds a selector over cfg with the given TTL. A
// nil nowUnix falls back to the wall clock.
func NewTtlCompactionSelector(cfg *lsm.CompactionConfig, ttlSeconds int64, nowUnix func() int64) *TtlCompactionSelector {
	return &TtlCompactionSelector{core: newDynamicLevelCore(cfg), ttlSeconds: ttlSeconds, nowUnix: nowUnix}
}

func (s *TtlCompactionSelector) Name() string     { return "ttl_reclaim" }
func (s *TtlCompactionSelector) TaskType() TaskType { return TaskTypeTTL }

func (s *TtlCompactionSelector) TryUpdate(option SelectorOption) {
	if option.Kind != OptionTtl {
		panic("compaction: TtlCompactionSelector.TryUpdate given a non-ttl option")
	}
	s.state = stateReconfiguring
	if option.Config != nil && !s.core.config.Equal(option.Config) {
		s.core = newDynamicLevelCore(option.Config)
	}
	s.ttlSeconds = option.TTLSeconds
	s.nowUnix = option.TTLNowUnix
	s.state = stateConfigured
}

func (s *TtlCompactionSelector) PickCompaction(taskID uint64, levels *lsm.Levels, handlers []*LevelHandler, stats *LocalSelectorStatistic) *CompactionTask {
	cfg := s.core.config
	ctx := s.core.CalculateLevelBaseSize(levels)

	picker := &Picker{Kind: KindTTL, Config: cfg, TTLSeconds: s.ttlSeconds, TTLNowUnix: s.nowUnix}
	pickerStats := &LocalPickerStatistic{}
	input := picker.Pick(levels, handlers, pickerStats)
	if input == nil {
		if stats != nil {
			stats.SkipPicker = append(stats.SkipPicker, SkippedCandidate{Stats: *pickerStats})
		}
		return nil
	}
	if !reserveInput(handlers, taskID, input) {
		return nil
	}
	return assembleTask(cfg, input, ctx.BaseLevel, TaskTypeTTL, 0)
}
