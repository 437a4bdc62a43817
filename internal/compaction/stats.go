package compaction

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PickerAbortReason records why a picker declined a scored candidate.
type PickerAbortReason string

const (
	AbortNone              PickerAbortReason = ""
	AbortInsufficientFiles PickerAbortReason = "insufficient_files"
	AbortReservationRace   PickerAbortReason = "reservation_race"
	AbortNoOverlap         PickerAbortReason = "no_candidates"
	AbortBelowThreshold    PickerAbortReason = "below_threshold"
)

// LocalPickerStatistic is filled in by a single picker invocation: how many
// files it examined, how many bytes it considered, and why it gave up (if
// it did).
type LocalPickerStatistic struct {
	FilesExamined int
	BytesConsidered uint64
	AbortReason     PickerAbortReason
}

// SkippedCandidate records one scored candidate the dynamic selector tried
// and abandoned, for observability.
type SkippedCandidate struct {
	SelectLevel int
	TargetLevel int
	Stats       LocalPickerStatistic
}

// LocalSelectorStatistic accumulates over one tick of the dynamic selector:
// every skipped picker plus any saturation anomalies the scorer flagged
// (see the "open questions" in the expanded design around unsigned
// underflow in the idle-file-count and L0-effective-size computations).
type LocalSelectorStatistic struct {
	SkipPicker []SkippedCandidate
	Anomalies  []string
}

// RecordAnomaly appends a human-readable anomaly description. Safe to call
// on a nil receiver (tests and non-dynamic selectors that don't care about
// observability can pass nil).
func (s *LocalSelectorStatistic) RecordAnomaly(msg string) {
	if s == nil {
		return
	}
	s.Anomalies = append(s.Anomalies, msg)
}

// Metrics exports per-tick selector statistics as Prometheus gauges. One
// Metrics is constructed per store and reused across ticks; Observe should
// be called once per completed tick.
//
// Reference: _examples/miretskiy-rollingstone/cmd/server/prometheus.go's
// promMetrics struct-of-gauges idiom (prometheus.NewGauge +
// prometheus.MustRegister).
type Metrics struct {
	mu sync.Mutex

	tasksProduced   prometheus.Counter
	ticksEmpty      prometheus.Counter
	skippedPickers  prometheus.Counter
	anomaliesTotal  prometheus.Counter
	lastTaskScore   prometheus.Gauge
	baseLevel       prometheus.Gauge
}

// NewMetrics builds and registers the gauges/counters on reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// registry across parallel test runs.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tasksProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compactsel_tasks_produced_total",
			Help: "Number of compaction tasks produced across all ticks.",
		}),
		ticksEmpty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compactsel_ticks_empty_total",
			Help: "Number of ticks that produced no task.",
		}),
		skippedPickers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compactsel_skipped_pickers_total",
			Help: "Number of scored candidates whose picker declined to produce an input.",
		}),
		anomaliesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compactsel_saturation_anomalies_total",
			Help: "Number of saturating-subtraction anomalies flagged by the scorer.",
		}),
		lastTaskScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "compactsel_last_task_score",
			Help: "Score of the most recently produced compaction task.",
		}),
		baseLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "compactsel_base_level",
			Help: "Current base level computed by the sizing engine.",
		}),
	}
	reg.MustRegister(m.tasksProduced, m.ticksEmpty, m.skippedPickers, m.anomaliesTotal, m.lastTaskScore, m.baseLevel)
	return m
}

// Observe records the outcome of one tick.
func (m *Metrics) Observe(task *CompactionTask, ctx *SelectContext, stats *LocalSelectorStatistic) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task != nil {
		m.tasksProduced.Inc()
		m.lastTaskScore.Set(float64(task.Score))
	} else {
		m.ticksEmpty.Inc()
	}
	if ctx != nil {
		m.baseLevel.Set(float64(ctx.BaseLevel))
	}
	if stats != nil {
		m.skippedPickers.Add(float64(len(stats.SkipPicker)))
		m.anomaliesTotal.Add(float64(len(stats.Anomalies)))
	}
}
