// Package main provides the compactsel CLI: a reference driver that loads a
// compaction config, runs the dynamic-level selector against an empty
// in-memory snapshot (no snapshot is loaded from disk), and prints (or
// serves over Prometheus) the tasks it would schedule.
//
// Usage:
//
//	compactsel --config=<path> [--metrics-addr=:9090] [--once]
//
// Reference: RocksDB v10.7.5 tools/ldb_tool.cc for the flag-driven CLI
// shape; this store's own cmd/ldb carried no selector loop of its own.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hummockdb/compactsel/internal/compaction"
	"github.com/hummockdb/compactsel/internal/config"
	"github.com/hummockdb/compactsel/internal/logging"
	"github.com/hummockdb/compactsel/internal/lsm"
)

var (
	configPath  = flag.String("config", "", "Path to the scheduler YAML config (required)")
	metricsAddr = flag.String("metrics-addr", "", "If set, serve Prometheus metrics on this address instead of exiting after one tick")
	tickEvery   = flag.Duration("tick-every", time.Second, "Interval between scheduling ticks when --metrics-addr is set")
	once        = flag.Bool("once", false, "Run a single tick against an empty snapshot and print the result, ignoring --metrics-addr")
	help        = flag.Bool("help", false, "Print help")
)

func main() {
	flag.Parse()

	if *help || *configPath == "" {
		printUsage()
		if *configPath == "" && !*help {
			os.Exit(1)
		}
		return
	}

	doc, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg, err := doc.ToCompactionConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid config: %v\n", err)
		os.Exit(1)
	}

	level := logging.LevelInfo
	if doc.Logging.Level == "debug" {
		level = logging.LevelDebug
	}
	logger := logging.NewDefaultLogger(level)

	selector := compaction.NewDynamicLevelSelector(cfg, logger)
	handlers := compaction.NewLevelHandlers(cfg.MaxLevel)

	if *once || *metricsAddr == "" {
		runOnce(selector, handlers, cfg)
		return
	}

	reg := prometheus.NewRegistry()
	metrics := compaction.NewMetrics(reg)
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go runLoop(selector, handlers, metrics, *tickEvery)

	fmt.Printf("serving metrics on %s/metrics\n", *metricsAddr)
	if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: metrics server: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("compactsel - LSM-tree compaction selector driver")
	fmt.Println()
	fmt.Println("Usage: compactsel --config=<path> [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
}

// runOnce ticks the selector once against an empty snapshot (no files
// anywhere) and prints whether a task was produced. A real deployment wires
// levels from its own manifest/version layer instead of an empty snapshot;
// this exists to let an operator sanity-check a config file's shape before
// wiring it into that layer.
func runOnce(selector *compaction.DynamicLevelSelector, handlers []*compaction.LevelHandler, cfg *lsm.CompactionConfig) {
	levels := lsm.NewLevels(lsm.NewL0(nil), nil)
	stats := &compaction.LocalSelectorStatistic{}
	task := selector.PickCompaction(1, levels, handlers, stats)
	if task == nil {
		fmt.Println("no task produced")
	} else {
		fmt.Printf("task: type=%s base_level=%d score=%d target_file_size=%d compression=%s\n",
			task.Type, task.BaseLevel, task.Score, task.TargetFileSize, task.CompressionAlgorithm)
	}

	sample := lsm.NewSstFileFixture(1, 0, []byte("a"), []byte("z"), cfg.TargetFileSizeBase)
	sample.StampFooterChecksum(cfg.ChecksumType)
	fmt.Printf("footer checksum self-check: type=%s verified=%v\n", cfg.ChecksumType, sample.VerifyFooterChecksum())
}

func runLoop(selector *compaction.DynamicLevelSelector, handlers []*compaction.LevelHandler, metrics *compaction.Metrics, every time.Duration) {
	var taskID uint64
	levels := lsm.NewLevels(lsm.NewL0(nil), nil)
	for range time.Tick(every) {
		taskID++
		stats := &compaction.LocalSelectorStatistic{}
		task := selector.PickCompaction(taskID, levels, handlers, stats)
		metrics.Observe(task, nil, stats)
	}
}
