// Batch tool: analyze every configured (strategy, data) backtest run.
//
// For each pair it reads the engine's result dump from the results
// directory, computes the performance metrics, and writes the analysis
// report, the metrics catalog row, and the trade-record tables.
//
// Usage:
//
//	go run cmd/stratviz-analyze/main.go
package main

import (
	"context"
	"log"
	"os"
	"sort"

	"stratviz/internal/analyze"
	"stratviz/internal/config"
	"stratviz/internal/export"
	"stratviz/internal/store"
	"stratviz/internal/util"
)

func main() {
	cfgPath := "config/stratviz.yaml"
	if p := os.Getenv("STRATVIZ_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)

	var catalog store.MetricsStore
	if cfg.Storage.SQLitePath != "" {
		db, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening metrics catalog: %v", err)
		}
		defer db.Close()
		catalog = db
	}

	tables := store.NewParquetStore(cfg.Storage.VizDataDir)
	runner := &analyze.Runner{
		ResultsDir: cfg.Storage.ResultsDir,
		Report:     store.NewCSVReport(cfg.Storage.OutputDir),
		Catalog:    catalog,
		Exporter:   export.NewExporter(cfg.Storage.OutputDir, tables),
		Log:        logger,
	}

	pairs := analyze.Pairs(sortedKeys(cfg.Strategies), sortedKeys(cfg.DataFiles))
	if len(pairs) == 0 {
		log.Fatal("no strategies or data files configured")
	}

	s := runner.RunAll(context.Background(), pairs)
	logger.Info("analysis batch complete", "ok", s.OK, "failed", s.Failed)
	if s.Failed > 0 {
		os.Exit(1)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
