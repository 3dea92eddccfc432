// Package analyze drives the offline analytics phase: for each completed
// (strategy, data) backtest run it derives performance metrics and persists
// the analysis report, the metrics catalog row, and the trade-record tables.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stratviz/internal/domain"
	"stratviz/internal/export"
	"stratviz/internal/metrics"
	"stratviz/internal/result"
	"stratviz/internal/store"
)

// Pair identifies one (strategy, data) run to analyze.
type Pair struct {
	Strategy string
	Data     string
}

// Summary reports how a batch of pairs fared. Failures never abort the
// batch: each pair is computed and persisted independently.
type Summary struct {
	OK     int
	Failed int
}

// Runner executes the analytics pipeline for completed runs.
type Runner struct {
	ResultsDir string
	Report     *store.CSVReport
	Catalog    store.MetricsStore // optional
	Exporter   *export.Exporter
	Log        *slog.Logger
}

// RunAll analyzes every pair in order. Errors are logged per pair and do not
// stop the remaining pairs.
func (r *Runner) RunAll(ctx context.Context, pairs []Pair) Summary {
	var s Summary
	for _, p := range pairs {
		if err := r.RunPair(ctx, p); err != nil {
			r.Log.Error("analyzing pair failed",
				"strategy", p.Strategy, "data", p.Data, "error", err)
			s.Failed++
			continue
		}
		s.OK++
	}
	return s
}

// RunPair analyzes a single (strategy, data) run: parse the engine's result
// dump, compute metrics, and persist all artifacts.
func (r *Runner) RunPair(ctx context.Context, p Pair) error {
	dump, err := os.ReadFile(r.dumpPath(p))
	if err != nil {
		return fmt.Errorf("reading result dump: %w", err)
	}

	rr, err := result.Parse(dump)
	if err != nil {
		return err
	}
	// The configured pair is authoritative for identity.
	rr.Strategy = p.Strategy
	rr.Data = p.Data

	m, err := metrics.Compute(&rr.Result, rr.SpanYears())
	if err != nil {
		return err
	}

	reportPath, err := r.Report.Write(m)
	if err != nil {
		return fmt.Errorf("writing analysis report: %w", err)
	}

	if r.Catalog != nil {
		if err := r.Catalog.SaveMetrics(ctx, m); err != nil {
			return fmt.Errorf("saving metrics record: %w", err)
		}
	}

	archivePath, err := r.Exporter.Persist(ctx, p.Strategy, p.Data, rr.Events)
	if err != nil {
		return err
	}

	// Data names follow the {timeframe}_{target} convention; runs outside it
	// still get their report and archive, just no viewer lookup table.
	if timeframe, target, ok := splitData(p.Data); ok {
		key := domain.TableKey{ID: p.Strategy, Timeframe: timeframe, Target: target}
		if err := r.Exporter.PersistLookup(ctx, key, rr.Events); err != nil {
			return fmt.Errorf("writing lookup table: %w", err)
		}
	} else {
		r.Log.Warn("data name not in {timeframe}_{target} form, skipping lookup table",
			"strategy", p.Strategy, "data", p.Data)
	}

	r.Log.Info("analyzed pair",
		"strategy", p.Strategy,
		"data", p.Data,
		"report", reportPath,
		"archive", archivePath,
		"total_trades", m.TotalTrades,
		"win_rate", m.WinRate)
	return nil
}

// dumpPath returns the expected location of the engine's result dump.
func (r *Runner) dumpPath(p Pair) string {
	return filepath.Join(r.ResultsDir, fmt.Sprintf("%s_%s_result.json", p.Strategy, p.Data))
}

// splitData splits a data name into (timeframe, target).
func splitData(data string) (string, string, bool) {
	timeframe, target, ok := strings.Cut(data, "_")
	if !ok || timeframe == "" || target == "" {
		return "", "", false
	}
	return timeframe, target, true
}

// Pairs expands the configured strategy and data-file sets into the full
// cross product, in stable order.
func Pairs(strategies []string, dataNames []string) []Pair {
	pairs := make([]Pair, 0, len(strategies)*len(dataNames))
	for _, s := range strategies {
		for _, d := range dataNames {
			pairs = append(pairs, Pair{Strategy: s, Data: d})
		}
	}
	return pairs
}
