// Package export serializes per-trade event ledgers into the persisted
// trade-record format. No transformation of event data occurs beyond
// tabular serialization.
package export

import (
	"context"
	"fmt"
	"path/filepath"

	"stratviz/internal/domain"
	"stratviz/internal/store"
)

// Exporter writes trade-record tables for a completed run: an archive copy
// under the run output directory and a lookup table consumed by the viewer.
type Exporter struct {
	OutDir string
	Tables store.TradeTableStore
}

// NewExporter creates an Exporter writing archives under outDir and lookup
// tables through the given store.
func NewExporter(outDir string, tables store.TradeTableStore) *Exporter {
	return &Exporter{OutDir: outDir, Tables: tables}
}

// Rows serializes events into tabular rows in the fixed column order:
// timestamp, OHLC, action, equity, utilization.
func (e *Exporter) Rows(events []domain.TradeEvent) []store.EventRecord {
	return store.Records(events)
}

// Persist writes the archive table for a (strategy, data) pair:
//
//	<OutDir>/<strategy>_<data>.parquet
//
// The output directory is created if it does not exist; an existing table is
// overwritten. It returns the written path.
func (e *Exporter) Persist(_ context.Context, strategy, data string, events []domain.TradeEvent) (string, error) {
	path := filepath.Join(e.OutDir, fmt.Sprintf("%s_%s.parquet", strategy, data))
	if err := store.WriteEventsFile(path, events); err != nil {
		return "", fmt.Errorf("persisting trade records for %s/%s: %w", strategy, data, err)
	}
	return path, nil
}

// PersistLookup writes the viewer lookup table for key through the
// trade-table store.
func (e *Exporter) PersistLookup(ctx context.Context, key domain.TableKey, events []domain.TradeEvent) error {
	return e.Tables.WriteTable(ctx, key, events)
}
