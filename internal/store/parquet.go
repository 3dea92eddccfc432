package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"stratviz/internal/domain"
)

// Compile-time interface check.
var _ TradeTableStore = (*ParquetStore)(nil)

// ParquetStore implements TradeTableStore using Parquet files on disk, one
// file per (id, timeframe, target) table.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// EventRecord is the Parquet schema for one trade-record row. Column order
// is fixed: timestamp, OHLC, action, equity, utilization.
type EventRecord struct {
	Timestamp   int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open        float64 `parquet:"open"`
	High        float64 `parquet:"high"`
	Low         float64 `parquet:"low"`
	Close       float64 `parquet:"close"`
	Action      string  `parquet:"action"`
	Equity      float64 `parquet:"equity"`
	Utilization float64 `parquet:"utilization"`
}

// WriteTable writes the events as the lookup table for key:
//
//	<DataDir>/<id>_<timeframe>_<target>_all_trades.parquet
//
// Any existing table for the key is replaced.
func (s *ParquetStore) WriteTable(_ context.Context, key domain.TableKey, events []domain.TradeEvent) error {
	if err := WriteEventsFile(s.tablePath(key), events); err != nil {
		return fmt.Errorf("writing table %s_%s_%s: %w", key.ID, key.Timeframe, key.Target, err)
	}
	return nil
}

// ReadTable reads the lookup table for key. A missing file yields an empty
// table.
func (s *ParquetStore) ReadTable(_ context.Context, key domain.TableKey) ([]domain.TradeEvent, error) {
	return ReadEventsFile(s.tablePath(key))
}

// tablePath returns the filesystem path for a trade-record lookup table.
func (s *ParquetStore) tablePath(key domain.TableKey) string {
	name := fmt.Sprintf("%s_%s_%s_all_trades.parquet", key.ID, key.Timeframe, key.Target)
	return filepath.Join(s.DataDir, name)
}

// Records converts events to on-disk rows, stably ordered by timestamp so
// tables always satisfy the non-decreasing timestamp invariant.
func Records(events []domain.TradeEvent) []EventRecord {
	records := make([]EventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, EventRecord{
			Timestamp:   e.Timestamp.UnixMilli(),
			Open:        e.Open,
			High:        e.High,
			Low:         e.Low,
			Close:       e.Close,
			Action:      string(e.Action),
			Equity:      e.Equity,
			Utilization: e.Utilization,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records
}

// WriteEventsFile writes events to a single Parquet file, creating parent
// directories as needed.
func WriteEventsFile(path string, events []domain.TradeEvent) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, Records(events))
}

// ReadEventsFile reads events from a single Parquet file. A missing file
// yields an empty slice, not an error.
func ReadEventsFile(path string) ([]domain.TradeEvent, error) {
	records, err := parquet.ReadFile[EventRecord](path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	events := make([]domain.TradeEvent, 0, len(records))
	for _, r := range records {
		events = append(events, r.Event())
	}
	return events, nil
}

// Event converts the on-disk record back to a domain event.
func (r EventRecord) Event() domain.TradeEvent {
	return domain.TradeEvent{
		Timestamp:   time.UnixMilli(r.Timestamp).UTC(),
		Open:        r.Open,
		High:        r.High,
		Low:         r.Low,
		Close:       r.Close,
		Action:      domain.TradeAction(r.Action),
		Equity:      r.Equity,
		Utilization: r.Utilization,
	}
}
