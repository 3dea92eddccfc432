// Package store defines storage interfaces for persisting and retrieving
// trade-record tables and performance metrics, with Parquet, CSV, and SQLite
// implementations.
package store

import (
	"context"

	"stratviz/internal/domain"
)

// TradeTableStore persists and retrieves ordered trade-record tables keyed
// by (strategy-or-benchmark, timeframe, target).
type TradeTableStore interface {
	// WriteTable persists the events as the table identified by key,
	// replacing any existing table. The destination directory is created
	// if it does not exist.
	WriteTable(ctx context.Context, key domain.TableKey, events []domain.TradeEvent) error

	// ReadTable returns the ordered events for key. A table that was never
	// written reads as an empty slice, not an error.
	ReadTable(ctx context.Context, key domain.TableKey) ([]domain.TradeEvent, error)
}

// MetricsStore persists and retrieves performance metrics records.
type MetricsStore interface {
	// SaveMetrics appends one metrics record for a (strategy, data) pair.
	SaveMetrics(ctx context.Context, m domain.PerformanceMetrics) error

	// ListMetrics returns all persisted metrics records, most recent first.
	ListMetrics(ctx context.Context) ([]domain.PerformanceMetrics, error)
}
