// Package viewer owns the interactive session state: the current parameter
// selection and the chart composed from it. Each selection change is one
// atomic transition (two table lookups plus one composition) executed to
// completion before the next is accepted.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"stratviz/internal/chart"
	"stratviz/internal/domain"
	"stratviz/internal/store"
)

// Selection field names accepted by Set.
const (
	FieldStrategy  = "strategy"
	FieldTimeframe = "timeframe"
	FieldBenchmark = "benchmark"
	FieldTarget    = "target"
)

// ErrUnknownField reports a Set call naming a field that is not part of the
// selection. Field VALUES are never validated: unknown values pass through
// to lookup and resolve to the no-data chart.
var ErrUnknownField = errors.New("viewer: unknown selection field")

// Broadcaster pushes a recomposed chart to connected clients.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Controller holds the current Selection and recomputes the chart on every
// field change. The trade-record store is read-only during interactive use;
// a mutex serializes transitions in arrival order with no batching.
type Controller struct {
	tables store.TradeTableStore
	log    *slog.Logger

	mu   sync.Mutex
	sel  domain.Selection
	spec chart.Spec

	bc Broadcaster // optional
}

// NewController creates a Controller with the given initial selection and
// composes the initial chart.
func NewController(ctx context.Context, tables store.TradeTableStore, initial domain.Selection, log *slog.Logger) *Controller {
	c := &Controller{tables: tables, log: log, sel: initial}
	c.spec = c.compose(ctx, initial)
	return c
}

// AttachBroadcaster wires a broadcaster that receives the chart JSON after
// every transition.
func (c *Controller) AttachBroadcaster(bc Broadcaster) {
	c.mu.Lock()
	c.bc = bc
	c.mu.Unlock()
}

// Selection returns the current selection.
func (c *Controller) Selection() domain.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Spec returns the currently displayed chart.
func (c *Controller) Spec() chart.Spec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// Set applies one field change as one transition: the selection is updated
// and the chart synchronously recomposed, replacing the previous spec. The
// new spec is returned and broadcast to any attached clients.
func (c *Controller) Set(ctx context.Context, field, value string) (chart.Spec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case FieldStrategy:
		c.sel.Strategy = value
	case FieldTimeframe:
		c.sel.Timeframe = value
	case FieldBenchmark:
		c.sel.Benchmark = value
	case FieldTarget:
		c.sel.Target = value
	default:
		return chart.Spec{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	c.spec = c.compose(ctx, c.sel)
	c.log.Debug("selection transition",
		"field", field, "value", value, "empty", c.spec.Empty())

	if c.bc != nil {
		if payload, err := json.Marshal(c.spec); err == nil {
			c.bc.Broadcast(payload)
		}
	}
	return c.spec, nil
}

// compose performs the two lookups and composition for sel. Lookup failures
// degrade to the no-data chart instead of failing the session.
func (c *Controller) compose(ctx context.Context, sel domain.Selection) chart.Spec {
	strategyTable, err := c.tables.ReadTable(ctx, sel.StrategyKey())
	if err != nil {
		c.log.Warn("reading strategy table", "key", sel.StrategyKey(), "error", err)
		strategyTable = nil
	}
	benchmarkTable, err := c.tables.ReadTable(ctx, sel.BenchmarkKey())
	if err != nil {
		c.log.Warn("reading benchmark table", "key", sel.BenchmarkKey(), "error", err)
		benchmarkTable = nil
	}
	return chart.Compose(strategyTable, benchmarkTable, sel)
}

// ComposeFor performs a stateless composition for an arbitrary selection
// without touching the session state. Used by the one-shot chart endpoint.
func (c *Controller) ComposeFor(ctx context.Context, sel domain.Selection) chart.Spec {
	return c.compose(ctx, sel)
}
