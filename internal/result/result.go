// Package result defines the typed backtest result consumed by the analytics
// layer, and the adapter that populates it from the simulation engine's
// analyzer dump. Every analyzer field is optional-with-default: downstream
// code operates on guaranteed-present fields and never probes for existence.
package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stratviz/internal/domain"
)

// ErrSchema reports a result dump that lacks an expected analyzer namespace
// entirely. This is a caller contract violation, not an empty analysis, and
// must fail loudly rather than default silently.
var ErrSchema = errors.New("result: analyzer namespace missing")

// Analyzer namespaces every result dump must carry, even when empty.
var requiredAnalyzers = []string{"sharpe", "drawdown", "returns", "trades"}

// SharpeAnalysis holds the Sharpe ratio analyzer output.
type SharpeAnalysis struct {
	Ratio float64 `json:"sharperatio"`
}

// DrawdownMax is the "max" bucket of the drawdown analyzer.
type DrawdownMax struct {
	Drawdown float64 `json:"drawdown"`
	Len      int     `json:"len"`
}

// DrawdownAnalysis holds the drawdown analyzer output.
type DrawdownAnalysis struct {
	Max DrawdownMax `json:"max"`
}

// ReturnsAnalysis holds the returns analyzer output. RTot is the
// log-compounded total return over the full span.
type ReturnsAnalysis struct {
	RTot float64 `json:"rtot"`
}

// PnLTotal is a nested profit-and-loss total.
type PnLTotal struct {
	Total float64 `json:"total"`
}

// SideBucket aggregates one side (won or lost) of the trade analyzer.
type SideBucket struct {
	Total int      `json:"total"`
	PnL   PnLTotal `json:"pnl"`
}

// StreakSide holds the longest run for one side of the streak bucket.
type StreakSide struct {
	Longest int `json:"longest"`
}

// StreakBucket holds consecutive win/loss runs. Both sides default to zero
// together when the bucket is absent from the dump.
type StreakBucket struct {
	Won  StreakSide `json:"won"`
	Lost StreakSide `json:"lost"`
}

// TradeAnalysis holds the trade analyzer output.
type TradeAnalysis struct {
	Total struct {
		Total int `json:"total"`
	} `json:"total"`
	Won  SideBucket `json:"won"`
	Lost SideBucket `json:"lost"`
	PnL  struct {
		Average float64 `json:"average"`
	} `json:"pnl"`
	Streak StreakBucket `json:"streak"`
}

// Result is the typed view of one completed backtest run's analyses.
type Result struct {
	Strategy  string
	Data      string
	StartDate time.Time
	EndDate   time.Time

	Sharpe   SharpeAnalysis
	Drawdown DrawdownAnalysis
	Returns  ReturnsAnalysis
	Trades   TradeAnalysis
}

// SpanYears returns the backtest span in years, using the actual date range.
func (r *Result) SpanYears() float64 {
	days := r.EndDate.Sub(r.StartDate).Hours() / 24
	return days / 365.25
}

// RunResult bundles the typed analyses with the per-event trade ledger
// recorded during the run.
type RunResult struct {
	Result
	Events []domain.TradeEvent
}

// eventJSON is the wire form of one trade ledger row.
type eventJSON struct {
	Timestamp   time.Time `json:"timestamp"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Action      string    `json:"action"`
	Equity      float64   `json:"equity"`
	Utilization float64   `json:"utilization"`
}

// dumpJSON is the top-level wire form of the engine's result dump.
type dumpJSON struct {
	Strategy  string                     `json:"strategy"`
	Data      string                     `json:"data"`
	StartDate string                     `json:"start_date"`
	EndDate   string                     `json:"end_date"`
	Analyzers map[string]json.RawMessage `json:"analyzers"`
	TradeLog  []eventJSON                `json:"trade_log"`
}

// Parse decodes a result dump produced by the simulation engine. A dump whose
// analyzers map lacks any of the required namespaces fails with ErrSchema;
// namespaces that are present but empty decode to zero-valued analyses.
func Parse(data []byte) (*RunResult, error) {
	var dump dumpJSON
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decoding result dump: %w", err)
	}

	if dump.Analyzers == nil {
		return nil, fmt.Errorf("%w: no analyzers object", ErrSchema)
	}
	for _, name := range requiredAnalyzers {
		if _, ok := dump.Analyzers[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrSchema, name)
		}
	}

	rr := &RunResult{}
	rr.Strategy = dump.Strategy
	rr.Data = dump.Data

	var err error
	if rr.StartDate, err = parseDate(dump.StartDate); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if rr.EndDate, err = parseDate(dump.EndDate); err != nil {
		return nil, fmt.Errorf("parsing end_date: %w", err)
	}

	if err := decodeAnalyzer(dump.Analyzers["sharpe"], &rr.Sharpe); err != nil {
		return nil, fmt.Errorf("decoding sharpe analyzer: %w", err)
	}
	if err := decodeAnalyzer(dump.Analyzers["drawdown"], &rr.Drawdown); err != nil {
		return nil, fmt.Errorf("decoding drawdown analyzer: %w", err)
	}
	if err := decodeAnalyzer(dump.Analyzers["returns"], &rr.Returns); err != nil {
		return nil, fmt.Errorf("decoding returns analyzer: %w", err)
	}
	if err := decodeAnalyzer(dump.Analyzers["trades"], &rr.Trades); err != nil {
		return nil, fmt.Errorf("decoding trades analyzer: %w", err)
	}

	rr.Events = make([]domain.TradeEvent, 0, len(dump.TradeLog))
	for _, e := range dump.TradeLog {
		rr.Events = append(rr.Events, domain.TradeEvent{
			Timestamp:   e.Timestamp,
			Open:        e.Open,
			High:        e.High,
			Low:         e.Low,
			Close:       e.Close,
			Action:      domain.TradeAction(e.Action),
			Equity:      e.Equity,
			Utilization: e.Utilization,
		})
	}

	return rr, nil
}

// decodeAnalyzer unmarshals one namespace. JSON null decodes to the zero
// analysis, matching the empty-but-present contract.
func decodeAnalyzer(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// parseDate accepts date-only or RFC3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
