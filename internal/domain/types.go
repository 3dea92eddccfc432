// Package domain defines the core data types shared across the stratviz
// platform: trade lifecycle events, viewer selections, and performance
// metrics records.
package domain

import (
	"time"
)

// TradeAction tags a trade lifecycle event.
type TradeAction string

// Trade lifecycle actions recorded by the simulation engine.
const (
	ActionOpen  TradeAction = "open"
	ActionAdd   TradeAction = "add"
	ActionClose TradeAction = "close"
)

// Timeframe identifiers accepted at the viewer boundary. The set is open:
// unknown values pass through to lookup and resolve to an empty table.
const (
	Timeframe5Min   = "5min"
	Timeframe240Min = "240min"
)

// Benchmark identifiers with special meaning. Any instrument identifier is
// also a valid benchmark.
const (
	BenchmarkBuyAndHold = "buyandhold"
	BenchmarkTreasury   = "treasury"
)

// TradeEvent is one row of a trade-record table: a trade lifecycle event
// with the instrument OHLC snapshot, running equity, and capital utilization
// at that timestamp. Events are immutable once written.
type TradeEvent struct {
	Timestamp   time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Action      TradeAction
	Equity      float64
	Utilization float64 // fraction of capital deployed; may exceed 1 under leverage
}

// TableKey identifies one persisted trade-record table.
type TableKey struct {
	ID        string // strategy or benchmark identifier
	Timeframe string
	Target    string
}

// Selection is the current viewer state: the parameters driving chart
// recomputation. Ephemeral per session, mutated only by explicit user input.
type Selection struct {
	Strategy  string `json:"strategy"`
	Timeframe string `json:"timeframe"`
	Benchmark string `json:"benchmark"`
	Target    string `json:"target"`
}

// StrategyKey returns the trade-record table key for the selection's strategy.
func (s Selection) StrategyKey() TableKey {
	return TableKey{ID: s.Strategy, Timeframe: s.Timeframe, Target: s.Target}
}

// BenchmarkKey returns the trade-record table key for the selection's benchmark.
func (s Selection) BenchmarkKey() TableKey {
	return TableKey{ID: s.Benchmark, Timeframe: s.Timeframe, Target: s.Target}
}

// PerformanceMetrics is the fixed-schema summary record computed from one
// completed backtest run. Created once per (strategy, data) pair; immutable.
type PerformanceMetrics struct {
	Strategy       string  `json:"strategy"`
	Data           string  `json:"data"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	TotalReturn    float64 `json:"total_return"`
	AnnualReturn   float64 `json:"annual_return"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	MaxDrawdownLen int     `json:"max_drawdown_len"`
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	AvgTradePnL    float64 `json:"avg_trade_pnl"`
	MaxWinStreak   int     `json:"max_win_streak"`
	MaxLossStreak  int     `json:"max_loss_streak"`
}
