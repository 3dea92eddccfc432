package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"stratviz/internal/domain"
	"stratviz/internal/metrics"
)

// analysisHeader is the fixed column order of the persisted analysis table.
var analysisHeader = []string{
	"strategy",
	"data",
	"sharpe_ratio",
	"total_return",
	"annual_return",
	"max_drawdown",
	"max_drawdown_len",
	"total_trades",
	"winning_trades",
	"losing_trades",
	"win_rate",
	"profit_factor",
	"avg_trade_pnl",
	"max_win_streak",
	"max_loss_streak",
}

// CSVReport writes the human-readable analysis table for one run:
// percentage fields as text with two decimals and a trailing "%", the
// average trade P&L with a "$" prefix, counts as integers.
type CSVReport struct {
	Dir string
}

// NewCSVReport creates a CSVReport rooted at the given output directory.
func NewCSVReport(dir string) *CSVReport {
	return &CSVReport{Dir: dir}
}

// Write persists m as <Dir>/<strategy>_<data>_analysis.csv (header plus one
// row), creating the directory if needed. It returns the written path.
func (r *CSVReport) Write(m domain.PerformanceMetrics) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(r.Dir, fmt.Sprintf("%s_%s_analysis.csv", m.Strategy, m.Data))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	if err := w.Write(analysisHeader); err != nil {
		f.Close()
		return "", err
	}
	if err := w.Write(analysisRow(m)); err != nil {
		f.Close()
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// analysisRow formats one metrics record in header column order.
func analysisRow(m domain.PerformanceMetrics) []string {
	return []string{
		m.Strategy,
		m.Data,
		metrics.Ratio(m.SharpeRatio),
		metrics.Percent(m.TotalReturn),
		metrics.Percent(m.AnnualReturn),
		metrics.Percent(m.MaxDrawdown),
		strconv.Itoa(m.MaxDrawdownLen),
		strconv.Itoa(m.TotalTrades),
		strconv.Itoa(m.WinningTrades),
		strconv.Itoa(m.LosingTrades),
		metrics.Percent(m.WinRate),
		metrics.Ratio(m.ProfitFactor),
		metrics.Currency(m.AvgTradePnL),
		strconv.Itoa(m.MaxWinStreak),
		strconv.Itoa(m.MaxLossStreak),
	}
}
