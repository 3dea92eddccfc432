// Package metrics derives normalized performance metrics from a typed
// backtest result. All computations are pure; persistence is the caller's
// concern.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"stratviz/internal/domain"
	"stratviz/internal/result"
)

// ErrSpan reports a backtest span of zero or negative duration, which makes
// annualization undefined. The calculator refuses to produce a record for
// such input instead of dividing by zero.
var ErrSpan = errors.New("metrics: backtest span must be positive")

// Compute derives a PerformanceMetrics record from a typed backtest result
// and the span of the run in years.
//
// Degenerate arithmetic never surfaces as an error:
//   - zero trades yield winRate = 0 and profitFactor = 0
//   - zero losing P&L yields profitFactor = +Inf when there are winners,
//     0 otherwise
//   - totalReturn <= -1 (total wipeout) yields annualReturn = -1 rather than
//     the logarithm of a non-positive number
func Compute(r *result.Result, spanYears float64) (domain.PerformanceMetrics, error) {
	if spanYears <= 0 {
		return domain.PerformanceMetrics{}, fmt.Errorf("%w: %.4f years", ErrSpan, spanYears)
	}

	totalReturn := r.Returns.RTot

	annualReturn := -1.0
	if totalReturn > -1 {
		annualReturn = math.Log(1+totalReturn) / spanYears
	}

	totalTrades := r.Trades.Total.Total
	winningTrades := r.Trades.Won.Total
	losingTrades := r.Trades.Lost.Total

	winRate := 0.0
	if totalTrades > 0 {
		winRate = float64(winningTrades) / float64(totalTrades)
	}

	profitFactor := 0.0
	switch lostPnL := r.Trades.Lost.PnL.Total; {
	case lostPnL != 0:
		profitFactor = math.Abs(r.Trades.Won.PnL.Total / lostPnL)
	case winningTrades > 0:
		profitFactor = math.Inf(1)
	}

	return domain.PerformanceMetrics{
		Strategy:       r.Strategy,
		Data:           r.Data,
		SharpeRatio:    r.Sharpe.Ratio,
		TotalReturn:    totalReturn,
		AnnualReturn:   annualReturn,
		MaxDrawdown:    r.Drawdown.Max.Drawdown,
		MaxDrawdownLen: r.Drawdown.Max.Len,
		TotalTrades:    totalTrades,
		WinningTrades:  winningTrades,
		LosingTrades:   losingTrades,
		WinRate:        winRate,
		ProfitFactor:   profitFactor,
		AvgTradePnL:    r.Trades.PnL.Average,
		MaxWinStreak:   r.Trades.Streak.Won.Longest,
		MaxLossStreak:  r.Trades.Streak.Lost.Longest,
	}, nil
}

// Percent formats a ratio as a percentage with two decimal places.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// Currency formats a dollar amount with two decimal places.
func Currency(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// Ratio formats a decimal ratio with two decimal places.
func Ratio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
