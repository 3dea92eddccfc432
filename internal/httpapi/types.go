package httpapi

import (
	"encoding/json"
	"math"

	"stratviz/internal/chart"
	"stratviz/internal/domain"
	"stratviz/internal/metrics"
)

// jsonFloat marshals non-finite values as null, which encoding/json cannot
// represent otherwise. A zero-loss run has a profit factor of +Inf.
type jsonFloat float64

// MarshalJSON implements json.Marshaler.
func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

// ChartResponse pairs a selection with the chart composed from it.
type ChartResponse struct {
	Selection domain.Selection `json:"selection"`
	Chart     chart.Spec       `json:"chart"`
}

// RunJSON is one metrics catalog entry, with report-style formatted fields
// alongside the raw numbers.
type RunJSON struct {
	domain.PerformanceMetrics
	ProfitFactor     jsonFloat `json:"profit_factor"` // shadows the embedded field for Inf-safe encoding
	TotalReturnText  string    `json:"total_return_text"`
	AnnualReturnText string    `json:"annual_return_text"`
	MaxDrawdownText  string    `json:"max_drawdown_text"`
	WinRateText      string    `json:"win_rate_text"`
	ProfitFactorText string    `json:"profit_factor_text"`
	AvgTradePnLText  string    `json:"avg_trade_pnl_text"`
}

// RunsResponse lists persisted metrics records.
type RunsResponse struct {
	Runs []RunJSON `json:"runs"`
}

// convertRun attaches formatted report fields to a metrics record.
func convertRun(m domain.PerformanceMetrics) RunJSON {
	return RunJSON{
		PerformanceMetrics: m,
		ProfitFactor:       jsonFloat(m.ProfitFactor),
		TotalReturnText:    metrics.Percent(m.TotalReturn),
		AnnualReturnText:   metrics.Percent(m.AnnualReturn),
		MaxDrawdownText:    metrics.Percent(m.MaxDrawdown),
		WinRateText:        metrics.Percent(m.WinRate),
		ProfitFactorText:   metrics.Ratio(m.ProfitFactor),
		AvgTradePnLText:    metrics.Currency(m.AvgTradePnL),
	}
}
