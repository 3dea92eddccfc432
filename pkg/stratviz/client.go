// Package stratviz provides a Go SDK for the stratviz viewer API.
package stratviz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Selection identifies what the viewer session is currently displaying.
type Selection struct {
	Strategy  string `json:"strategy"`
	Timeframe string `json:"timeframe"`
	Benchmark string `json:"benchmark"`
	Target    string `json:"target"`
}

// ChartResponse pairs a selection with the chart composed from it. The chart
// spec is passed through undecoded so callers can hand it straight to a
// renderer.
type ChartResponse struct {
	Selection Selection       `json:"selection"`
	Chart     json.RawMessage `json:"chart"`
}

// Options enumerates the choices the server offers for each selection field.
type Options struct {
	Strategies []string `json:"strategies"`
	Timeframes []string `json:"timeframes"`
	Targets    []string `json:"targets"`
	Benchmarks []string `json:"benchmarks"`
}

// Run is one persisted performance metrics record.
type Run struct {
	Strategy         string   `json:"strategy"`
	Data             string   `json:"data"`
	TotalReturn      float64  `json:"total_return"`
	AnnualReturn     float64  `json:"annual_return"`
	SharpeRatio      float64  `json:"sharpe_ratio"`
	MaxDrawdown      float64  `json:"max_drawdown"`
	MaxDrawdownLen   int      `json:"max_drawdown_len"`
	TotalTrades      int      `json:"total_trades"`
	WinningTrades    int      `json:"winning_trades"`
	LosingTrades     int      `json:"losing_trades"`
	WinRate          float64  `json:"win_rate"`
	ProfitFactor     *float64 `json:"profit_factor"` // nil when infinite
	AvgTradePnL      float64  `json:"avg_trade_pnl"`
	MaxWinStreak     int      `json:"max_win_streak"`
	MaxLossStreak    int      `json:"max_loss_streak"`
	TotalReturnText  string   `json:"total_return_text"`
	AnnualReturnText string   `json:"annual_return_text"`
	MaxDrawdownText  string   `json:"max_drawdown_text"`
	WinRateText      string   `json:"win_rate_text"`
	ProfitFactorText string   `json:"profit_factor_text"`
	AvgTradePnLText  string   `json:"avg_trade_pnl_text"`
}

// Client provides a Go SDK for interacting with the stratviz-viewer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new stratviz API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetChart composes a chart for the given selection. Empty fields fall back
// to the server's current selection.
func (c *Client) GetChart(ctx context.Context, sel Selection) (*ChartResponse, error) {
	q := url.Values{}
	if sel.Strategy != "" {
		q.Set("strategy", sel.Strategy)
	}
	if sel.Timeframe != "" {
		q.Set("timeframe", sel.Timeframe)
	}
	if sel.Benchmark != "" {
		q.Set("benchmark", sel.Benchmark)
	}
	if sel.Target != "" {
		q.Set("target", sel.Target)
	}

	path := "/api/chart"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ChartResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSelection retrieves the current session selection and its chart.
func (c *Client) GetSelection(ctx context.Context) (*ChartResponse, error) {
	var resp ChartResponse
	if err := c.get(ctx, "/api/selection", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetSelection changes one selection field and returns the recomposed chart.
func (c *Client) SetSelection(ctx context.Context, field, value string) (*ChartResponse, error) {
	body, err := json.Marshal(map[string]string{"value": value})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/selection/"+url.PathEscape(field), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp ChartResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOptions retrieves the selection choices the server offers.
func (c *Client) GetOptions(ctx context.Context) (*Options, error) {
	var opts Options
	if err := c.get(ctx, "/api/options", &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// ListRuns retrieves all persisted performance metrics records.
func (c *Client) ListRuns(ctx context.Context) ([]Run, error) {
	var resp struct {
		Runs []Run `json:"runs"`
	}
	if err := c.get(ctx, "/api/runs", &resp); err != nil {
		return nil, err
	}
	return resp.Runs, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", req.Method, req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
