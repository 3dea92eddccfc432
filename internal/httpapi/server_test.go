package httpapi

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"stratviz/internal/chart"
	"stratviz/internal/domain"
	"stratviz/internal/store"
	"stratviz/internal/util"
	"stratviz/internal/viewer"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	log := util.NewLogger("error")
	ctx := context.Background()

	ps := store.NewParquetStore(t.TempDir())
	base := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	strategyEvents := []domain.TradeEvent{
		{Timestamp: base, Open: 100, High: 110, Low: 95, Close: 105, Action: domain.ActionOpen, Equity: 10000, Utilization: 0.5},
		{Timestamp: base.Add(4 * time.Hour), Open: 105, High: 115, Low: 103, Close: 112, Action: domain.ActionClose, Equity: 10700, Utilization: 0},
	}
	benchmarkEvents := []domain.TradeEvent{
		{Timestamp: base, Close: 100, Equity: 10000},
		{Timestamp: base.Add(4 * time.Hour), Close: 101, Equity: 10100},
	}
	for id, events := range map[string][]domain.TradeEvent{
		"vad":        strategyEvents,
		"buyandhold": benchmarkEvents,
	} {
		key := domain.TableKey{ID: id, Timeframe: "240min", Target: "BTC"}
		if err := ps.WriteTable(ctx, key, events); err != nil {
			t.Fatalf("seeding %s: %v", id, err)
		}
	}

	sel := domain.Selection{Strategy: "vad", Timeframe: "240min", Benchmark: "buyandhold", Target: "BTC"}
	ctrl := viewer.NewController(ctx, ps, sel, log)

	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	options := Options{
		Strategies: []string{"vad"},
		Timeframes: []string{"5min", "240min"},
		Targets:    []string{"QQQ", "BTC", "600519"},
		Benchmarks: []string{"buyandhold", "treasury", "btc"},
	}
	return NewServer(ctrl, nil, db, options, log), db
}

func TestHandleChart(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/chart?timeframe=240min&target=BTC&benchmark=buyandhold", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ChartResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Chart.Panels) != 3 {
		t.Errorf("chart has %d panels, want 3", len(resp.Chart.Panels))
	}
	if !strings.Contains(resp.Chart.Title, "240min BTC vs buyandhold") {
		t.Errorf("Title = %q", resp.Chart.Title)
	}
}

func TestHandleChartNoData(t *testing.T) {
	srv, _ := newTestServer(t)

	// Benchmark has no table for this target: strategy data alone is not enough.
	req := httptest.NewRequest("GET", "/api/chart?benchmark=treasury", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ChartResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Chart.Panels) != 0 {
		t.Errorf("chart has %d panels, want 0", len(resp.Chart.Panels))
	}
	if resp.Chart.Title != chart.NoDataTitle || resp.Chart.Annotation != chart.NoDataTitle {
		t.Errorf("no-data chart = %q / %q", resp.Chart.Title, resp.Chart.Annotation)
	}
}

func TestHandleSetSelection(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest("POST", "/api/selection/target", strings.NewReader(`{"value":"QQQ"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ChartResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Selection.Target != "QQQ" {
		t.Errorf("Selection.Target = %q, want QQQ", resp.Selection.Target)
	}
	// No tables are seeded for QQQ, so the transition yields the no-data chart.
	if len(resp.Chart.Panels) != 0 {
		t.Errorf("chart has %d panels, want 0", len(resp.Chart.Panels))
	}

	// Unknown field names are rejected.
	req = httptest.NewRequest("POST", "/api/selection/granularity", strings.NewReader(`{"value":"1min"}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown field", rec.Code)
	}
}

func TestHandleOptions(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/options", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var opts Options
	if err := json.NewDecoder(rec.Body).Decode(&opts); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(opts.Timeframes) != 2 || opts.Timeframes[1] != "240min" {
		t.Errorf("Timeframes = %v", opts.Timeframes)
	}
}

func TestHandleRuns(t *testing.T) {
	srv, db := newTestServer(t)
	ctx := context.Background()

	// A zero-loss run: profit factor +Inf must survive JSON encoding.
	if err := db.SaveMetrics(ctx, domain.PerformanceMetrics{
		Strategy:     "vad",
		Data:         "240min_BTC",
		WinRate:      1,
		TotalTrades:  3,
		ProfitFactor: math.Inf(1),
	}); err != nil {
		t.Fatalf("SaveMetrics: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/runs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Runs []map[string]any `json:"runs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(resp.Runs))
	}
	if resp.Runs[0]["profit_factor"] != nil {
		t.Errorf("profit_factor = %v, want null for +Inf", resp.Runs[0]["profit_factor"])
	}
	if resp.Runs[0]["win_rate_text"] != "100.00%" {
		t.Errorf("win_rate_text = %v, want 100.00%%", resp.Runs[0]["win_rate_text"])
	}
}
