package chart

import (
	"reflect"
	"testing"
	"time"

	"stratviz/internal/domain"
)

func testSelection() domain.Selection {
	return domain.Selection{
		Strategy:  "vad",
		Timeframe: "240min",
		Benchmark: "buyandhold",
		Target:    "BTC",
	}
}

func testEvents() []domain.TradeEvent {
	base := time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)
	return []domain.TradeEvent{
		{Timestamp: base, Open: 100, High: 110, Low: 95, Close: 105, Action: domain.ActionOpen, Equity: 10000, Utilization: 0.5},
		{Timestamp: base.Add(4 * time.Hour), Open: 105, High: 112, Low: 102, Close: 108, Action: "", Equity: 10200, Utilization: 0.5},
		{Timestamp: base.Add(8 * time.Hour), Open: 108, High: 115, Low: 104, Close: 113, Action: domain.ActionAdd, Equity: 10600, Utilization: 0.95},
		{Timestamp: base.Add(12 * time.Hour), Open: 113, High: 121, Low: 111, Close: 119, Action: domain.ActionClose, Equity: 11400, Utilization: 0},
	}
}

func benchmarkEvents() []domain.TradeEvent {
	base := time.Date(2022, 1, 3, 2, 0, 0, 0, time.UTC)
	return []domain.TradeEvent{
		{Timestamp: base, Close: 100, Equity: 10000},
		{Timestamp: base.Add(6 * time.Hour), Close: 104, Equity: 10400},
	}
}

func TestComposePanels(t *testing.T) {
	spec := Compose(testEvents(), benchmarkEvents(), testSelection())

	if spec.Empty() {
		t.Fatal("Compose returned empty spec for non-empty tables")
	}
	if want := "Strategy Visualization - 240min BTC vs buyandhold"; spec.Title != want {
		t.Errorf("Title = %q, want %q", spec.Title, want)
	}
	if !spec.SharedXAxis {
		t.Error("SharedXAxis should be set")
	}
	if len(spec.Panels) != 3 {
		t.Fatalf("len(Panels) = %d, want 3", len(spec.Panels))
	}

	heights := []float64{0.5, 0.25, 0.25}
	for i, p := range spec.Panels {
		if p.Height != heights[i] {
			t.Errorf("panel %d height = %v, want %v", i, p.Height, heights[i])
		}
	}
}

func TestComposeSignalPanel(t *testing.T) {
	events := testEvents()
	spec := Compose(events, benchmarkEvents(), testSelection())
	signals := spec.Panels[0]

	if len(signals.Series) != 4 {
		t.Fatalf("signal panel has %d series, want 4", len(signals.Series))
	}

	price := signals.Series[0]
	if price.Type != SeriesCandlestick {
		t.Errorf("price series type = %q, want candlestick", price.Type)
	}
	if len(price.X) != len(events) || len(price.Close) != len(events) {
		t.Errorf("price series covers %d/%d points, want %d", len(price.X), len(price.Close), len(events))
	}

	// Open and add markers anchor at the event low; close markers at the high.
	open := signals.Series[1]
	if len(open.X) != 1 || open.Y[0] != 95 {
		t.Errorf("open markers = %v at %v, want one marker at low 95", open.X, open.Y)
	}
	add := signals.Series[2]
	if len(add.X) != 1 || add.Y[0] != 104 {
		t.Errorf("add markers = %v at %v, want one marker at low 104", add.X, add.Y)
	}
	closeSig := signals.Series[3]
	if len(closeSig.X) != 1 || closeSig.Y[0] != 121 {
		t.Errorf("close markers = %v at %v, want one marker at high 121", closeSig.X, closeSig.Y)
	}

	if open.Marker.Symbol != "triangle-up" || closeSig.Marker.Symbol != "triangle-down" {
		t.Errorf("marker symbols = %q/%q, want triangle-up/triangle-down", open.Marker.Symbol, closeSig.Marker.Symbol)
	}
}

func TestComposeActionFilterIsExact(t *testing.T) {
	// Case and whitespace variants must not match.
	events := testEvents()
	events[0].Action = "Open"
	events[2].Action = " add"

	spec := Compose(events, benchmarkEvents(), testSelection())
	signals := spec.Panels[0]

	if n := len(signals.Series[1].X); n != 0 {
		t.Errorf("open markers = %d, want 0 for non-exact tag %q", n, "Open")
	}
	if n := len(signals.Series[2].X); n != 0 {
		t.Errorf("add markers = %d, want 0 for non-exact tag %q", n, " add")
	}
	if n := len(signals.Series[3].X); n != 1 {
		t.Errorf("close markers = %d, want 1", n)
	}
}

func TestComposeEquityPanelIndependentAxes(t *testing.T) {
	strategy := testEvents()
	benchmark := benchmarkEvents()
	spec := Compose(strategy, benchmark, testSelection())
	equity := spec.Panels[1]

	if len(equity.Series) != 2 {
		t.Fatalf("equity panel has %d series, want 2", len(equity.Series))
	}
	if equity.Series[0].Name != "BTC Equity" || equity.Series[1].Name != "buyandhold Equity" {
		t.Errorf("equity series names = %q/%q", equity.Series[0].Name, equity.Series[1].Name)
	}
	// Each series plots on its own timestamps; no forced alignment.
	if len(equity.Series[0].X) != len(strategy) {
		t.Errorf("strategy equity has %d points, want %d", len(equity.Series[0].X), len(strategy))
	}
	if len(equity.Series[1].X) != len(benchmark) {
		t.Errorf("benchmark equity has %d points, want %d", len(equity.Series[1].X), len(benchmark))
	}
	if equity.Series[1].X[0] == equity.Series[0].X[0] {
		t.Error("benchmark timestamps should be independent of strategy timestamps in this fixture")
	}
}

func TestComposeUtilizationPanel(t *testing.T) {
	spec := Compose(testEvents(), benchmarkEvents(), testSelection())
	util := spec.Panels[2]

	// Only the strategy's utilization is plotted.
	if len(util.Series) != 1 {
		t.Fatalf("utilization panel has %d series, want 1", len(util.Series))
	}
	s := util.Series[0]
	if s.Type != SeriesScatter {
		t.Errorf("utilization series type = %q, want scatter", s.Type)
	}
	if len(s.Y) != 4 || s.Y[2] != 0.95 {
		t.Errorf("utilization values = %v", s.Y)
	}
}

func TestComposeEmptyInputs(t *testing.T) {
	sel := testSelection()
	cases := []struct {
		name      string
		strategy  []domain.TradeEvent
		benchmark []domain.TradeEvent
	}{
		{"both empty", nil, nil},
		{"strategy empty", nil, benchmarkEvents()},
		{"benchmark empty", testEvents(), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := Compose(tc.strategy, tc.benchmark, sel)
			if !spec.Empty() {
				t.Fatal("expected empty-result chart")
			}
			if spec.Title != NoDataTitle {
				t.Errorf("Title = %q, want %q", spec.Title, NoDataTitle)
			}
			if spec.Annotation != NoDataTitle {
				t.Errorf("Annotation = %q, want %q", spec.Annotation, NoDataTitle)
			}
		})
	}
}

func TestComposeIdempotent(t *testing.T) {
	strategy := testEvents()
	benchmark := benchmarkEvents()
	sel := testSelection()

	first := Compose(strategy, benchmark, sel)
	second := Compose(strategy, benchmark, sel)

	if !reflect.DeepEqual(first, second) {
		t.Error("composing twice from identical inputs produced different specs")
	}
}
