package chart

import (
	"fmt"

	"stratviz/internal/domain"
)

// Compose maps the strategy and benchmark trade-record tables plus the
// current selection to a fully specified three-panel chart. It is pure and
// deterministic: identical inputs always produce identical specs.
//
// Either table being empty short-circuits to the empty-result chart before
// any panel construction is attempted.
func Compose(strategy, benchmark []domain.TradeEvent, sel domain.Selection) Spec {
	if len(strategy) == 0 || len(benchmark) == 0 {
		return Spec{Title: NoDataTitle, Annotation: NoDataTitle}
	}

	return Spec{
		Title:       fmt.Sprintf("Strategy Visualization - %s %s vs %s", sel.Timeframe, sel.Target, sel.Benchmark),
		SharedXAxis: true,
		Panels: []Panel{
			signalPanel(strategy),
			equityPanel(strategy, benchmark, sel),
			utilizationPanel(strategy),
		},
	}
}

// signalPanel plots the instrument candlesticks over the strategy table's
// timestamps, overlaid with entry/add/exit markers. Open and add actions
// anchor upward markers at each event's low; close actions anchor downward
// markers at each event's high.
func signalPanel(events []domain.TradeEvent) Panel {
	price := Series{
		Name:  "Price",
		Type:  SeriesCandlestick,
		X:     make([]int64, 0, len(events)),
		Open:  make([]float64, 0, len(events)),
		High:  make([]float64, 0, len(events)),
		Low:   make([]float64, 0, len(events)),
		Close: make([]float64, 0, len(events)),
	}
	for _, e := range events {
		price.X = append(price.X, e.Timestamp.UnixMilli())
		price.Open = append(price.Open, e.Open)
		price.High = append(price.High, e.High)
		price.Low = append(price.Low, e.Low)
		price.Close = append(price.Close, e.Close)
	}

	up := &Marker{Symbol: "triangle-up", Size: 15, Color: "lime", LineColor: "green", LineWidth: 2}
	down := &Marker{Symbol: "triangle-down", Size: 15, Color: "red", LineColor: "darkred", LineWidth: 2}

	return Panel{
		Title:      "Trade Signals",
		Height:     0.5,
		YAxisTitle: "Price",
		Series: []Series{
			price,
			markerSeries("Open Signal", events, domain.ActionOpen, up),
			markerSeries("Add Signal", events, domain.ActionAdd, up),
			markerSeries("Close Signal", events, domain.ActionClose, down),
		},
	}
}

// markerSeries filters events by exact action match and anchors each marker
// at the event's low (upward markers) or high (downward markers).
func markerSeries(name string, events []domain.TradeEvent, action domain.TradeAction, marker *Marker) Series {
	s := Series{Name: name, Type: SeriesMarkers, X: []int64{}, Y: []float64{}, Marker: marker}
	for _, e := range events {
		if e.Action != action {
			continue
		}
		s.X = append(s.X, e.Timestamp.UnixMilli())
		if action == domain.ActionClose {
			s.Y = append(s.Y, e.High)
		} else {
			s.Y = append(s.Y, e.Low)
		}
	}
	return s
}

// equityPanel plots the strategy and benchmark equity curves, each on its
// own timestamps with no alignment or interpolation between the two.
func equityPanel(strategy, benchmark []domain.TradeEvent, sel domain.Selection) Panel {
	return Panel{
		Title:      "Total Equity",
		Height:     0.25,
		YAxisTitle: "Equity",
		Series: []Series{
			equitySeries(fmt.Sprintf("%s Equity", sel.Target), strategy),
			equitySeries(fmt.Sprintf("%s Equity", sel.Benchmark), benchmark),
		},
	}
}

func equitySeries(name string, events []domain.TradeEvent) Series {
	s := Series{Name: name, Type: SeriesLine, X: make([]int64, 0, len(events)), Y: make([]float64, 0, len(events))}
	for _, e := range events {
		s.X = append(s.X, e.Timestamp.UnixMilli())
		s.Y = append(s.Y, e.Equity)
	}
	return s
}

// utilizationPanel plots the strategy's capital-utilization ratio over time.
// Benchmark utilization is not plotted.
func utilizationPanel(events []domain.TradeEvent) Panel {
	s := Series{
		Name: "Capital Utilization",
		Type: SeriesScatter,
		X:    make([]int64, 0, len(events)),
		Y:    make([]float64, 0, len(events)),
	}
	for _, e := range events {
		s.X = append(s.X, e.Timestamp.UnixMilli())
		s.Y = append(s.Y, e.Utilization)
	}

	return Panel{
		Title:      "Capital Utilization",
		Height:     0.25,
		YAxisTitle: "Utilization",
		Series:     []Series{s},
	}
}
