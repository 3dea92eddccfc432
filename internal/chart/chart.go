// Package chart composes the three-panel strategy visualization from
// trade-record tables. A Spec is a fully specified chart description:
// it is never mutated after construction and is discarded wholesale on the
// next selection change.
package chart

// Series types understood by the front-end renderer.
const (
	SeriesCandlestick = "candlestick"
	SeriesMarkers     = "markers"
	SeriesLine        = "line"
	SeriesScatter     = "scatter"
)

// NoDataTitle is the fixed title of the empty-result chart.
const NoDataTitle = "No data available"

// Marker describes the point style of a marker series.
type Marker struct {
	Symbol    string `json:"symbol"`
	Size      int    `json:"size"`
	Color     string `json:"color"`
	LineColor string `json:"lineColor,omitempty"`
	LineWidth int    `json:"lineWidth,omitempty"`
}

// Series is one typed series within a panel. X carries Unix-millisecond
// timestamps; candlestick series populate Open/High/Low/Close, all others Y.
type Series struct {
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	X      []int64   `json:"x"`
	Y      []float64 `json:"y,omitempty"`
	Open   []float64 `json:"open,omitempty"`
	High   []float64 `json:"high,omitempty"`
	Low    []float64 `json:"low,omitempty"`
	Close  []float64 `json:"close,omitempty"`
	Marker *Marker   `json:"marker,omitempty"`
}

// Panel is one vertically stacked subplot.
type Panel struct {
	Title      string   `json:"title"`
	Height     float64  `json:"height"` // fraction of total chart height
	YAxisTitle string   `json:"yAxisTitle"`
	Series     []Series `json:"series"`
}

// Spec is the rendered chart artifact. The empty-result chart has no panels
// and carries a single annotation instead.
type Spec struct {
	Title       string  `json:"title"`
	SharedXAxis bool    `json:"sharedXAxis"`
	Panels      []Panel `json:"panels"`
	Annotation  string  `json:"annotation,omitempty"`
}

// Empty returns true for the empty-result chart.
func (s Spec) Empty() bool {
	return len(s.Panels) == 0
}
