package views

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"airquality-server/internal/modules/airquality/types"
)

const (
	ChartTitle = "AQI (Air Quality index)"

	chartWidth        = 800
	chartHeight       = 600
	titleFontSize     = 20
	tickRotation      = 25
	bottomPadding     = 90
	singlePointMargin = 30 * time.Minute
)

// RenderLatestText writes the one-line summary of the latest reading.
func RenderLatestText(w io.Writer, r types.Reading) error {
	_, err := fmt.Fprintf(w, "AQI (Air Quality index) %d, obtained at: %s", r.Value, r.Timestamp())
	return err
}

// Series holds readings split into parallel slices, oldest first.
type Series struct {
	Times  []time.Time
	Values []float64
}

func NewSeries(readings []types.Reading) Series {
	sorted := make([]types.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	s := Series{
		Times:  make([]time.Time, 0, len(sorted)),
		Values: make([]float64, 0, len(sorted)),
	}
	for _, r := range sorted {
		s.Times = append(s.Times, r.Time)
		s.Values = append(s.Values, float64(r.Value))
	}
	return s
}

func (s Series) Len() int { return len(s.Times) }

// RenderChart draws readings as a single line chart and writes it as SVG.
// Callers render into a buffer so a failure leaves nothing on the wire.
func RenderChart(w io.Writer, readings []types.Reading) error {
	s := NewSeries(readings)
	if s.Len() == 0 {
		return fmt.Errorf("render chart: no readings")
	}

	graph := chart.Chart{
		Title:      ChartTitle,
		TitleStyle: chart.Style{FontSize: titleFontSize},
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 40, Bottom: bottomPadding},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(types.TimestampLayout),
			TickStyle:      chart.Style{TextRotationDegrees: tickRotation},
			Range:          timeRange(s.Times),
		},
		YAxis: chart.YAxis{
			Range: valueRange(s.Values),
			Zero:  chart.GridLine{Style: chart.Hidden()},
		},
		// Zero-value styles are visible; the secondary axis has no series
		// and would be drawn with an empty range.
		YAxisSecondary: chart.YAxis{Style: chart.Hidden()},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "AQI",
				XValues: s.Times,
				YValues: s.Values,
			},
		},
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// timeRange widens a zero-width x range around a lone reading. nil lets the
// chart derive the range from the data.
func timeRange(times []time.Time) chart.Range {
	first, last := times[0], times[len(times)-1]
	if !first.Equal(last) {
		return nil
	}
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(first.Add(-singlePointMargin)),
		Max: chart.TimeToFloat64(last.Add(singlePointMargin)),
	}
}

func valueRange(values []float64) chart.Range {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}
