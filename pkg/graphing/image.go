package graphing

import (
	"errors"
	"fmt"
	"io"
	"math"

	"InspectorCharts/pkg/units"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Static image size used by the graph command.
const (
	DefaultImageWidth  = 1024
	DefaultImageHeight = 320
)

// ErrTooFewPoints is returned when a static image has fewer than two
// points with data to draw.
var ErrTooFewPoints = errors.New("need at least two points with data")

// RenderImage draws the chart as a PNG. Buckets without data are left out
// of the line; axis ticks follow the same limits and formatters as the
// interactive page.
func (r *Renderer) RenderImage(w io.Writer, data *DataOption, normal *NormalOption, width, height int) error {
	if data == nil || len(data.Datasets) == 0 {
		return ErrTooFewPoints
	}
	ds := data.Datasets[0]

	var xs, ys []float64
	maxY := 0.0
	for i := range data.Labels {
		v := ds.Value(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, float64(i))
		ys = append(ys, v)
		maxY = math.Max(maxY, v)
	}
	if len(xs) < 2 {
		return ErrTooFewPoints
	}

	y := normal.Scales.YAxes[0]
	if y.Ticks.Max != nil {
		maxY = *y.Ticks.Max
	}
	if maxY <= y.Ticks.Min {
		maxY = y.Ticks.Min + 1
	}

	color := parseColor(ds.BorderColor)
	line := chart.ContinuousSeries{
		Name:    ds.Label,
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: drawing.Color{R: color.R, G: color.G, B: color.B, A: 255},
			StrokeWidth: math.Max(ds.BorderWidth, 1),
			FillColor:   color,
		},
	}

	ch := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: xTicks(data.Labels, normal.Scales.XAxes[0].Ticks.MaxTicksLimit),
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(data.Labels) - 1)},
		},
		YAxis: chart.YAxis{
			Name:  y.ScaleLabel.LabelString,
			Ticks: yTicks(y.Ticks.Min, maxY, y.Ticks.MaxTicksLimit),
			Range: &chart.ContinuousRange{Min: y.Ticks.Min, Max: maxY},
		},
		Series: []chart.Series{line},
	}
	if normal.Legend.Display {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render image: %w", err)
	}
	return nil
}

// xTicks spreads at most maxTicks labels evenly over the category axis.
func xTicks(labels []string, maxTicks int) []chart.Tick {
	n := len(labels)
	if maxTicks < 2 {
		maxTicks = 2
	}
	if n < maxTicks {
		maxTicks = n
	}

	ticks := make([]chart.Tick, 0, maxTicks)
	for i := 0; i < maxTicks; i++ {
		idx := i * (n - 1) / (maxTicks - 1)
		ticks = append(ticks, chart.Tick{
			Value: float64(idx),
			Label: JoinLabel(SplitLabel(labels[idx])),
		})
	}
	return ticks
}

// yTicks labels count evenly spaced values with the unit formatter.
func yTicks(lo, hi float64, count int) []chart.Tick {
	if count < 2 {
		count = 2
	}
	step := (hi - lo) / float64(count-1)

	ticks := make([]chart.Tick, count)
	for i := range ticks {
		v := lo + step*float64(i)
		ticks[i] = chart.Tick{Value: v, Label: units.Format(v)}
	}
	return ticks
}

// parseColor reads "rgba(r, g, b, a)" or "rgb(r, g, b)". Unparsable
// colors fall back to the default series blue.
func parseColor(s string) drawing.Color {
	var r, g, b uint8
	a := 1.0
	if _, err := fmt.Sscanf(s, "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); err != nil {
		if _, err := fmt.Sscanf(s, "rgb(%d, %d, %d)", &r, &g, &b); err != nil {
			return drawing.Color{R: 31, G: 119, B: 180, A: 102}
		}
	}
	return drawing.Color{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}
