package graphing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"InspectorCharts/pkg/units"
)

const (
	chartWidth  = "100%"
	chartHeight = "320px"
)

// unitFormatterJS mirrors units.Format for axis labels and tooltips.
var unitFormatterJS = func() string {
	suffixes, _ := json.Marshal(units.Suffixes)
	return fmt.Sprintf(`function (value) {
    var suffixes = %s;
    var index = 0;
    while (Math.abs(value) >= %d && index < suffixes.length - 1) {
        value /= %d;
        index++;
    }
    if (!Number.isInteger(value)) {
        value = Number(value.toFixed(2));
    }
    return value + suffixes[index];
}`, suffixes, units.Scale, units.Scale)
}()

var splitLabelJS = fmt.Sprintf(`function (label) {
    return String(label).split(%q).join('\n');
}`, LabelSeparator)

var tooltipFormatterJS = fmt.Sprintf(`function (params) {
    var format = %s;
    if (!Array.isArray(params)) {
        params = [params];
    }
    if (params.length === 0) {
        return '';
    }
    var lines = [String(params[0].axisValue).split(%q).join(' ')];
    params.forEach(function (p) {
        var v = Array.isArray(p.value) ? p.value[1] : p.value;
        var missing = v === '-' || v === null || v === undefined || isNaN(v);
        lines.push(p.seriesName + ': ' + (missing ? %q : format(Number(v))));
    });
    return lines.join('<br/>');
}`, unitFormatterJS, LabelSeparator, units.Placeholder)

// createLineChart translates the data and rendering options into an
// area-filled echarts line.
func createLineChart(chartID string, data *DataOption, normal *NormalOption) *charts.Line {
	line := charts.NewLine()

	xTicks := XTicks{MaxTicksLimit: MaxXTicks}
	if len(normal.Scales.XAxes) > 0 {
		xTicks = normal.Scales.XAxes[0].Ticks
	}

	yAxis := opts.YAxis{Type: "value"}
	if len(normal.Scales.YAxes) > 0 {
		y := normal.Scales.YAxes[0]
		if y.ScaleLabel.Display {
			yAxis.Name = y.ScaleLabel.LabelString
		}
		yAxis.Min = y.Ticks.Min
		yAxis.SplitNumber = y.Ticks.MaxTicksLimit
		if y.Ticks.Max != nil {
			yAxis.Max = *y.Ticks.Max
		}
		yAxis.AxisLabel = &opts.AxisLabel{Formatter: opts.FuncOpts(unitFormatterJS)}
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: normal.Title.Text,
			ChartID:   chartID,
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "axis",
			Formatter: opts.FuncOpts(tooltipFormatterJS),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(normal.Legend.Display)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			AxisLabel: &opts.AxisLabel{
				Rotate:    0,
				Interval:  labelInterval(len(data.Labels), xTicks.MaxTicksLimit),
				Formatter: opts.FuncOpts(splitLabelJS),
			},
		}),
		charts.WithYAxisOpts(yAxis),
	)

	line.SetXAxis(data.Labels)
	for _, ds := range data.Datasets {
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(ds.PointRadius > 0)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: ds.BorderColor, Width: BorderWidth}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.BorderColor}),
		}
		if ds.Fill {
			seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{
				Color:   ds.BackgroundColor,
				Opacity: opts.Float(1),
			}))
		}
		line.AddSeries(ds.Label, lineData(ds), seriesOpts...)
	}

	return line
}

// lineData converts a dataset into echarts points. "-" is echarts' marker
// for a missing value.
func lineData(ds Dataset) []opts.LineData {
	data := make([]opts.LineData, len(ds.Data))
	for i := range ds.Data {
		v := ds.Value(i)
		if math.IsNaN(v) {
			data[i] = opts.LineData{Value: units.Placeholder}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// labelInterval returns how many category labels to skip between two
// drawn ones so that at most maxTicks labels are shown.
func labelInterval(n, maxTicks int) string {
	if maxTicks <= 0 || n <= maxTicks {
		return "0"
	}
	return strconv.Itoa((n+maxTicks-1)/maxTicks - 1)
}
