package graphing

import (
	"math"

	"InspectorCharts/pkg/hover"
	"InspectorCharts/pkg/units"
)

// Chart policy.
const (
	DefaultYMax     = 100
	MaxXTicks       = 4
	MaxYTicks       = 5
	TickFontSize    = 11
	TickPadding     = 5
	AxisTitleSize   = 14
	LegendBoxWidth  = 30
	LegendPadding   = 10
	BorderWidth     = 0.5
	PointHoverSize  = 3
	GridLineWidth   = 0.5
	GridLineColor   = "rgb(0, 0, 0)"
	InteractionMode = "index"
	MouseOut        = "mouseout"
)

// DataOption is the chart's data definition: x labels and its datasets.
// Missing values are encoded as JSON null.
type DataOption struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is a single line series.
type Dataset struct {
	Type             string     `json:"type"`
	Label            string     `json:"label"`
	Data             []*float64 `json:"data"`
	Fill             bool       `json:"fill"`
	BorderWidth      float64    `json:"borderWidth"`
	BorderColor      string     `json:"borderColor"`
	BackgroundColor  string     `json:"backgroundColor"`
	PointRadius      float64    `json:"pointRadius"`
	PointHoverRadius float64    `json:"pointHoverRadius"`
}

// Value returns the i-th data point, NaN when it has no data.
func (d Dataset) Value(i int) float64 {
	if i < 0 || i >= len(d.Data) || d.Data[i] == nil {
		return math.NaN()
	}
	return *d.Data[i]
}

// NormalOption holds the rendering options of a chart. Callbacks are Go
// functions and are not serialized.
type NormalOption struct {
	Responsive bool          `json:"responsive"`
	Title      TitleOption   `json:"title"`
	Tooltips   TooltipOption `json:"tooltips"`
	Hover      HoverOption   `json:"hover"`
	Scales     ScalesOption  `json:"scales"`
	Legend     LegendOption  `json:"legend"`
}

type TitleOption struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// TooltipItem is the hovered point as seen by tooltip callbacks. XLabel
// is the label after the x tick callback split it.
type TooltipItem struct {
	XLabel       []string
	YLabel       float64
	DatasetIndex int
	Index        int
}

type TooltipCallbacks struct {
	Title func(items []TooltipItem) string
	Label func(item TooltipItem, data *DataOption) string
}

type TooltipOption struct {
	Mode      string           `json:"mode"`
	Intersect bool             `json:"intersect"`
	Callbacks TooltipCallbacks `json:"-"`
}

// MouseEvent is the subset of a pointer event the hover callback reads.
type MouseEvent struct {
	Type    string  `json:"type"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Element is a chart element under the cursor.
type Element struct {
	Index int `json:"index"`
}

type HoverOption struct {
	Mode      string                                     `json:"mode"`
	Intersect bool                                       `json:"intersect"`
	OnHover   func(event MouseEvent, elements []Element) `json:"-"`
}

type ScalesOption struct {
	XAxes []XAxisOption `json:"xAxes"`
	YAxes []YAxisOption `json:"yAxes"`
}

type ScaleLabel struct {
	Display     bool   `json:"display"`
	LabelString string `json:"labelString,omitempty"`
	FontSize    int    `json:"fontSize,omitempty"`
	FontStyle   string `json:"fontStyle,omitempty"`
}

type GridLines struct {
	Color           string  `json:"color"`
	LineWidth       float64 `json:"lineWidth"`
	DrawBorder      bool    `json:"drawBorder"`
	DrawOnChartArea bool    `json:"drawOnChartArea"`
}

type XTicks struct {
	MaxTicksLimit int                         `json:"maxTicksLimit"`
	MaxRotation   int                         `json:"maxRotation"`
	MinRotation   int                         `json:"minRotation"`
	FontSize      int                         `json:"fontSize"`
	Padding       int                         `json:"padding"`
	Callback      func(label string) []string `json:"-"`
}

type YTicks struct {
	BeginAtZero   bool                       `json:"beginAtZero"`
	MaxTicksLimit int                        `json:"maxTicksLimit"`
	Min           float64                    `json:"min"`
	Max           *float64                   `json:"max,omitempty"`
	Padding       int                        `json:"padding"`
	Callback      func(value float64) string `json:"-"`
}

type XAxisOption struct {
	Display    bool       `json:"display"`
	ScaleLabel ScaleLabel `json:"scaleLabel"`
	GridLines  GridLines  `json:"gridLines"`
	Ticks      XTicks     `json:"ticks"`
}

type YAxisOption struct {
	Display    bool       `json:"display"`
	ScaleLabel ScaleLabel `json:"scaleLabel"`
	GridLines  GridLines  `json:"gridLines"`
	Ticks      YTicks     `json:"ticks"`
}

type LegendLabels struct {
	BoxWidth int `json:"boxWidth"`
	Padding  int `json:"padding"`
}

type LegendOption struct {
	Display bool         `json:"display"`
	Labels  LegendLabels `json:"labels"`
}

// Builder produces data and rendering options for one chart spec. Hover
// events are reported to Sink.
type Builder struct {
	Spec        ChartSpec
	Sink        hover.Sink
	DefaultYMax float64
}

// NewBuilder returns a builder for spec. A nil sink discards hover events.
func NewBuilder(spec ChartSpec, sink hover.Sink) *Builder {
	if sink == nil {
		sink = hover.Discard
	}
	return &Builder{
		Spec:        spec,
		Sink:        sink,
		DefaultYMax: DefaultYMax,
	}
}

// DataOption builds the chart's single line dataset from d.
func (b *Builder) DataOption(d *ChartData) *DataOption {
	var labels []string
	var values []float64
	if d != nil {
		labels = d.Labels
		values = d.Values
	}

	return &DataOption{
		Labels: labels,
		Datasets: []Dataset{{
			Type:             "line",
			Label:            b.Spec.SeriesLabel,
			Data:             nullable(values),
			Fill:             true,
			BorderWidth:      BorderWidth,
			BorderColor:      b.Spec.Color,
			BackgroundColor:  b.Spec.Color,
			PointRadius:      0,
			PointHoverRadius: PointHoverSize,
		}},
	}
}

// NormalOption builds axes, tooltip, legend and hover wiring for d.
func (b *Builder) NormalOption(d *ChartData) *NormalOption {
	empty := d.IsEmpty()

	grid := GridLines{
		Color:           GridLineColor,
		LineWidth:       GridLineWidth,
		DrawBorder:      true,
		DrawOnChartArea: false,
	}

	var yMax *float64
	if empty {
		v := b.DefaultYMax
		yMax = &v
	}

	return &NormalOption{
		Responsive: true,
		Title: TitleOption{
			Display: false,
			Text:    b.Spec.SeriesLabel,
		},
		Tooltips: TooltipOption{
			Mode:      InteractionMode,
			Intersect: false,
			Callbacks: TooltipCallbacks{
				Title: TooltipTitle,
				Label: TooltipLabel,
			},
		},
		Hover: HoverOption{
			Mode:      InteractionMode,
			Intersect: false,
			OnHover: func(event MouseEvent, elements []Element) {
				if empty {
					return
				}
				b.Sink.Dispatch(hover.Event{
					Chart:   b.Spec.Key,
					Index:   HoveredIndex(event, elements),
					OffsetX: event.OffsetX,
					OffsetY: event.OffsetY,
				})
			},
		},
		Scales: ScalesOption{
			XAxes: []XAxisOption{{
				Display:    true,
				ScaleLabel: ScaleLabel{Display: false},
				GridLines:  grid,
				Ticks: XTicks{
					MaxTicksLimit: MaxXTicks,
					MaxRotation:   0,
					MinRotation:   0,
					FontSize:      TickFontSize,
					Padding:       TickPadding,
					Callback:      SplitLabel,
				},
			}},
			YAxes: []YAxisOption{{
				Display: true,
				ScaleLabel: ScaleLabel{
					Display:     true,
					LabelString: b.Spec.AxisTitle(),
					FontSize:    AxisTitleSize,
					FontStyle:   "bold",
				},
				GridLines: grid,
				Ticks: YTicks{
					BeginAtZero:   true,
					MaxTicksLimit: MaxYTicks,
					Min:           0,
					Max:           yMax,
					Padding:       TickPadding,
					Callback:      units.Format,
				},
			}},
		},
		Legend: LegendOption{
			Display: true,
			Labels: LegendLabels{
				BoxWidth: LegendBoxWidth,
				Padding:  LegendPadding,
			},
		},
	}
}

// HoveredIndex is the index reported for a hover event: -1 when the
// cursor left the chart or is over no element.
func HoveredIndex(event MouseEvent, elements []Element) int {
	if event.Type == MouseOut || len(elements) == 0 {
		return hover.NoIndex
	}
	return elements[0].Index
}

// TooltipTitle joins the hovered point's split label back into one line.
func TooltipTitle(items []TooltipItem) string {
	if len(items) == 0 {
		return ""
	}
	return JoinLabel(items[0].XLabel)
}

// TooltipLabel renders "<series>: <value>", with "-" for missing data.
func TooltipLabel(item TooltipItem, data *DataOption) string {
	label := ""
	if data != nil && item.DatasetIndex >= 0 && item.DatasetIndex < len(data.Datasets) {
		label = data.Datasets[item.DatasetIndex].Label
	}
	return label + ": " + units.Format(item.YLabel)
}

func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) {
			v := values[i]
			out[i] = &v
		}
	}
	return out
}
