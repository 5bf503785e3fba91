package graphing

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"
)

// LabelSeparator joins the date and time parts of an x-axis label. The
// axis renderer splits on it to draw the label on two lines.
const LabelSeparator = "#"

// Default label layouts.
const (
	DefaultDateLayout = "2006.01.02"
	DefaultTimeLayout = "15:04:05"
)

// ErrMetricMissing is returned when the payload has no series for the
// requested metric.
var ErrMetricMissing = errors.New("metric missing from payload")

// ErrNilPayload is returned when there is no payload to reshape.
var ErrNilPayload = errors.New("nil payload")

// LabelFormat controls how bucket timestamps become x-axis labels.
type LabelFormat struct {
	Location   *time.Location
	DateLayout string
	TimeLayout string
}

// DefaultLabelFormat formats labels in the local time zone.
func DefaultLabelFormat() LabelFormat {
	return LabelFormat{
		Location:   time.Local,
		DateLayout: DefaultDateLayout,
		TimeLayout: DefaultTimeLayout,
	}
}

// NewLabelFormat loads the named IANA zone. Empty layouts fall back to
// the defaults.
func NewLabelFormat(timezone, dateLayout, timeLayout string) (LabelFormat, error) {
	lf := DefaultLabelFormat()
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return lf, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
		}
		lf.Location = loc
	}
	if dateLayout != "" {
		lf.DateLayout = dateLayout
	}
	if timeLayout != "" {
		lf.TimeLayout = timeLayout
	}
	return lf, nil
}

// Time converts an epoch-millisecond timestamp into the format's zone.
func (f LabelFormat) Time(ms int64) time.Time {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}

// Label renders an epoch-millisecond timestamp as "<date>#<time>".
func (f LabelFormat) Label(ms int64) string {
	t := f.Time(ms)
	return t.Format(f.DateLayout) + LabelSeparator + t.Format(f.TimeLayout)
}

// SplitLabel splits a label into its date and time parts.
func SplitLabel(label string) []string {
	return strings.Split(label, LabelSeparator)
}

// JoinLabel turns a split label back into a single line.
func JoinLabel(parts []string) string {
	return strings.Join(parts, " ")
}

// ChartData is a reshaped series ready for option building. A NaN value
// means the bucket has no data.
type ChartData struct {
	Timestamps []int64
	Labels     []string
	Values     []float64
}

// Len returns the number of buckets.
func (d *ChartData) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Labels)
}

// IsEmpty reports whether there is nothing to plot.
func (d *ChartData) IsEmpty() bool {
	return d.Len() == 0
}

// Reshape turns a backend payload into labels and the value series of
// spec's metric. The result always has one value per timestamp; samples
// that are missing, short or negative become NaN.
func Reshape(p *Payload, spec ChartSpec, lf LabelFormat) (*ChartData, error) {
	if p == nil {
		return nil, ErrNilPayload
	}

	samples, ok := p.Y[spec.MetricKey]
	if !ok {
		return nil, fmt.Errorf("%s: %w", spec.MetricKey, ErrMetricMissing)
	}

	data := &ChartData{
		Timestamps: make([]int64, len(p.X)),
		Labels:     make([]string, len(p.X)),
		Values:     make([]float64, len(p.X)),
	}

	for i, ts := range p.X {
		data.Timestamps[i] = ts
		data.Labels[i] = lf.Label(ts)
		if i < len(samples) {
			data.Values[i] = parseData(samples[i].Value())
		} else {
			data.Values[i] = math.NaN()
		}
	}

	return data, nil
}

// parseData maps the backend's negative "no data" sentinel to NaN.
func parseData(v float64) float64 {
	if v < 0 {
		return math.NaN()
	}
	return v
}
