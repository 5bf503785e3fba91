package graphing

import (
	"sort"
)

// Unit tells how a chart's values are measured.
type Unit string

const (
	UnitBytes Unit = "bytes"
	UnitCount Unit = "count"
)

// ChartSpec describes one buffer chart: which metric it plots and how the
// series looks.
type ChartSpec struct {
	Key         string `json:"key"`
	MetricKey   string `json:"metricKey"`
	SeriesLabel string `json:"seriesLabel"`
	Color       string `json:"color"`
	Unit        Unit   `json:"unit"`
}

// AxisTitle is the y-axis caption for the spec's unit.
func (s ChartSpec) AxisTitle() string {
	switch s.Unit {
	case UnitBytes:
		return "Memory (bytes)"
	case UnitCount:
		return "Buffer (count)"
	default:
		return string(s.Unit)
	}
}

var (
	MappedMemory = ChartSpec{
		Key:         "mapped-memory",
		MetricKey:   MetricMappedMemoryUsed,
		SeriesLabel: "Mapped Buffer Memory",
		Color:       "rgba(31, 119, 180, 0.4)",
		Unit:        UnitBytes,
	}
	DirectMemory = ChartSpec{
		Key:         "direct-memory",
		MetricKey:   MetricDirectMemoryUsed,
		SeriesLabel: "Direct Buffer Memory",
		Color:       "rgba(44, 160, 44, 0.4)",
		Unit:        UnitBytes,
	}
	MappedCount = ChartSpec{
		Key:         "mapped-count",
		MetricKey:   MetricMappedCount,
		SeriesLabel: "Mapped Buffer Count",
		Color:       "rgba(255, 127, 14, 0.4)",
		Unit:        UnitCount,
	}
	DirectCount = ChartSpec{
		Key:         "direct-count",
		MetricKey:   MetricDirectCount,
		SeriesLabel: "Direct Buffer Count",
		Color:       "rgba(214, 39, 40, 0.4)",
		Unit:        UnitCount,
	}
)

var specs = map[string]ChartSpec{
	MappedMemory.Key: MappedMemory,
	DirectMemory.Key: DirectMemory,
	MappedCount.Key:  MappedCount,
	DirectCount.Key:  DirectCount,
}

// Lookup returns the chart spec registered under key.
func Lookup(key string) (ChartSpec, bool) {
	s, ok := specs[key]
	return s, ok
}

// Keys returns all registered chart keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Specs returns all registered chart specs ordered by key.
func Specs() []ChartSpec {
	keys := Keys()
	out := make([]ChartSpec, len(keys))
	for i, k := range keys {
		out[i] = specs[k]
	}
	return out
}
