package graphing

import (
	"encoding/json"
	"math"
)

// Metric keys reported by the agent buffer statistics endpoint.
const (
	MetricDirectCount      = "DIRECT_COUNT"
	MetricDirectMemoryUsed = "DIRECT_MEMORY_USED"
	MetricMappedCount      = "MAPPED_COUNT"
	MetricMappedMemoryUsed = "MAPPED_MEMORY_USED"
)

// Positions inside a sample triple.
const (
	SampleMin = iota
	SampleMax
	SampleValue
)

// Sample is one [min, max, value] triple. JSON nulls decode to NaN.
type Sample []float64

func (s *Sample) UnmarshalJSON(b []byte) error {
	var raw []*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Sample, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

func (s Sample) MarshalJSON() ([]byte, error) {
	raw := make([]*float64, len(s))
	for i := range s {
		if !math.IsNaN(s[i]) {
			raw[i] = &s[i]
		}
	}
	return json.Marshal(raw)
}

// Value returns the sample's value element, or NaN if the sample is short.
func (s Sample) Value() float64 {
	if len(s) <= SampleValue {
		return math.NaN()
	}
	return s[SampleValue]
}

// Payload is the chart data returned by the backend: bucket timestamps in
// epoch milliseconds and one sample per bucket for every metric.
type Payload struct {
	X []int64             `json:"x"`
	Y map[string][]Sample `json:"y"`
}

// Response wraps a Payload the way the backend sends it.
type Response struct {
	Charts Payload `json:"charts"`
}
