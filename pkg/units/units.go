// Package units scales raw metric values into short human-readable labels.
package units

import (
	"math"
	"strconv"
)

// Scale is the step between two adjacent suffixes.
const Scale = 1000

// Placeholder is printed in place of a value that carries no data.
const Placeholder = "-"

// Suffixes lists the unit suffixes in ascending order of magnitude.
// Values too large for the last entry stay in its scale.
var Suffixes = []string{"", "K", "M", "G"}

// Scaled is a value reduced to at most three integer digits plus the
// index of the suffix it has to be read with.
type Scaled struct {
	Magnitude float64
	Index     int
}

// Suffix returns the unit suffix for s.
func (s Scaled) Suffix() string {
	return Suffixes[s.Index]
}

// String renders the magnitude followed directly by its suffix.
func (s Scaled) String() string {
	return formatMagnitude(s.Magnitude) + s.Suffix()
}

// ScaleValue divides value by 1000 until it drops below 1000 or the suffix
// table is exhausted.
func ScaleValue(value float64) Scaled {
	result := value
	index := 0
	for math.Abs(result) >= Scale && index < len(Suffixes)-1 {
		result /= Scale
		index++
	}
	return Scaled{Magnitude: result, Index: index}
}

// Format renders value with an SI-like suffix, e.g. 1500 -> "1.5K".
// NaN values are rendered as Placeholder.
func Format(value float64) string {
	if math.IsNaN(value) {
		return Placeholder
	}
	if math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return ScaleValue(value).String()
}

// FormatOrPlaceholder is Format for optional values.
func FormatOrPlaceholder(value *float64) string {
	if value == nil {
		return Placeholder
	}
	return Format(*value)
}

// formatMagnitude keeps integers exact and rounds anything else to two
// decimals, dropping trailing zeros.
func formatMagnitude(v float64) string {
	if v != math.Trunc(v) {
		v = math.Round(v*100) / 100
	}
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
