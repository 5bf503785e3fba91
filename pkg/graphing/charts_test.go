package graphing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"InspectorCharts/pkg/units"
)

func TestUnitFormatterJSMatchesUnits(t *testing.T) {
	suffixes, _ := json.Marshal(units.Suffixes)
	scale := strconv.Itoa(units.Scale)

	for _, want := range []string{
		"var suffixes = " + string(suffixes) + ";",
		"Math.abs(value) >= " + scale,
		"value /= " + scale + ";",
	} {
		if !strings.Contains(unitFormatterJS, want) {
			t.Errorf("unit formatter missing %q", want)
		}
	}

	if !strings.Contains(tooltipFormatterJS, unitFormatterJS) {
		t.Error("tooltip formatter does not embed the unit formatter")
	}
	if !strings.Contains(tooltipFormatterJS, fmt.Sprintf("%q", units.Placeholder)) {
		t.Errorf("tooltip formatter missing placeholder %q", units.Placeholder)
	}
}
