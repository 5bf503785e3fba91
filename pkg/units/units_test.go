package units

import (
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{999.5, "999.5"},
		{1000, "1K"},
		{1500, "1.5K"},
		{1234, "1.23K"},
		{1999, "2K"},
		{1000000, "1M"},
		{1234567, "1.23M"},
		{5368709120, "5.37G"},
		{0.125, "0.13"},
		{-1500, "-1.5K"},
		{-0.001, "0"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatClampsAtLargestSuffix(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{999999999999, "1000G"},
		{1e12, "1000G"},
		{2.5e15, "2500000G"},
	}

	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNonFinite(t *testing.T) {
	if got := Format(math.NaN()); got != Placeholder {
		t.Errorf("Format(NaN) = %q; want %q", got, Placeholder)
	}
	if got := Format(math.Inf(1)); got != "+Inf" {
		t.Errorf("Format(+Inf) = %q; want +Inf", got)
	}
}

func TestScaleValueSteps(t *testing.T) {
	// Every value below 10^12 needs at most three divisions.
	for _, v := range []float64{0, 1, 999, 1e3, 1e6, 1e9, 1e12 - 1} {
		s := ScaleValue(v)
		if s.Index > 3 {
			t.Errorf("ScaleValue(%v).Index = %d; want <= 3", v, s.Index)
		}
		if v < 1e12-1 && math.Abs(s.Magnitude) >= Scale {
			t.Errorf("ScaleValue(%v).Magnitude = %v; want < %d", v, s.Magnitude, Scale)
		}
	}

	s := ScaleValue(1e12)
	if s.Index != len(Suffixes)-1 || s.Suffix() != "G" {
		t.Errorf("ScaleValue(1e12) = %+v; want clamped at G", s)
	}
}

func TestFormatOrPlaceholder(t *testing.T) {
	if got := FormatOrPlaceholder(nil); got != "-" {
		t.Errorf("FormatOrPlaceholder(nil) = %q; want -", got)
	}
	v := 2048.0
	if got := FormatOrPlaceholder(&v); got != "2.05K" {
		t.Errorf("FormatOrPlaceholder(2048) = %q; want 2.05K", got)
	}
}
