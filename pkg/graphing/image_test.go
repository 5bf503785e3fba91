package graphing

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestRenderImage(t *testing.T) {
	b := NewBuilder(MappedMemory, nil)
	d := testData()

	var buf bytes.Buffer
	r := &Renderer{}
	if err := r.RenderImage(&buf, b.DataOption(d), b.NormalOption(d), DefaultImageWidth, DefaultImageHeight); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRenderImageTooFewPoints(t *testing.T) {
	b := NewBuilder(MappedMemory, nil)
	d := &ChartData{
		Timestamps: []int64{0, 5000},
		Labels:     []string{"a#1", "a#2"},
		Values:     []float64{1, math.NaN()},
	}

	var buf bytes.Buffer
	r := &Renderer{}
	err := r.RenderImage(&buf, b.DataOption(d), b.NormalOption(d), 200, 100)
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("err = %v; want ErrTooFewPoints", err)
	}
	if err := r.RenderImage(&buf, b.DataOption(nil), b.NormalOption(nil), 200, 100); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("empty chart err = %v; want ErrTooFewPoints", err)
	}
}

func TestImageTicks(t *testing.T) {
	labels := []string{"d#0", "d#1", "d#2", "d#3", "d#4", "d#5", "d#6"}
	ticks := xTicks(labels, MaxXTicks)
	if len(ticks) != MaxXTicks {
		t.Fatalf("got %d x ticks; want %d", len(ticks), MaxXTicks)
	}
	if ticks[0].Label != "d 0" || ticks[len(ticks)-1].Value != 6 {
		t.Errorf("x ticks = %+v", ticks)
	}

	if got := xTicks(labels[:2], MaxXTicks); len(got) != 2 {
		t.Errorf("short axis got %d ticks", len(got))
	}

	y := yTicks(0, 4000, MaxYTicks)
	if len(y) != MaxYTicks || y[1].Label != "1K" || y[4].Label != "4K" {
		t.Errorf("y ticks = %+v", y)
	}
}

func TestParseColor(t *testing.T) {
	c := parseColor("rgba(31, 119, 180, 0.4)")
	if c.R != 31 || c.G != 119 || c.B != 180 || c.A != 102 {
		t.Errorf("rgba = %+v", c)
	}
	c = parseColor("rgb(1, 2, 3)")
	if c.R != 1 || c.G != 2 || c.B != 3 || c.A != 255 {
		t.Errorf("rgb = %+v", c)
	}
	if c := parseColor("blue"); c.B != 180 {
		t.Errorf("fallback = %+v", c)
	}
}
