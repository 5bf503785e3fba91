package graphing

import (
	"strings"
	"testing"
	"time"
)

func TestRendererRender(t *testing.T) {
	b := NewBuilder(MappedMemory, nil)
	d := testData()

	r := &Renderer{HoverURL: "/hover"}
	var buf strings.Builder
	page := PageData{
		Chart: MappedMemory.Key,
		Agent: "agent-1",
		From:  time.UnixMilli(0).UTC(),
		To:    time.UnixMilli(10000).UTC(),
	}
	if err := r.Render(&buf, page, b.DataOption(d), b.NormalOption(d)); err != nil {
		t.Fatal(err)
	}

	html := buf.String()
	for _, want := range []string{
		"Mapped Buffer Memory",
		"Agent: agent-1",
		"chart_mapped_memory",
		"1970.01.01#00:00:05",
		"/hover",
		"globalout",
		`agent: "agent-1"`,
		"index >= count",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page is missing %q", want)
		}
	}
}

func TestRendererWithoutHover(t *testing.T) {
	b := NewBuilder(MappedMemory, nil)
	r := &Renderer{}
	var buf strings.Builder
	if err := r.Render(&buf, PageData{Chart: "mapped-memory"}, b.DataOption(nil), b.NormalOption(nil)); err != nil {
		t.Fatal(err)
	}

	html := buf.String()
	if strings.Contains(html, "globalout") {
		t.Error("page posts hover events without a hover URL")
	}
	if !strings.Contains(html, "No data collected") {
		t.Error("empty page should say there is no data")
	}
}

func TestLineData(t *testing.T) {
	b := NewBuilder(MappedMemory, nil)
	points := lineData(b.DataOption(testData()).Datasets[0])
	if len(points) != 3 {
		t.Fatalf("got %d points; want 3", len(points))
	}
	if points[1].Value != "-" {
		t.Errorf("missing point = %v; want -", points[1].Value)
	}
	if points[0].Value != 1000.0 {
		t.Errorf("point 0 = %v; want 1000", points[0].Value)
	}
}

func TestLabelInterval(t *testing.T) {
	tests := []struct {
		n, max int
		want   string
	}{
		{0, 4, "0"},
		{4, 4, "0"},
		{5, 4, "1"},
		{8, 4, "1"},
		{9, 4, "2"},
		{100, 4, "24"},
		{10, 0, "0"},
	}
	for _, tt := range tests {
		if got := labelInterval(tt.n, tt.max); got != tt.want {
			t.Errorf("labelInterval(%d, %d) = %q; want %q", tt.n, tt.max, got, tt.want)
		}
	}
}
