package cmd

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"InspectorCharts/pkg/config"
	"InspectorCharts/pkg/fetching"
	"InspectorCharts/pkg/graphing"
	"InspectorCharts/pkg/hover"
)

// TestMain silences command logging.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testPayload() *graphing.Payload {
	return &graphing.Payload{
		X: []int64{1700000000000, 1700000005000, 1700000010000},
		Y: map[string][]graphing.Sample{
			graphing.MetricMappedMemoryUsed: {{0, 0, 1500}, {0, 0, -1}, {0, 0, 2000000}},
			graphing.MetricMappedCount:      {{0, 0, 3}, {0, 0, 4}, {0, 0, 5}},
		},
	}
}

// stubFetcher serves a fixed payload and records the queries it saw.
type stubFetcher struct {
	mu      sync.Mutex
	payload *graphing.Payload
	err     error
	queries []fetching.Query
}

func (f *stubFetcher) Fetch(ctx context.Context, q fetching.Query) (*graphing.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.payload, f.err
}

func (f *stubFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func testContext(t *testing.T, f fetching.Fetcher) *CmdContext {
	t.Helper()
	cfg := config.New()
	cfg.AgentID = "agent-1"
	cfg.Timezone = "UTC"
	cfg.OutputDir = t.TempDir()

	labels, err := cfg.LabelFormat()
	if err != nil {
		t.Fatal(err)
	}
	return &CmdContext{
		Config:  cfg,
		Fetcher: f,
		Spec:    cfg.Spec(),
		Labels:  labels,
	}
}

func TestBuildChart(t *testing.T) {
	labels, _ := graphing.NewLabelFormat("UTC", "", "")
	rec := &hover.Recorder{}

	chart, err := BuildChart(testPayload(), graphing.MappedMemory, labels, rec)
	if err != nil {
		t.Fatal(err)
	}
	if chart.Data.Len() != 3 {
		t.Fatalf("Len() = %d; want 3", chart.Data.Len())
	}
	if chart.Option.Datasets[0].Data[1] != nil {
		t.Error("sentinel -1 should be encoded as null")
	}

	chart.Normal.Hover.OnHover(graphing.MouseEvent{Type: "mousemove"}, []graphing.Element{{Index: 2}})
	events := rec.Events()
	if len(events) != 1 || events[0].Index != 2 || events[0].Chart != "mapped-memory" {
		t.Errorf("events = %+v", events)
	}
}

func TestBuildChartMissingMetric(t *testing.T) {
	labels, _ := graphing.NewLabelFormat("UTC", "", "")
	rec := &hover.Recorder{}

	chart, err := BuildChart(testPayload(), graphing.DirectMemory, labels, rec)
	if err != nil {
		t.Fatalf("missing metric should render empty, got %v", err)
	}
	if !chart.Data.IsEmpty() {
		t.Error("chart should be empty")
	}
	if yMax := chart.Normal.Scales.YAxes[0].Ticks.Max; yMax == nil || *yMax != graphing.DefaultYMax {
		t.Errorf("y max = %v; want %v", yMax, graphing.DefaultYMax)
	}

	chart.Normal.Hover.OnHover(graphing.MouseEvent{Type: "mousemove"}, []graphing.Element{{Index: 0}})
	if len(rec.Events()) != 0 {
		t.Error("hover on an empty chart should not dispatch")
	}
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("1700000000000")
	if err != nil || got.UnixMilli() != 1700000000000 {
		t.Errorf("parseTime(ms) = %v, %v", got, err)
	}

	got, err = parseTime("2024-01-02T03:04:05Z")
	if err != nil || got.Unix() != 1704164645 {
		t.Errorf("parseTime(rfc3339) = %v, %v", got, err)
	}

	if _, err := parseTime("yesterday"); err == nil {
		t.Error("parseTime accepted garbage")
	}
}

func TestTimeRange(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	from, to, err := timeRange("", "", time.Minute, now)
	if err != nil {
		t.Fatal(err)
	}
	if !to.Equal(now) || to.Sub(from) != time.Minute {
		t.Errorf("default range = %v..%v", from, to)
	}

	from, to, err = timeRange("1000", "5000", time.Minute, now)
	if err != nil {
		t.Fatal(err)
	}
	if from.UnixMilli() != 1000 || to.UnixMilli() != 5000 {
		t.Errorf("explicit range = %v..%v", from, to)
	}

	if _, _, err := timeRange("5000", "1000", time.Minute, now); err == nil {
		t.Error("reversed range should fail")
	}
}

func TestRender(t *testing.T) {
	f := &stubFetcher{payload: testPayload()}
	cc := testContext(t, f)
	cc.Config.OutputName = "chart.html"

	path, err := Render(context.Background(), cc, time.UnixMilli(1700000000000), time.UnixMilli(1700000060000))
	if err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(content) == 0 {
		t.Fatal("empty page")
	}
	if f.queries[0].AgentID != "agent-1" {
		t.Errorf("query = %+v", f.queries[0])
	}
}

func TestRenderFetchError(t *testing.T) {
	f := &stubFetcher{err: errors.New("backend down")}
	cc := testContext(t, f)

	_, err := Render(context.Background(), cc, time.UnixMilli(0), time.UnixMilli(60000))
	if err == nil {
		t.Fatal("Render should fail when the fetch fails")
	}
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"serve", "render", "record", "graph"} {
		sub, _, err := root.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("Find(%s) = %v, %v", name, sub, err)
		}
	}

	serve, _, _ := root.Find([]string{"serve"})
	for _, flag := range []string{"agent", "backend-url", "chart", "port", "interval", "config"} {
		if serve.Flags().Lookup(flag) == nil && serve.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("serve is missing --%s", flag)
		}
	}
}
