package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"InspectorCharts/pkg/formatting"
	"InspectorCharts/pkg/graphing"
)

func TestRecordDeduplicatesOverlappingWindows(t *testing.T) {
	f := &stubFetcher{payload: testPayload()}
	cc := testContext(t, f)
	cc.Config.Interval = 10 * time.Millisecond
	cc.Config.OutputFormat = "jsonl"
	path := filepath.Join(cc.Config.OutputDir, "rec.jsonl")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	count, err := Record(ctx, cc, path)
	if err != nil {
		t.Fatal(err)
	}
	if f.calls() < 2 {
		t.Fatalf("fetches = %d; want several polls", f.calls())
	}

	p := testPayload()
	want := len(p.X) * len(p.Y)
	if count != want {
		t.Errorf("count = %d; want %d", count, want)
	}

	rows, err := formatting.LoadRows(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != want {
		t.Fatalf("archive has %d rows; want %d", len(rows), want)
	}
	for _, r := range rows {
		if r.AgentID != "agent-1" {
			t.Errorf("row agent = %s", r.AgentID)
		}
	}
}

func newTestArchiver(t *testing.T) (*archiver, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rec.csv")
	w, err := formatting.NewWriter("csv", path)
	if err != nil {
		t.Fatal(err)
	}
	return &archiver{writer: w, agentID: "a"}, path
}

func mappedPayload(ts []int64, values ...float64) *graphing.Payload {
	samples := make([]graphing.Sample, len(values))
	for i, v := range values {
		samples[i] = graphing.Sample{0, 0, v}
	}
	return &graphing.Payload{X: ts, Y: map[string][]graphing.Sample{graphing.MetricMappedMemoryUsed: samples}}
}

func loadArchived(t *testing.T, a *archiver, path string) *graphing.Payload {
	t.Helper()
	if err := a.writer.Close(); err != nil {
		t.Fatal(err)
	}
	rows, err := formatting.LoadRows(path)
	if err != nil {
		t.Fatal(err)
	}
	return graphing.PayloadFromRows(rows)
}

func TestArchiverAppendsOnlyNewBuckets(t *testing.T) {
	a, path := newTestArchiver(t)

	if n, _ := a.write(mappedPayload([]int64{1000, 2000}, 1, 2)); n != 1 {
		t.Errorf("first write = %d rows; want 1 with the newest held back", n)
	}
	if n, _ := a.write(mappedPayload([]int64{2000, 3000}, 2, 3)); n != 1 {
		t.Errorf("second write = %d rows; want 1", n)
	}
	if n, _ := a.write(nil); n != 0 {
		t.Errorf("nil payload wrote %d rows", n)
	}
	if n, _ := a.finish(); n != 1 {
		t.Errorf("finish = %d rows; want the held-back bucket", n)
	}
	if n, _ := a.finish(); n != 0 {
		t.Errorf("second finish wrote %d rows", n)
	}

	payload := loadArchived(t, a, path)
	if len(payload.X) != 3 || payload.X[2] != 3000 {
		t.Errorf("archived timestamps = %v", payload.X)
	}
}

func TestArchiverKeepsLateFilledBucket(t *testing.T) {
	a, path := newTestArchiver(t)

	// The newest bucket is still incomplete when first polled.
	a.write(mappedPayload([]int64{1000, 2000}, 1, -1))
	a.write(mappedPayload([]int64{2000, 3000}, 5, -1))
	a.write(mappedPayload([]int64{3000, 4000}, 7, 8))
	a.finish()

	payload := loadArchived(t, a, path)
	labels, _ := graphing.NewLabelFormat("UTC", "", "")
	data, err := graphing.Reshape(payload, graphing.MappedMemory, labels)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 5, 7, 8}
	if data.Len() != len(want) {
		t.Fatalf("archived %d buckets; want %d", data.Len(), len(want))
	}
	for i, v := range want {
		if data.Values[i] != v {
			t.Errorf("bucket %d = %v; want %v", i, data.Values[i], v)
		}
	}
}

func TestGraphAllSkipsUnrecordedCharts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "rec.jsonl")
	if err := formatting.SaveRows(input, graphing.RowsFromPayload("agent-1", testPayload())); err != nil {
		t.Fatal(err)
	}

	labels, _ := graphing.NewLabelFormat("UTC", "", "")
	if err := Graph(input, dir, graphing.Specs(), labels, graphing.FormatHTML); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"mapped-memory", "mapped-count"} {
		if _, err := os.Stat(filepath.Join(dir, "rec_"+key+".html")); err != nil {
			t.Errorf("%s page: %v", key, err)
		}
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*.html"))
	if len(matches) != 2 {
		t.Errorf("generated %v; want the two recorded charts", matches)
	}

	if err := Graph(input, dir, []graphing.ChartSpec{graphing.DirectMemory}, labels, graphing.FormatHTML); err == nil {
		t.Error("a single unrecorded chart should fail")
	}
}
