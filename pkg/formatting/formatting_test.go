package formatting

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sampleRows() []Row {
	return []Row{
		NewRow(1735166000000, "agent-1", "MAPPED_MEMORY_USED", 1024),
		NewRow(1735166005000, "agent-1", "MAPPED_MEMORY_USED", math.NaN()),
		NewRow(1735166010000, "agent-1", "MAPPED_MEMORY_USED", 2048.5),
	}
}

func checkRows(t *testing.T, got []Row) {
	t.Helper()
	want := sampleRows()
	if len(got) != len(want) {
		t.Fatalf("got %d rows; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Timestamp != want[i].Timestamp {
			t.Errorf("row %d timestamp = %d; want %d", i, got[i].Timestamp, want[i].Timestamp)
		}
		if got[i].AgentID != want[i].AgentID || got[i].Metric != want[i].Metric {
			t.Errorf("row %d = %+v; want %+v", i, got[i], want[i])
		}
		gv, wv := got[i].Float(), want[i].Float()
		if math.IsNaN(wv) {
			if !math.IsNaN(gv) {
				t.Errorf("row %d value = %v; want missing", i, gv)
			}
			continue
		}
		if gv != wv {
			t.Errorf("row %d value = %v; want %v", i, gv, wv)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	for _, name := range []string{"samples.jsonl", "samples.csv", "samples.tsv", "samples.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, name)
			if err := SaveRows(path, sampleRows()); err != nil {
				t.Fatalf("SaveRows: %v", err)
			}
			rows, err := LoadRows(path)
			if err != nil {
				t.Fatalf("LoadRows: %v", err)
			}
			checkRows(t, rows)
		})
	}
}

func TestStreamingWriterFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.jsonl")

	w, err := NewWriter("jsonl", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range sampleRows() {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	rows, err := LoadRows(path)
	if err != nil {
		t.Fatal(err)
	}
	checkRows(t, rows)
}

func TestJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonl")
	content := `{"timestamp":1,"agentId":"a","metric":"m","value":5}
not json
{"timestamp":2,"agentId":"a","metric":"m","value":null}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rows, err := LoadRows(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows; want 2", len(rows))
	}
	if rows[1].Value != nil {
		t.Errorf("null value decoded as %v", *rows[1].Value)
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"jsonl", "csv", "tsv", "parquet"} {
		if _, ok := Get(name); !ok {
			t.Errorf("format %s not registered", name)
		}
	}
	if _, ok := GetByExtension("PARQUET"); !ok {
		t.Error("GetByExtension should be case-insensitive and accept a bare extension")
	}
	if got := GetExtension("csv"); got != ".csv" {
		t.Errorf("GetExtension(csv) = %q; want .csv", got)
	}
	if got := GetExtension("unknown"); got != ".jsonl" {
		t.Errorf("GetExtension(unknown) = %q; want .jsonl", got)
	}
	if _, err := NewWriter("xml", filepath.Join(t.TempDir(), "x.xml")); err == nil {
		t.Error("NewWriter accepted an unknown format")
	}
	if _, err := LoadRows("samples.xml"); err == nil {
		t.Error("LoadRows accepted an unknown extension")
	}
}
