package formatting

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

func init() {
	Register(&CSVFormat{})
	Register(&TSVFormat{})
}

// CSVFormat handles CSV archives.
type CSVFormat struct{}

func (f *CSVFormat) Name() string         { return "csv" }
func (f *CSVFormat) Extensions() []string { return []string{".csv"} }
func (f *CSVFormat) Reader() Reader       { return &DelimitedReader{delimiter: ','} }
func (f *CSVFormat) Writer() Writer       { return &DelimitedWriter{delimiter: ','} }

// TSVFormat handles TSV archives.
type TSVFormat struct{}

func (f *TSVFormat) Name() string         { return "tsv" }
func (f *TSVFormat) Extensions() []string { return []string{".tsv"} }
func (f *TSVFormat) Reader() Reader       { return &DelimitedReader{delimiter: '\t'} }
func (f *TSVFormat) Writer() Writer       { return &DelimitedWriter{delimiter: '\t'} }

// DelimitedReader reads CSV/TSV archives. Columns are matched by header
// name so their order in the file does not matter.
type DelimitedReader struct {
	file      *os.File
	reader    *csv.Reader
	index     map[string]int
	delimiter rune
}

func (r *DelimitedReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	r.file = file
	r.reader = csv.NewReader(file)
	r.reader.Comma = r.delimiter
	r.reader.FieldsPerRecord = -1
	r.reader.LazyQuotes = true

	header, err := r.reader.Read()
	if err != nil {
		r.file.Close()
		return fmt.Errorf("failed to read header: %w", err)
	}
	r.index = make(map[string]int, len(header))
	for i, name := range header {
		r.index[name] = i
	}
	if _, ok := r.index["timestamp"]; !ok {
		r.file.Close()
		return fmt.Errorf("missing timestamp column")
	}
	return nil
}

func (r *DelimitedReader) Read() ([]Row, error) {
	var rows []Row
	for {
		fields, err := r.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		row, err := r.parseRow(fields)
		if err != nil {
			return rows, fmt.Errorf("row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *DelimitedReader) field(fields []string, name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func (r *DelimitedReader) parseRow(fields []string) (Row, error) {
	ts, err := strconv.ParseInt(r.field(fields, "timestamp"), 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	row := Row{
		Timestamp: ts,
		AgentID:   r.field(fields, "agentId"),
		Metric:    r.field(fields, "metric"),
	}
	if s := r.field(fields, "value"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid value %q: %w", s, err)
		}
		row.Value = &v
	}
	return row, nil
}

func (r *DelimitedReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// DelimitedWriter writes CSV/TSV archives. Missing values are written as
// empty cells.
type DelimitedWriter struct {
	path      string
	file      *os.File
	writer    *csv.Writer
	delimiter rune
	mu        sync.Mutex
}

func (w *DelimitedWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	w.path = path
	w.file = file
	w.writer = csv.NewWriter(file)
	w.writer.Comma = w.delimiter

	if err := w.writer.Write(Columns); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

func (w *DelimitedWriter) Write(row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	value := ""
	if row.Value != nil {
		value = strconv.FormatFloat(*row.Value, 'f', -1, 64)
	}
	record := []string{
		strconv.FormatInt(row.Timestamp, 10),
		row.AgentID,
		row.Metric,
		value,
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

func (w *DelimitedWriter) WriteBatch(rows []Row) error {
	for i, r := range rows {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return nil
}

func (w *DelimitedWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer != nil {
		w.writer.Flush()
		return w.writer.Error()
	}
	return nil
}

func (w *DelimitedWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

func (w *DelimitedWriter) Path() string {
	return w.path
}
