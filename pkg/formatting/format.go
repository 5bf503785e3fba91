// Package formatting provides unified read/write interfaces for archived
// chart samples.
package formatting

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// Row is one archived chart bucket. A nil Value means the bucket had no
// data.
type Row struct {
	Timestamp int64    `json:"timestamp" parquet:"timestamp"`
	AgentID   string   `json:"agentId" parquet:"agentId"`
	Metric    string   `json:"metric" parquet:"metric"`
	Value     *float64 `json:"value" parquet:"value"`
}

// Columns lists the archive columns in file order.
var Columns = []string{"timestamp", "agentId", "metric", "value"}

// NewRow builds a row, storing NaN as a missing value.
func NewRow(ts int64, agentID, metric string, value float64) Row {
	r := Row{Timestamp: ts, AgentID: agentID, Metric: metric}
	if !math.IsNaN(value) {
		v := value
		r.Value = &v
	}
	return r
}

// Float returns the row's value, NaN when missing.
func (r Row) Float() float64 {
	if r.Value == nil {
		return math.NaN()
	}
	return *r.Value
}

// Format defines the interface for an archive format.
type Format interface {
	Name() string
	Extensions() []string
	Reader() Reader
	Writer() Writer
}

// Reader reads rows from a file.
type Reader interface {
	Open(path string) error
	Read() ([]Row, error)
	Close() error
}

// Writer writes rows to a file.
type Writer interface {
	Init(path string) error
	Write(row Row) error
	WriteBatch(rows []Row) error
	Flush() error
	Close() error
	Path() string
}

// Registry management
var (
	registry    = make(map[string]Format)
	extRegistry = make(map[string]Format)
)

// Register adds a format to the registry.
func Register(f Format) {
	name := strings.ToLower(f.Name())
	registry[name] = f
	for _, ext := range f.Extensions() {
		extRegistry[strings.ToLower(ext)] = f
	}
}

// Get returns a format by name.
func Get(name string) (Format, bool) {
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// GetByExtension returns a format by file extension.
func GetByExtension(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := extRegistry[ext]
	return f, ok
}

// GetByPath returns a format based on the file's extension.
func GetByPath(path string) (Format, bool) {
	return GetByExtension(filepath.Ext(path))
}

// List returns all registered format names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetExtension returns the file extension for a format name.
func GetExtension(format string) string {
	if f, ok := Get(format); ok && len(f.Extensions()) > 0 {
		return f.Extensions()[0]
	}
	return ".jsonl"
}

// LoadRows loads all rows from a file.
func LoadRows(path string) ([]Row, error) {
	f, ok := GetByPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported format for file: %s", path)
	}

	reader := f.Reader()
	if err := reader.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	rows, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return rows, nil
}

// SaveRows writes rows to a file, picking the format from its extension.
func SaveRows(path string, rows []Row) error {
	f, ok := GetByPath(path)
	if !ok {
		return fmt.Errorf("unsupported format for file: %s", path)
	}

	writer := f.Writer()
	if err := writer.Init(path); err != nil {
		return fmt.Errorf("failed to initialize writer: %w", err)
	}

	if err := writer.WriteBatch(rows); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return writer.Close()
}

// NewWriter creates and initializes a writer for the named format.
func NewWriter(format, path string) (Writer, error) {
	f, ok := Get(format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (valid: %s)", format, strings.Join(List(), ", "))
	}
	w := f.Writer()
	if err := w.Init(path); err != nil {
		return nil, fmt.Errorf("failed to initialize %s writer: %w", format, err)
	}
	return w, nil
}
