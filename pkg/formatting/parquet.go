package formatting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/parquet-go/parquet-go"
)

const ParquetBatchSize = 1000

func init() {
	Register(&ParquetFormat{})
}

// ParquetFormat handles Parquet archives.
type ParquetFormat struct{}

func (f *ParquetFormat) Name() string         { return "parquet" }
func (f *ParquetFormat) Extensions() []string { return []string{".parquet"} }
func (f *ParquetFormat) Reader() Reader       { return &ParquetReader{} }
func (f *ParquetFormat) Writer() Writer       { return &ParquetWriter{} }

// ParquetReader reads Parquet archives.
type ParquetReader struct {
	file   *os.File
	reader *parquet.GenericReader[Row]
}

func (r *ParquetReader) Open(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	r.file = file
	r.reader = parquet.NewGenericReader[Row](file)
	return nil
}

func (r *ParquetReader) Read() ([]Row, error) {
	if r.reader == nil {
		return nil, fmt.Errorf("reader not initialized")
	}

	rows := make([]Row, 0, r.reader.NumRows())
	buf := make([]Row, 100)
	for {
		n, err := r.reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return rows, fmt.Errorf("failed to read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}

func (r *ParquetReader) Close() error {
	if r.reader != nil {
		r.reader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParquetWriter buffers rows and writes them in batches.
type ParquetWriter struct {
	path   string
	file   *os.File
	writer *parquet.GenericWriter[Row]
	buffer []Row
	mu     sync.Mutex
}

func (w *ParquetWriter) Init(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	w.path = path
	w.file = file
	w.writer = parquet.NewGenericWriter[Row](file, parquet.Compression(&parquet.Snappy))
	w.buffer = make([]Row, 0, ParquetBatchSize)
	return nil
}

func (w *ParquetWriter) Write(row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, row)
	if len(w.buffer) >= ParquetBatchSize {
		return w.flushBuffer()
	}
	return nil
}

func (w *ParquetWriter) WriteBatch(rows []Row) error {
	for i, r := range rows {
		if err := w.Write(r); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return nil
}

func (w *ParquetWriter) flushBuffer() error {
	if len(w.buffer) == 0 || w.writer == nil {
		return nil
	}
	if _, err := w.writer.Write(w.buffer); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	w.buffer = w.buffer[:0]
	return nil
}

func (w *ParquetWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.flushBuffer(); err != nil {
		return err
	}
	if w.writer != nil {
		return w.writer.Flush()
	}
	return nil
}

func (w *ParquetWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer != nil {
		if err := w.writer.Close(); err != nil {
			return err
		}
		w.writer = nil
	}
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

func (w *ParquetWriter) Path() string {
	return w.path
}
