// Package output writes extraction results as CSV with a fixed
// ten-column layout.
package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/use-agent/buyersguide/models"
)

// Writer streams rows to a CSV file, flushing after every row so a
// crash mid-run loses at most the row being written.
type Writer struct {
	f *os.File
	w *csv.Writer
}

// Create truncates (or creates) the file at path and writes the header
// row.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: create %s: %w", path, err)
	}
	w := &Writer{f: f, w: csv.NewWriter(f)}
	if err := w.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

// Append opens the file at path for appending, writing the header only
// when the file is new or empty.
func Append(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("output: open %s: %w", path, err)
	}
	w := &Writer{f: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("output: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		if err := w.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	if err := w.w.Write(models.Header); err != nil {
		return fmt.Errorf("output: write header: %w", err)
	}
	w.w.Flush()
	return w.w.Error()
}

// Write appends one row and flushes it to disk.
func (w *Writer) Write(row models.OutputRow) error {
	if err := w.w.Write(row.Fields()); err != nil {
		return fmt.Errorf("output: write row: %w", err)
	}
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return fmt.Errorf("output: flush row: %w", err)
	}
	return nil
}

// Close flushes any buffered data and closes the file.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		w.f.Close()
		return fmt.Errorf("output: flush: %w", err)
	}
	return w.f.Close()
}
