package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/use-agent/buyersguide/models"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestCreateWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readAll(t, path)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want header only", len(rows))
	}
	if !reflect.DeepEqual(rows[0], models.Header) {
		t.Errorf("header = %v, want %v", rows[0], models.Header)
	}
}

func TestRowRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	row := models.OutputRow{
		Vehicle: "2014 Ford Focus",
		Engine:  "2.0L L4",
		SKP: models.PartRecord{
			Part:        "SKP-100",
			URL:         "https://example.com/parts/100",
			Description: `He said "ok", fine`,
			Specs:       "Bore: 35mm | OD: 72mm",
		},
		Interchange: models.PartRecord{
			Part: "INT-7",
		},
	}
	if err := w.Write(row); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows := readAll(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	want := []string{
		"2014 Ford Focus", "2.0L L4",
		"SKP-100", "https://example.com/parts/100", `He said "ok", fine`, "Bore: 35mm | OD: 72mm",
		"INT-7", "", "", "",
	}
	if !reflect.DeepEqual(rows[1], want) {
		t.Errorf("row = %v, want %v", rows[1], want)
	}
}

func TestRowFlushedBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// No Close: the row must already be on disk.
	if err := w.Write(models.OutputRow{Vehicle: "V", Engine: "E"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows := readAll(t, path)
	if len(rows) != 2 {
		t.Errorf("got %d rows before Close, want 2", len(rows))
	}
	w.Close()
}

func TestAppendSkipsHeaderOnExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.Write(models.OutputRow{Vehicle: "first"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Close()

	a, err := Append(path)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := a.Write(models.OutputRow{Vehicle: "second"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	a.Close()

	rows := readAll(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][0] != "first" || rows[2][0] != "second" {
		t.Errorf("rows out of order: %v", rows[1:])
	}
}

func TestAppendWritesHeaderOnNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.csv")
	a, err := Append(path)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	a.Close()

	rows := readAll(t, path)
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], models.Header) {
		t.Errorf("new file must start with the header, got %v", rows)
	}
}
