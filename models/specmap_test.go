package models

import "testing"

func TestSpecMap_InsertionOrder(t *testing.T) {
	m := NewSpecMap()
	m.Set("A", "1")
	m.Set("B", "2")
	m.Set("C", "3")

	got := m.Render()
	want := "A: 1 | B: 2 | C: 3"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestSpecMap_OverwriteKeepsPosition(t *testing.T) {
	m := NewSpecMap()
	m.Set("A", "1")
	m.Set("B", "2")
	m.Set("B", "3")
	m.Set("C", "4")

	got := m.Render()
	want := "A: 1 | B: 3 | C: 4"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestSpecMap_EmptyKeyIgnored(t *testing.T) {
	m := NewSpecMap()
	m.Set("", "ghost")
	m.Set("A", "1")

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	if _, ok := m.Get(""); ok {
		t.Error("empty key should not be stored")
	}
}

func TestSpecMap_EmptyRender(t *testing.T) {
	if got := NewSpecMap().Render(); got != "" {
		t.Errorf("empty map should render as empty string, got %q", got)
	}
}

func TestOutputRow_Fields(t *testing.T) {
	row := OutputRow{
		Vehicle: "Ford F-150",
		Engine:  "5.0L V8",
		SKP:     PartRecord{Part: "SKP123", URL: "https://x/skp", Description: "pump", Specs: "A: 1"},
	}

	fields := row.Fields()
	if len(fields) != len(Header) {
		t.Fatalf("Fields() returned %d columns, header has %d", len(fields), len(Header))
	}
	if fields[0] != "Ford F-150" || fields[2] != "SKP123" || fields[5] != "A: 1" {
		t.Errorf("unexpected field layout: %v", fields)
	}
	// The interchange slots stay empty, not "null".
	for i := 6; i < 10; i++ {
		if fields[i] != "" {
			t.Errorf("field %d = %q, want empty", i, fields[i])
		}
	}
}
