package guide

import (
	"testing"
)

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()

	in := Checkpoint{
		StartURL:     "https://example.com/guide",
		OutputCSV:    "out.csv",
		LastRowIndex: 7,
	}
	if err := SaveCheckpoint(dir, in); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}

	out, ok, err := LoadCheckpoint(dir)
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if !ok {
		t.Fatal("expected a checkpoint")
	}
	if out.StartURL != in.StartURL || out.OutputCSV != in.OutputCSV || out.LastRowIndex != in.LastRowIndex {
		t.Errorf("got %+v, want %+v", out, in)
	}
	if out.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestLoadCheckpointMissing(t *testing.T) {
	_, ok, err := LoadCheckpoint(t.TempDir())
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if ok {
		t.Error("empty dir must report no checkpoint")
	}
}

func TestSaveCheckpointOverwrites(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		if err := SaveCheckpoint(dir, Checkpoint{LastRowIndex: i}); err != nil {
			t.Fatalf("SaveCheckpoint: %v", err)
		}
	}

	cp, ok, err := LoadCheckpoint(dir)
	if err != nil || !ok {
		t.Fatalf("LoadCheckpoint: ok=%v err=%v", ok, err)
	}
	if cp.LastRowIndex != 2 {
		t.Errorf("LastRowIndex = %d, want the latest save", cp.LastRowIndex)
	}
}
