package cache

import (
	"testing"
	"time"

	"github.com/use-agent/buyersguide/models"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t, time.Hour)

	rec := models.PartRecord{
		Part:        "SKP12345",
		URL:         "https://example.com/parts/12345",
		Description: "Front wheel bearing",
		Specs:       "Bore: 35mm | OD: 72mm",
	}
	if err := s.Put(rec.URL, "skp", rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(rec.URL, "skp")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != rec {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

func TestGetMiss(t *testing.T) {
	s := openTestStore(t, time.Hour)

	_, ok, err := s.Get("https://example.com/nope", "skp")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown URL")
	}
}

func TestKindSeparatesEntries(t *testing.T) {
	s := openTestStore(t, time.Hour)

	url := "https://example.com/parts/99"
	if err := s.Put(url, "skp", models.PartRecord{Part: "A"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, ok, err := s.Get(url, "interchange")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("interchange lookup must not hit the skp entry")
	}
}

func TestExpiredEntryIsMiss(t *testing.T) {
	s := openTestStore(t, time.Nanosecond)

	url := "https://example.com/parts/1"
	if err := s.Put(url, "skp", models.PartRecord{Part: "A"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, ok, err := s.Get(url, "skp")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("entry older than the TTL must read as a miss")
	}
}

func TestPruneExpired(t *testing.T) {
	s := openTestStore(t, time.Nanosecond)

	if err := s.Put("https://example.com/a", "skp", models.PartRecord{Part: "A"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// created_at has second resolution, so make the entry visibly old.
	if _, err := s.db.Exec(`UPDATE part_records SET created_at = created_at - 60`); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	n, err := s.PruneExpired()
	if err != nil {
		t.Fatalf("PruneExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d entries, want 1", n)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t, time.Hour)

	if err := s.Put("https://example.com/a", "skp", models.PartRecord{Part: "A"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	_, ok, err := s.Get("https://example.com/a", "skp")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected miss after Clear")
	}
}

func TestOverwriteReplaces(t *testing.T) {
	s := openTestStore(t, time.Hour)

	url := "https://example.com/parts/7"
	if err := s.Put(url, "skp", models.PartRecord{Part: "old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(url, "skp", models.PartRecord{Part: "new"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(url, "skp")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got.Part != "new" {
		t.Errorf("got %+v, want overwritten record", got)
	}
}
