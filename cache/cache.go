// Package cache persists extracted part records in SQLite so repeated
// runs over the same guide page skip detail-surface navigation for
// parts already seen.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/use-agent/buyersguide/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS part_records (
	key        TEXT PRIMARY KEY,
	url        TEXT NOT NULL,
	kind       TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_part_records_created ON part_records (created_at);
`

// Store is a TTL cache of part records backed by a SQLite file.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens the cache database under dir. Entries older
// than ttl are treated as absent; ttl <= 0 disables expiry.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}

	dsn := filepath.Join(dir, "parts.db") +
		"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(10000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Key derives the cache key from the part URL and kind ("skp" or
// "interchange"). Kind is part of the key because the same detail URL
// can sit in both columns of a row.
func Key(url, kind string) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(kind))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached record for the URL and kind, if present and
// unexpired.
func (s *Store) Get(url, kind string) (models.PartRecord, bool, error) {
	var payload string
	var createdAt int64
	err := s.db.QueryRow(
		`SELECT payload, created_at FROM part_records WHERE key = ?`,
		Key(url, kind),
	).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PartRecord{}, false, nil
	}
	if err != nil {
		return models.PartRecord{}, false, fmt.Errorf("cache: get: %w", err)
	}

	if s.ttl > 0 && time.Since(time.Unix(createdAt, 0)) > s.ttl {
		return models.PartRecord{}, false, nil
	}

	var rec models.PartRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		// Corrupt payload; treat as a miss so the row gets re-fetched.
		return models.PartRecord{}, false, nil
	}
	return rec, true, nil
}

// Put stores or replaces the record for the URL and kind.
func (s *Store) Put(url, kind string, rec models.PartRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache: marshal: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO part_records (key, url, kind, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		Key(url, kind), url, kind, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// PruneExpired deletes entries older than the TTL and returns how many
// were removed. A no-op when expiry is disabled.
func (s *Store) PruneExpired() (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-s.ttl).Unix()
	res, err := s.db.Exec(`DELETE FROM part_records WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM part_records`); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
