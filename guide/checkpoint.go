package guide

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const checkpointFile = "latest.json"

// Checkpoint records run progress so an interrupted run can resume
// without re-visiting completed rows.
type Checkpoint struct {
	StartURL     string    `json:"start_url"`
	OutputCSV    string    `json:"output_csv"`
	LastRowIndex int       `json:"last_row_index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SaveCheckpoint writes the checkpoint atomically (temp file + rename)
// under dir.
func SaveCheckpoint(dir string, cp Checkpoint) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: mkdir %s: %w", dir, err)
	}
	cp.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}

	tmp := filepath.Join(dir, checkpointFile+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, checkpointFile)); err != nil {
		return fmt.Errorf("checkpoint: rename: %w", err)
	}
	return nil
}

// LoadCheckpoint reads the latest checkpoint from dir. A missing file
// returns ok=false with no error.
func LoadCheckpoint(dir string) (Checkpoint, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, checkpointFile))
	if errors.Is(err, os.ErrNotExist) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("checkpoint: read: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, false, fmt.Errorf("checkpoint: parse: %w", err)
	}
	return cp, true, nil
}
