package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Cursor persists the last externally-acknowledged update identifier for the
// inbox poller as a small JSON document.
type Cursor struct {
	path string
}

type cursorState struct {
	LastUpdateID int64 `json:"last_update_id"`
}

// NewCursor returns a cursor backed by the file at path.
func NewCursor(path string) (*Cursor, error) {
	if path == "" {
		return nil, fmt.Errorf("cursor path is required")
	}
	return &Cursor{path: path}, nil
}

// Load reads the cursor. A missing file means "start from the beginning"
// and yields zero.
func (c *Cursor) Load() (int64, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cursor %s: %w", c.path, err)
	}
	var state cursorState
	if err := json.Unmarshal(raw, &state); err != nil {
		return 0, fmt.Errorf("parse cursor %s: %w", c.path, err)
	}
	return state.LastUpdateID, nil
}

// Save writes the cursor. Callers only invoke it when new updates were
// actually observed, so a no-op run never rewrites a stale cursor.
func (c *Cursor) Save(lastUpdateID int64) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return fmt.Errorf("create cursor dir: %w", err)
	}
	raw, err := json.Marshal(cursorState{LastUpdateID: lastUpdateID})
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}
	if err := os.WriteFile(c.path, raw, 0o600); err != nil {
		return fmt.Errorf("write cursor %s: %w", c.path, err)
	}
	return nil
}
