package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/usefultools/curator/internal/catalog"
)

// JSONLStore keeps the log as line-delimited JSON: one item object per line,
// no enclosing array, trailing newline.
type JSONLStore struct {
	path   string
	logger *zap.Logger
}

// NewJSONLStore returns a store backed by the file at path. The file is not
// required to exist yet.
func NewJSONLStore(path string, logger *zap.Logger) (*JSONLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONLStore{path: path, logger: logger}, nil
}

// Load parses each line independently. A line that fails to decode is
// counted and skipped; one corrupt record never aborts the rest.
func (s *JSONLStore) Load(ctx context.Context) ([]catalog.Item, LoadStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, LoadStats{}, fmt.Errorf("load log: %w", err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, LoadStats{}, nil
		}
		return nil, LoadStats{}, fmt.Errorf("open log %s: %w", s.path, err)
	}
	defer f.Close()

	var (
		items []catalog.Item
		stats LoadStats
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		var item catalog.Item
		if err := json.Unmarshal(line, &item); err != nil {
			stats.Skipped++
			s.logger.Warn("skipping unparsable log line",
				zap.Int("line", stats.Lines),
				zap.Error(err),
			)
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read log %s: %w", s.path, err)
	}

	return items, stats, nil
}

// Save serializes the full collection in order and atomically replaces the
// log: the new content is written to a temp file in the same directory and
// renamed into place, so a crash mid-write never leaves a truncated log.
func (s *JSONLStore) Save(ctx context.Context, items []catalog.Item) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save log: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create log dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := range items {
		// Encode appends the newline that terminates each record.
		if err := enc.Encode(items[i]); err != nil {
			tmp.Close()
			return fmt.Errorf("encode item %s: %w", items[i].ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp log: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace log %s: %w", s.path, err)
	}
	return nil
}
