// Package store persists the curated-link log. The log is the sole source
// of truth: every mutation loads the whole collection, changes it in memory,
// and rewrites it wholesale. Implementations take no lock; the external
// scheduler must serialize mutating runs.
package store

import (
	"context"

	"github.com/usefultools/curator/internal/catalog"
)

// LoadStats reports what a load saw, including units skipped under the
// fail-soft policy so drivers can surface them.
type LoadStats struct {
	Lines   int
	Skipped int
}

// Store is the record-log abstraction injected into every driver.
type Store interface {
	// Load reads the full collection in stored order. A missing log yields
	// an empty collection, not an error.
	Load(ctx context.Context) ([]catalog.Item, LoadStats, error)
	// Save replaces the log's entire prior content with the given
	// collection, preserving its order.
	Save(ctx context.Context, items []catalog.Item) error
}
