package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/usefultools/curator/internal/catalog"
)

// PgxConn is the slice of pgx a PostgresStore needs; both *pgxpool.Pool and
// the pgxmock pool satisfy it.
type PgxConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps the collection in a single table while preserving the
// log's wholesale load/replace semantics: Save rewrites the entire table in
// one transaction. It exists to prove the store abstraction is substitutable
// without touching driver logic.
//
// Expected schema:
//
//	CREATE TABLE curated_items (
//	    position INT NOT NULL,
//	    id       TEXT PRIMARY KEY,
//	    doc      JSONB NOT NULL
//	);
type PostgresStore struct {
	conn   PgxConn
	logger *zap.Logger
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(conn PgxConn, logger *zap.Logger) (*PostgresStore, error) {
	if conn == nil {
		return nil, fmt.Errorf("pgx connection is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{conn: conn, logger: logger}, nil
}

// Load reads every item document in stored order. An undecodable document is
// counted and skipped, matching the file store's fail-soft policy.
func (s *PostgresStore) Load(ctx context.Context) ([]catalog.Item, LoadStats, error) {
	rows, err := s.conn.Query(ctx, `SELECT doc FROM curated_items ORDER BY position`)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var (
		items []catalog.Item
		stats LoadStats
	)
	for rows.Next() {
		stats.Lines++
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, stats, fmt.Errorf("scan item doc: %w", err)
		}
		var item catalog.Item
		if err := json.Unmarshal(doc, &item); err != nil {
			stats.Skipped++
			s.logger.Warn("skipping unparsable item document", zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, stats, fmt.Errorf("iterate items: %w", err)
	}
	return items, stats, nil
}

// Save replaces the whole table with the given collection in one
// transaction, preserving order via the position column.
func (s *PostgresStore) Save(ctx context.Context, items []catalog.Item) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM curated_items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for i := range items {
		doc, err := json.Marshal(items[i])
		if err != nil {
			return fmt.Errorf("marshal item %s: %w", items[i].ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO curated_items (position, id, doc) VALUES ($1, $2, $3)`,
			i, items[i].ID, doc,
		)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", items[i].ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
