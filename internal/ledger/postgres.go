package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"leadrunner/platform/apperr"
)

// PostgresStore is a durable ledger backed by the processed_items table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed ledger.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// IsProcessed reports whether the item ID has already been handled.
func (s *PostgresStore) IsProcessed(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_items WHERE item_key = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, apperr.Gateway(fmt.Sprintf("ledger select %s", id), err)
	}
	return exists, nil
}

// MarkProcessed records the item ID. ON CONFLICT DO NOTHING keeps the first
// timestamp when an ID is marked twice.
func (s *PostgresStore) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO processed_items (item_key, processed_at) VALUES ($1, $2)
		 ON CONFLICT (item_key) DO NOTHING`,
		id, at.UTC(),
	)
	if err != nil {
		return apperr.Gateway(fmt.Sprintf("ledger insert %s", id), err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)
