package cache

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresStore. *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	getEntry   = `SELECT value FROM cache_entries WHERE key = $1`
	putEntry   = `INSERT INTO cache_entries (key, value, updated_at) VALUES ($1, $2, now()) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	evictEntry = `DELETE FROM cache_entries WHERE key = $1`
)

// PostgresStore keeps cache slots in the cache_entries table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore returns a Store backed by db. The schema comes from the
// migrations directory.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx, getEntry, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, putEntry, key, value)
	return err
}

func (s *PostgresStore) Evict(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, evictEntry, key)
	return err
}
