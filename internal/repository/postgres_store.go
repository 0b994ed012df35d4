package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderpipe/internal/port"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS order_cache_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps cache values in a single key/value table.
// A positive quota caps the summed byte length of all stored values.
type PostgresStore struct {
	db         dbtx
	quotaBytes int
}

var _ port.KeyValueStore = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool, quotaBytes int) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}

	return &PostgresStore{
		db:         pool,
		quotaBytes: quotaBytes,
	}, nil
}

func NewPostgresStoreWithTx(tx pgx.Tx, quotaBytes int) *PostgresStore {
	return &PostgresStore{
		db:         tx, // use provided transaction instead
		quotaBytes: quotaBytes,
	}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("db.Exec: %w", mapStoreError(err))
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string

	err := s.db.QueryRow(ctx, `SELECT value FROM order_cache_kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db.QueryRow: %w", mapStoreError(err))
	}

	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := withTx(ctx, s.db, func(q dbtx) (struct{}, error) {
		if s.quotaBytes > 0 {
			var used int
			row := q.QueryRow(ctx, `SELECT COALESCE(SUM(octet_length(value)), 0) FROM order_cache_kv WHERE key <> $1`, key)
			if err := row.Scan(&used); err != nil {
				return struct{}{}, fmt.Errorf("q.QueryRow: %w", err)
			}

			if used+len(value) > s.quotaBytes {
				return struct{}{}, port.ErrQuotaExceeded
			}
		}

		_, err := q.Exec(ctx, `
			INSERT INTO order_cache_kv (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			key, value)
		if err != nil {
			return struct{}{}, fmt.Errorf("q.Exec: %w", err)
		}

		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", mapStoreError(err))
	}

	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM order_cache_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("db.Exec: %w", mapStoreError(err))
	}
	return nil
}

// mapStoreError marks connection level failures as port.ErrStorageUnavailable.
func mapStoreError(err error) error {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return errors.Join(port.ErrStorageUnavailable, err)
	}
	return err
}
