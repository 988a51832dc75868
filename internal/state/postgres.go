package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend persists the snapshot document in Postgres, for
// deployments that already run one.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings, and applies pending migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := migratePostgres(dsn); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresBackend{pool: pool}, nil
}

func (b *PostgresBackend) Get(ctx context.Context) ([]byte, bool, error) {
	var doc string
	err := b.pool.QueryRow(ctx,
		`SELECT doc FROM documents WHERE key = $1`, StorageKey,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc), true, nil
}

func (b *PostgresBackend) Put(ctx context.Context, data []byte) error {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO documents (key, doc, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		StorageKey, string(data),
	)
	return err
}

func (b *PostgresBackend) Delete(ctx context.Context) error {
	_, err := b.pool.Exec(ctx,
		`DELETE FROM documents WHERE key = $1`, StorageKey,
	)
	return err
}

func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
