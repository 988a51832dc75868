package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteBackend persists the snapshot document in a local SQLite file, the
// default for single-user self-hosted runs.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the document database at path and applies
// pending migrations.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Get(ctx context.Context) ([]byte, bool, error) {
	var doc string
	err := b.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE key = ?`, StorageKey,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(doc), true, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (key, doc) VALUES (?, ?)`,
		StorageKey, string(data),
	)
	return err
}

func (b *SQLiteBackend) Delete(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM documents WHERE key = ?`, StorageKey,
	)
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
