package modules

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteResolver resolves modules from an embedded SQLite registry file,
// the default backend for `vivjson run`, needing no external services.
type SQLiteResolver struct {
	db *sql.DB
}

// OpenSQLite opens (and, if needed, initializes) a registry file.
func OpenSQLite(path string) (*SQLiteResolver, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open module registry: %w", err)
	}
	r := &SQLiteResolver{db: db}
	if err := r.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// NewSQLiteResolver wraps an already-open database handle. The schema is
// assumed to exist; tests use this with a mock.
func NewSQLiteResolver(db *sql.DB) *SQLiteResolver {
	return &SQLiteResolver{db: db}
}

func (r *SQLiteResolver) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS modules (
	name      TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	signature BLOB NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("initialize module registry schema: %w", err)
	}
	return nil
}

// Resolve fetches one module by name.
func (r *SQLiteResolver) Resolve(ctx context.Context, name string) (string, []byte, error) {
	var source string
	var signature []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT source, signature FROM modules WHERE name = ?", name,
	).Scan(&source, &signature)
	if err == sql.ErrNoRows {
		return "", nil, fmt.Errorf("module %q not found", name)
	}
	if err != nil {
		return "", nil, fmt.Errorf("query module %q: %w", name, err)
	}
	return source, signature, nil
}

// Publish inserts or replaces a module.
func (r *SQLiteResolver) Publish(ctx context.Context, name, source string, signature []byte) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO modules (name, source, signature) VALUES (?, ?, ?)",
		name, source, signature,
	)
	if err != nil {
		return fmt.Errorf("publish module %q: %w", name, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteResolver) Close() error { return r.db.Close() }
