package modules

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresResolver resolves modules from a shared Postgres registry,
// selected when a DSN is configured: multiple hosts (dev servers, CI)
// publishing to and resolving from one registry.
type PostgresResolver struct {
	db *sql.DB
}

// OpenPostgres connects to a shared registry through the pgx driver.
func OpenPostgres(dsn string) (*PostgresResolver, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open module registry: %w", err)
	}
	r := &PostgresResolver{db: db}
	if err := r.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// NewPostgresResolver wraps an already-open database handle. The schema is
// assumed to exist; tests use this with a mock.
func NewPostgresResolver(db *sql.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

func (r *PostgresResolver) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS modules (
	name      TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	signature BYTEA NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("initialize module registry schema: %w", err)
	}
	return nil
}

// Resolve fetches one module by name.
func (r *PostgresResolver) Resolve(ctx context.Context, name string) (string, []byte, error) {
	var source string
	var signature []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT source, signature FROM modules WHERE name = $1", name,
	).Scan(&source, &signature)
	if err == sql.ErrNoRows {
		return "", nil, fmt.Errorf("module %q not found", name)
	}
	if err != nil {
		return "", nil, fmt.Errorf("query module %q: %w", name, err)
	}
	return source, signature, nil
}

// Publish inserts or updates a module.
func (r *PostgresResolver) Publish(ctx context.Context, name, source string, signature []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO modules (name, source, signature) VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET source = EXCLUDED.source, signature = EXCLUDED.signature`,
		name, source, signature,
	)
	if err != nil {
		return fmt.Errorf("publish module %q: %w", name, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *PostgresResolver) Close() error { return r.db.Close() }
