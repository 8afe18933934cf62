package docstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/siteengine?sslmode=disable"

var postgresDialect = dialect{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
    seq BIGSERIAL PRIMARY KEY,
    kind TEXT NOT NULL,
    id TEXT NOT NULL,
    data JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (kind, id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind, seq)`,
	},
	list:    `SELECT id, data::text FROM documents WHERE kind = $1 ORDER BY seq DESC`,
	insert:  `INSERT INTO documents (kind, id, data) VALUES ($1, $2, $3::jsonb)`,
	replace: `UPDATE documents SET data = $1::jsonb, updated_at = now() WHERE kind = $2 AND id = $3`,
	remove:  `DELETE FROM documents WHERE kind = $1 AND id = $2`,
}

// Postgres is a Store backed by a Postgres database.
type Postgres struct {
	*sqlStore
}

// NewPostgres connects with dsn (falls back to a local default), verifies the
// connection and creates the documents table.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	p := &Postgres{sqlStore: &sqlStore{db: db, d: postgresDialect}}
	if err := p.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}
