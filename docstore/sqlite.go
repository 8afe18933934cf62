package docstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS documents (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    id TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
    updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
    UNIQUE (kind, id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind, seq)`,
	},
	list:    `SELECT id, data FROM documents WHERE kind = ? ORDER BY seq DESC`,
	insert:  `INSERT INTO documents (kind, id, data) VALUES (?, ?, ?)`,
	replace: `UPDATE documents SET data = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE kind = ? AND id = ?`,
	remove:  `DELETE FROM documents WHERE kind = ? AND id = ?`,
}

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	*sqlStore
}

// NewSQLite opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the documents table.
func NewSQLite(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during a write; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLite{sqlStore: &sqlStore{db: db, d: sqliteDialect}}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
