package docstore

import (
	"context"
	"database/sql"
	"fmt"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	schema  []string
	list    string
	insert  string
	replace string
	remove  string
}

// sqlStore implements Store over database/sql. Rows live in a single
// documents table keyed by (kind, id); seq preserves insertion order.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func (s *sqlStore) ensureSchema(ctx context.Context) error {
	for _, stmt := range s.d.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// FetchAll returns every document of kind ordered by insertion, newest first.
func (s *sqlStore) FetchAll(ctx context.Context, kind string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, s.d.list, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: []byte(data)})
	}
	return docs, rows.Err()
}

// Create inserts doc, assigning an id when the caller left it empty.
func (s *sqlStore) Create(ctx context.Context, kind string, doc Document) (Document, error) {
	doc = assignID(doc)
	if _, err := s.db.ExecContext(ctx, s.d.insert, kind, doc.ID, string(doc.Data)); err != nil {
		return Document{}, fmt.Errorf("insert %s/%s: %w", kind, doc.ID, err)
	}
	return doc, nil
}

// Replace overwrites the data of an existing document.
func (s *sqlStore) Replace(ctx context.Context, kind, id string, doc Document) error {
	res, err := s.db.ExecContext(ctx, s.d.replace, string(doc.Data), kind, id)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", kind, id, err)
	}
	return requireAffected(res)
}

// Remove deletes a document by id.
func (s *sqlStore) Remove(ctx context.Context, kind, id string) error {
	res, err := s.db.ExecContext(ctx, s.d.remove, kind, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	return requireAffected(res)
}

// Close closes the underlying database connection.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
