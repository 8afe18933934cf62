// Package docstore persists site content as JSON documents grouped by kind.
//
// A kind is a named collection ("blog", "projects", ...). Documents within a
// kind are keyed by their identity and listed most-recent-first.
package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist in its kind.
var ErrNotFound = errors.New("docstore: document not found")

// Document is one persisted record. Data holds the entity encoded as JSON.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Store is the persistence contract consumed by the site data store.
type Store interface {
	// FetchAll returns every document of kind, newest first.
	FetchAll(ctx context.Context, kind string) ([]Document, error)
	// Create stores doc and returns it as persisted. An empty ID is
	// replaced by a server-assigned one.
	Create(ctx context.Context, kind string, doc Document) (Document, error)
	// Replace overwrites the document stored under id.
	Replace(ctx context.Context, kind, id string, doc Document) error
	// Remove deletes the document stored under id.
	Remove(ctx context.Context, kind, id string) error
	Close() error
}

func assignID(doc Document) Document {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	return doc
}
