package sitedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/siteengine/docstore"
)

// ErrNotFound is returned when a mutation targets an identity that is not in
// the collection.
var ErrNotFound = errors.New("sitedata: item not found")

// Entity is any record with a stable identity.
type Entity interface {
	Identity() string
}

// kindSpec describes how one entity kind is created and edited.
type kindSpec[T Entity, U any] struct {
	kind string
	// newID returns the identity for a new item, or "" to let the
	// persistence layer assign one.
	newID func(draft U, now time.Time, taken func(string) bool) string
	build func(id string, draft U, now time.Time) T
	// merge writes the content fields of draft over existing, keeping its
	// identity and any field the draft does not carry.
	merge func(existing T, draft U) T
	// withID sets a persistence-assigned identity.
	withID func(item T, id string) T
	// clone copies the nested slices of an item. Nil for flat kinds.
	clone func(item T) T
}

// Collection holds the canonical in-memory copy of one entity kind and
// reconciles it with the persistence layer. Mutations change memory only
// after the persistence call succeeds.
type Collection[T Entity, U any] struct {
	spec   kindSpec[T, U]
	db     docstore.Store
	logger *zap.Logger
	now    func() time.Time
	notify func(kind, op string, err error)

	// writeMu is held for the whole of each mutation, from identity
	// assignment to the in-memory update.
	writeMu sync.Mutex

	mu    sync.RWMutex
	items []T
}

func newCollection[T Entity, U any](s *Store, spec kindSpec[T, U]) *Collection[T, U] {
	return &Collection[T, U]{
		spec:   spec,
		db:     s.db,
		logger: s.logger.With(zap.String("kind", spec.kind)),
		now:    s.now,
		notify: s.notify,
	}
}

// Kind returns the persistence kind of the collection.
func (c *Collection[T, U]) Kind() string { return c.spec.kind }

// All returns a copy of the collection, most recent first.
func (c *Collection[T, U]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, it := range c.items {
		out[i] = c.copyOf(it)
	}
	return out
}

func (c *Collection[T, U]) copyOf(it T) T {
	if c.spec.clone == nil {
		return it
	}
	return c.spec.clone(it)
}

// Len returns the number of items.
func (c *Collection[T, U]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the item with the given identity.
func (c *Collection[T, U]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.Identity() == id {
			return c.copyOf(it), true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T, U]) taken(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.Identity() == id {
			return true
		}
	}
	return false
}

// Add persists a new item and inserts it at the front of the collection.
func (c *Collection[T, U]) Add(ctx context.Context, draft U) error {
	_, err := c.Create(ctx, draft)
	return err
}

// Create is Add returning the stored item.
func (c *Collection[T, U]) Create(ctx context.Context, draft U) (T, error) {
	var zero T
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	now := c.now()
	id := ""
	if c.spec.newID != nil {
		id = c.spec.newID(draft, now, c.taken)
	}
	item := c.copyOf(c.spec.build(id, draft, now))
	data, err := json.Marshal(item)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", c.spec.kind, err)
	}

	doc, err := c.db.Create(ctx, c.spec.kind, docstore.Document{ID: id, Data: data})
	if err != nil {
		c.fail("add", err)
		return zero, fmt.Errorf("add %s: %w", c.spec.kind, err)
	}
	if item.Identity() == "" && c.spec.withID != nil {
		item = c.spec.withID(item, doc.ID)
	}

	c.mu.Lock()
	c.items = append([]T{item}, c.items...)
	c.mu.Unlock()
	c.notify(c.spec.kind, "add", nil)
	return c.copyOf(item), nil
}

// Update persists draft over the item with identity id and merges it into
// the in-memory entry.
func (c *Collection[T, U]) Update(ctx context.Context, id string, draft U) error {
	if c.spec.merge == nil {
		return fmt.Errorf("update %s: %w", c.spec.kind, errors.ErrUnsupported)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	existing, ok := c.Get(id)
	if !ok {
		c.notify(c.spec.kind, "update", ErrNotFound)
		return fmt.Errorf("update %s %q: %w", c.spec.kind, id, ErrNotFound)
	}
	merged := c.copyOf(c.spec.merge(existing, draft))
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.spec.kind, err)
	}
	if err := c.db.Replace(ctx, c.spec.kind, id, docstore.Document{ID: id, Data: data}); err != nil {
		c.fail("update", err)
		return fmt.Errorf("update %s %q: %w", c.spec.kind, id, err)
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Identity() == id {
			c.items[i] = merged
			break
		}
	}
	c.mu.Unlock()
	c.notify(c.spec.kind, "update", nil)
	return nil
}

// Delete removes the item with identity id from persistence and memory.
func (c *Collection[T, U]) Delete(ctx context.Context, id string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.db.Remove(ctx, c.spec.kind, id); err != nil {
		c.fail("delete", err)
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("delete %s %q: %w", c.spec.kind, id, ErrNotFound)
		}
		return fmt.Errorf("delete %s %q: %w", c.spec.kind, id, err)
	}
	c.mu.Lock()
	kept := make([]T, 0, len(c.items))
	for _, it := range c.items {
		if it.Identity() != id {
			kept = append(kept, it)
		}
	}
	c.items = kept
	c.mu.Unlock()
	c.notify(c.spec.kind, "delete", nil)
	return nil
}

// replaceDoc persists item as-is and swaps it into memory. Used by kinds
// whose edits touch nested data; the caller holds writeMu.
func (c *Collection[T, U]) replaceDoc(ctx context.Context, op string, item T) error {
	item = c.copyOf(item)
	id := item.Identity()
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.spec.kind, err)
	}
	if err := c.db.Replace(ctx, c.spec.kind, id, docstore.Document{ID: id, Data: data}); err != nil {
		c.fail(op, err)
		return fmt.Errorf("%s %s %q: %w", op, c.spec.kind, id, err)
	}
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].Identity() == id {
			c.items[i] = item
			break
		}
	}
	c.mu.Unlock()
	c.notify(c.spec.kind, op, nil)
	return nil
}

// load replaces the collection with the persisted documents. Undecodable
// documents are skipped.
func (c *Collection[T, U]) load(ctx context.Context) error {
	docs, err := c.db.FetchAll(ctx, c.spec.kind)
	if err != nil {
		return err
	}
	items := make([]T, 0, len(docs))
	for _, d := range docs {
		var it T
		if err := json.Unmarshal(d.Data, &it); err != nil {
			c.logger.Warn("skipping undecodable document", zap.String("id", d.ID), zap.Error(err))
			continue
		}
		if it.Identity() == "" && c.spec.withID != nil {
			it = c.spec.withID(it, d.ID)
		}
		items = append(items, it)
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

func (c *Collection[T, U]) fail(op string, err error) {
	c.logger.Error("persistence call failed", zap.String("op", op), zap.Error(err))
	c.notify(c.spec.kind, op, err)
}
