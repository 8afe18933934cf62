package crud

import "context"

// Identifiable is implemented by every manageable entity. Identity returns
// the slug or id of the item, or "" for an item that was never persisted.
type Identifiable interface {
	Identity() string
}

// Adder creates a new item from its content fields.
type Adder[U any] interface {
	Add(ctx context.Context, data U) error
}

// Updater rewrites the content fields of the item with the given identity.
type Updater[U any] interface {
	Update(ctx context.Context, id string, data U) error
}

// Deleter removes the item with the given identity.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Operations are the mutations a Manager drives. A nil field marks the
// operation as unsupported for the entity kind.
type Operations[U any] struct {
	Add    func(ctx context.Context, data U) error
	Update func(ctx context.Context, id string, data U) error
	Delete func(ctx context.Context, id string) error
}

// Bind returns the operations v implements. Any of Adder, Updater and
// Deleter that v does not implement is left unsupported.
func Bind[U any](v any) Operations[U] {
	var ops Operations[U]
	if a, ok := v.(Adder[U]); ok {
		ops.Add = a.Add
	}
	if u, ok := v.(Updater[U]); ok {
		ops.Update = u.Update
	}
	if d, ok := v.(Deleter); ok {
		ops.Delete = d.Delete
	}
	return ops
}
