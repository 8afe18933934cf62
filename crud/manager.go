// Package crud implements the controller behind every content management
// view: it opens create and edit forms, runs one add, update or delete at a
// time against injected operations, and turns each outcome into a transient
// feedback message.
//
// A Manager never touches collections itself. The operations it is bound to
// own persistence and the in-memory data; the Manager only tracks form state
// around their lifecycle.
package crud

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrMissingIdentity is returned by Edit for an item without identity.
	ErrMissingIdentity = errors.New("crud: item has no identity")
	// ErrUnsupported is returned when the entity kind does not offer the
	// requested operation.
	ErrUnsupported = errors.New("crud: operation not supported")
)

// State is a snapshot of a Manager.
type State[T Identifiable, U any] struct {
	FormVisible bool
	// Editing is nil while the form creates a new item.
	Editing *T
	Loading bool
	// Feedback is nil once the last message was dismissed.
	Feedback *Feedback
	// Draft holds the data of a save that failed so the form can be
	// re-rendered without losing input.
	Draft *U
}

// Creating reports whether the open form creates a new item.
func (s State[T, U]) Creating() bool { return s.FormVisible && s.Editing == nil }

type config struct {
	delay     time.Duration
	logger    *zap.Logger
	afterFunc afterFunc
}

// Option configures a Manager.
type Option func(*config)

// WithFeedbackDelay sets how long feedback stays visible. Zero or negative
// keeps feedback until the next operation or ClearFeedback.
func WithFeedbackDelay(d time.Duration) Option {
	return func(c *config) { c.delay = d }
}

// WithLogger sets the logger that records the errors hidden from users.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func withAfterFunc(f afterFunc) Option {
	return func(c *config) { c.afterFunc = f }
}

// Manager coordinates the create, edit, save, delete and cancel lifecycle for
// one entity kind. T is the stored entity, U its editable content fields.
type Manager[T Identifiable, U any] struct {
	ops Operations[U]
	cfg config

	mu          sync.Mutex
	formVisible bool
	editing     *T
	loading     bool
	feedback    *Feedback
	draft       *U
	timer       timer
	generation  uint64
	closed      bool
}

// New returns a Manager driving ops.
func New[T Identifiable, U any](ops Operations[U], opts ...Option) *Manager[T, U] {
	cfg := config{
		delay:     DefaultFeedbackDelay,
		logger:    zap.NewNop(),
		afterFunc: realAfterFunc,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Manager[T, U]{ops: ops, cfg: cfg}
}

func (m *Manager[T, U]) CanCreate() bool { return m.ops.Add != nil }
func (m *Manager[T, U]) CanUpdate() bool { return m.ops.Update != nil }
func (m *Manager[T, U]) CanDelete() bool { return m.ops.Delete != nil }

// State returns a copy of the current state.
func (m *Manager[T, U]) State() State[T, U] {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := State[T, U]{FormVisible: m.formVisible, Loading: m.loading}
	if m.editing != nil {
		e := *m.editing
		st.Editing = &e
	}
	if m.feedback != nil {
		f := *m.feedback
		st.Feedback = &f
	}
	if m.draft != nil {
		d := *m.draft
		st.Draft = &d
	}
	return st
}

// Loading reports whether a mutation is in flight.
func (m *Manager[T, U]) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// CreateNew opens an empty form.
func (m *Manager[T, U]) CreateNew() error {
	if !m.CanCreate() {
		return ErrUnsupported
	}
	m.mu.Lock()
	m.editing = nil
	m.draft = nil
	m.formVisible = true
	m.mu.Unlock()
	return nil
}

// Edit opens the form pre-filled with item. It fails without changing state
// when item has no identity.
func (m *Manager[T, U]) Edit(item T) error {
	if !m.CanUpdate() {
		return ErrUnsupported
	}
	if item.Identity() == "" {
		return ErrMissingIdentity
	}
	m.mu.Lock()
	m.editing = &item
	m.draft = nil
	m.formVisible = true
	m.mu.Unlock()
	return nil
}

// Cancel closes the form. It never calls an operation.
func (m *Manager[T, U]) Cancel() {
	m.mu.Lock()
	m.closeForm()
	m.mu.Unlock()
}

func (m *Manager[T, U]) closeForm() {
	m.formVisible = false
	m.editing = nil
	m.draft = nil
}

// Save creates data when original is nil and updates original otherwise.
// On success the form closes; on failure it stays open with data kept as
// the draft. Exactly one feedback message is produced per attempt, except
// when another mutation is in flight, in which case nothing happens and a
// busy message is returned without being stored.
func (m *Manager[T, U]) Save(ctx context.Context, data U, original *T, label string) Feedback {
	id := ""
	if original != nil {
		id = (*original).Identity()
	}

	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return busy()
	}
	switch {
	case original != nil && id == "":
		fb := missingIdentity("update", label)
		m.setFeedback(&fb)
		m.mu.Unlock()
		return fb
	case original == nil && m.ops.Add == nil:
		fb := unsupported("create", label)
		m.setFeedback(&fb)
		m.mu.Unlock()
		return fb
	case original != nil && m.ops.Update == nil:
		fb := unsupported("update", label)
		m.setFeedback(&fb)
		m.mu.Unlock()
		return fb
	}
	m.loading = true
	m.draft = &data
	m.setFeedback(nil)
	m.mu.Unlock()

	var (
		err error
		fb  Feedback
	)
	if original != nil {
		err = m.ops.Update(ctx, id, data)
		fb = updated(label)
	} else {
		err = m.ops.Add(ctx, data)
		fb = created(label)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.cfg.logger.Debug("save failed", zap.String("label", label), zap.String("id", id), zap.Error(err))
		fb = saveFailed(label)
	} else {
		m.closeForm()
	}
	m.setFeedback(&fb)
	return fb
}

// Delete removes item after confirm accepts DeletePrompt(label). The
// returned bool is false when nothing was attempted: the user declined, or
// another mutation is in flight. A declined confirmation leaves feedback
// untouched.
func (m *Manager[T, U]) Delete(ctx context.Context, item T, label string, confirm Confirmer) (Feedback, bool) {
	id := item.Identity()

	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return Feedback{}, false
	}
	if m.ops.Delete == nil {
		fb := unsupported("delete", label)
		m.setFeedback(&fb)
		m.mu.Unlock()
		return fb, true
	}
	if id == "" {
		fb := missingIdentity("delete", label)
		m.setFeedback(&fb)
		m.mu.Unlock()
		return fb, true
	}
	m.mu.Unlock()

	if confirm != nil && !confirm(DeletePrompt(label)) {
		return Feedback{}, false
	}

	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return Feedback{}, false
	}
	m.loading = true
	m.setFeedback(nil)
	m.mu.Unlock()

	err := m.ops.Delete(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	fb := deleted(label)
	if err != nil {
		m.cfg.logger.Debug("delete failed", zap.String("label", label), zap.String("id", id), zap.Error(err))
		fb = deleteFailed(label)
	} else {
		m.closeForm()
	}
	m.setFeedback(&fb)
	return fb, true
}

// ClearFeedback dismisses the current message, as on a view change.
func (m *Manager[T, U]) ClearFeedback() {
	m.mu.Lock()
	m.setFeedback(nil)
	m.mu.Unlock()
}

// Close stops the pending dismiss timer. The manager stays usable but no
// longer schedules dismissals.
func (m *Manager[T, U]) Close() {
	m.mu.Lock()
	m.closed = true
	m.stopTimer()
	m.mu.Unlock()
}

// setFeedback replaces the message and restarts the dismiss timer. Callers
// hold m.mu.
func (m *Manager[T, U]) setFeedback(fb *Feedback) {
	m.stopTimer()
	m.generation++
	m.feedback = fb
	if fb == nil || m.closed || m.cfg.delay <= 0 {
		return
	}
	gen := m.generation
	m.timer = m.cfg.afterFunc(m.cfg.delay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.generation == gen {
			m.feedback = nil
			m.timer = nil
		}
	})
}

func (m *Manager[T, U]) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
