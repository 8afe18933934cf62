package siteengine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/siteengine/crud"
)

// viewManager is the part of a crud.Manager the console drives without
// knowing its entity type.
type viewManager interface {
	Cancel()
	ClearFeedback()
	Close()
}

// console is the admin state of one browser session: one CRUD manager per
// management view, created on first visit.
type console struct {
	mu       sync.Mutex
	managers map[string]viewManager
	view     string
	seen     time.Time
}

// enter switches the console to view. Leaving a view closes its form and
// drops its feedback.
func (cs *console) enter(view string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.seen = time.Now()
	if cs.view == view {
		return
	}
	if prev, ok := cs.managers[cs.view]; ok {
		prev.Cancel()
		prev.ClearFeedback()
	}
	cs.view = view
}

func (cs *console) close() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, m := range cs.managers {
		m.Close()
	}
	cs.managers = nil
}

// consoles maps session console ids to consoles and evicts idle ones.
type consoles struct {
	mu   sync.Mutex
	byID map[string]*console
	idle time.Duration
	stop chan struct{}
	once sync.Once
}

func newConsoles(idleSeconds int) *consoles {
	cs := &consoles{
		byID: make(map[string]*console),
		idle: time.Duration(idleSeconds) * time.Second,
		stop: make(chan struct{}),
	}
	go cs.cleanup()
	return cs
}

func (cs *consoles) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-cs.stop:
			return
		case <-ticker.C:
			cs.evict(time.Now().Add(-cs.idle))
		}
	}
}

func (cs *consoles) evict(cutoff time.Time) {
	cs.mu.Lock()
	var stale []*console
	for id, c := range cs.byID {
		c.mu.Lock()
		old := c.seen.Before(cutoff)
		c.mu.Unlock()
		if old {
			stale = append(stale, c)
			delete(cs.byID, id)
		}
	}
	cs.mu.Unlock()
	for _, c := range stale {
		c.close()
	}
}

func (cs *consoles) get(id string) *console {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.byID[id]
	if !ok {
		c = &console{managers: make(map[string]viewManager), seen: time.Now()}
		cs.byID[id] = c
	}
	return c
}

func (cs *consoles) drop(id string) {
	cs.mu.Lock()
	c, ok := cs.byID[id]
	delete(cs.byID, id)
	cs.mu.Unlock()
	if ok {
		c.close()
	}
}

// Close stops eviction and closes every console.
func (cs *consoles) Close() {
	cs.once.Do(func() { close(cs.stop) })
	cs.mu.Lock()
	all := cs.byID
	cs.byID = make(map[string]*console)
	cs.mu.Unlock()
	for _, c := range all {
		c.close()
	}
}

const consoleKey = "console"

// consoleFor returns the console of the session, assigning the session a
// console id on first use.
func (a *App) consoleFor(c echo.Context) (*console, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil, err
	}
	id, _ := sess.Values[consoleKey].(string)
	if id == "" {
		id = uuid.NewString()
		sess.Values[consoleKey] = id
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return nil, err
		}
	}
	return a.consoles.get(id), nil
}

func (a *App) dropConsole(c echo.Context) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return
	}
	if id, _ := sess.Values[consoleKey].(string); id != "" {
		a.consoles.drop(id)
	}
}

// managerFor returns the manager of view in cs, creating it with build.
func managerFor[T crud.Identifiable, U any](cs *console, view string, build func() *crud.Manager[T, U]) *crud.Manager[T, U] {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if m, ok := cs.managers[view].(*crud.Manager[T, U]); ok {
		return m
	}
	if cs.managers == nil {
		cs.managers = make(map[string]viewManager)
	}
	m := build()
	cs.managers[view] = m
	return m
}
