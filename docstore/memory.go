package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is a process-local Store. Contents are lost on exit.
type Memory struct {
	mu   sync.Mutex
	seq  int64
	docs map[string]map[string]memoryDoc
}

type memoryDoc struct {
	seq  int64
	data []byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]memoryDoc)}
}

func (m *Memory) FetchAll(_ context.Context, kind string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type entry struct {
		id string
		memoryDoc
	}
	var entries []entry
	for id, d := range m.docs[kind] {
		entries = append(entries, entry{id: id, memoryDoc: d})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq > entries[j].seq })

	out := make([]Document, 0, len(entries))
	for _, e := range entries {
		out = append(out, Document{ID: e.id, Data: append([]byte(nil), e.data...)})
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, kind string, doc Document) (Document, error) {
	doc = assignID(doc)
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := m.docs[kind]
	if bucket == nil {
		bucket = make(map[string]memoryDoc)
		m.docs[kind] = bucket
	}
	if _, exists := bucket[doc.ID]; exists {
		return Document{}, fmt.Errorf("docstore: %s/%s already exists", kind, doc.ID)
	}
	m.seq++
	bucket[doc.ID] = memoryDoc{seq: m.seq, data: append([]byte(nil), doc.Data...)}
	return doc, nil
}

func (m *Memory) Replace(_ context.Context, kind, id string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.docs[kind][id]
	if !ok {
		return ErrNotFound
	}
	existing.data = append([]byte(nil), doc.Data...)
	m.docs[kind][id] = existing
	return nil
}

func (m *Memory) Remove(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[kind][id]; !ok {
		return ErrNotFound
	}
	delete(m.docs[kind], id)
	return nil
}

func (m *Memory) Close() error { return nil }
