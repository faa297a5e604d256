package docstore

import (
	"context"
	"sync"

	"github.com/jackzampolin/docuscribe/internal/types"
)

// MemoryStore is an in-memory Store for tests and embedding.
// Error fields inject failures into the matching operation.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*types.Document

	GetErr    error
	ListErr   error
	HealthErr error
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding docs.
func NewMemoryStore(docs ...*types.Document) *MemoryStore {
	m := &MemoryStore{docs: make(map[string]*types.Document, len(docs))}
	for _, d := range docs {
		m.Put(d)
	}
	return m
}

// Put adds or replaces a document.
func (m *MemoryStore) Put(doc *types.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
}

// Delete removes a document if present.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
}

func (m *MemoryStore) Get(_ context.Context, id string) (*types.Document, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (m *MemoryStore) List(_ context.Context, limit, offset int) ([]types.Summary, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.RLock()
	summaries := make([]types.Summary, 0, len(m.docs))
	for _, d := range m.docs {
		summaries = append(summaries, d.Summary())
	}
	m.mu.RUnlock()

	sortSummaries(summaries)
	return window(summaries, limit, offset), nil
}

func (m *MemoryStore) HealthCheck(context.Context) error {
	return m.HealthErr
}
