package content

import (
	"context"
	"fmt"
	"sync"
)

// MemoryClient is an in-memory Client. It backs tests and local development
// without a content store.
type MemoryClient struct {
	mu        sync.RWMutex
	docs      []Document
	revisions map[string]map[string]Document // ref -> uid -> document

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryClient returns a MemoryClient holding docs in query order.
func NewMemoryClient(docs ...Document) *MemoryClient {
	return &MemoryClient{
		docs:      docs,
		revisions: make(map[string]map[string]Document),
	}
}

// Put adds or replaces a published document.
func (m *MemoryClient) Put(d Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].UID == d.UID {
			m.docs[i] = d
			return
		}
	}
	m.docs = append(m.docs, d)
}

// PutRevision stores a draft of d visible under ref.
func (m *MemoryClient) PutRevision(ref string, d Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revisions[ref] == nil {
		m.revisions[ref] = make(map[string]Document)
	}
	m.revisions[ref][d.UID] = d
}

// Query implements Client.
func (m *MemoryClient) Query(ctx context.Context, docType string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []Document
	for _, d := range m.docs {
		if d.Type == docType || d.Type == "" {
			out = append(out, d)
		}
	}
	return out, nil
}

// GetByUID implements Client. A ref nothing was stored under is unknown and
// reports ErrNotFound.
func (m *MemoryClient) GetByUID(ctx context.Context, docType, uid, ref string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return Document{}, m.Err
	}
	if ref != "" {
		rev, known := m.revisions[ref]
		if !known {
			return Document{}, fmt.Errorf("ref %q: %w", ref, ErrNotFound)
		}
		if d, ok := rev[uid]; ok {
			return d, nil
		}
	}
	for _, d := range m.docs {
		if d.UID == uid && (d.Type == docType || d.Type == "") {
			return d, nil
		}
	}
	return Document{}, fmt.Errorf("%s %q: %w", docType, uid, ErrNotFound)
}
