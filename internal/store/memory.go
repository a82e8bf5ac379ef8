package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Compile-time interface guard.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps records in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (m *MemoryStore) Save(_ context.Context, r Record) error {
	if r.ID == "" {
		return fmt.Errorf("save: empty record id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; ok {
		return fmt.Errorf("save scan %s: %w", r.ID, ErrExists)
	}
	m.records[r.ID] = r
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	return r, nil
}

func (m *MemoryStore) Latest(_ context.Context) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sorted := m.sorted()
	if len(sorted) == 0 {
		return Record{}, ErrNotFound
	}
	return sorted[0], nil
}

func (m *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sorted := m.sorted()
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]Summary, len(sorted))
	for i, r := range sorted {
		out[i] = summarize(r)
	}
	return out, nil
}

// sorted returns records newest first, id breaking ties. Must be called with
// m.mu held.
func (m *MemoryStore) sorted() []Record {
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }
