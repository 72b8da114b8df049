package storage

import (
	"sync"
	"time"

	"github.com/semantest/replay/internal/automation"
)

// MemoryStore is the non-durable Store backend: a mutex-guarded map.
// It is the fallback when no durable store is available, and the workhorse
// of the engine tests. All returned records are deep copies.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*automation.StoredAutomation
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*automation.StoredAutomation),
		now:     time.Now,
	}
}

// Save upserts an automation keyed by id.
func (s *MemoryStore) Save(a *automation.StoredAutomation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[a.ID] = a.Clone()
	return nil
}

// FindMatching selects candidates by the same index policy as the SQLite
// backend (here a field scan over the map), then refines and ranks them
// through the shared pipeline. Candidates are cloned under the read lock so
// ranking never races a concurrent UpdateUsage.
func (s *MemoryStore) FindMatching(c automation.SearchCriteria) ([]*automation.StoredAutomation, error) {
	s.mu.RLock()

	idx := selectIndex(c)
	var candidates []*automation.StoredAutomation
	for _, a := range s.records {
		switch idx {
		case idxActionWebsite:
			if a.Action == c.Action && a.Website == c.Website {
				candidates = append(candidates, a.Clone())
			}
		case idxAction:
			if a.Action == c.Action {
				candidates = append(candidates, a.Clone())
			}
		case idxWebsite:
			if a.Website == c.Website {
				candidates = append(candidates, a.Clone())
			}
		case idxEventType:
			if a.EventType == c.EventType {
				candidates = append(candidates, a.Clone())
			}
		default:
			candidates = append(candidates, a.Clone())
		}
	}
	s.mu.RUnlock()

	return refineAndRank(candidates, c), nil
}

// GetByID returns a copy of the automation or ErrNotFound.
func (s *MemoryStore) GetByID(id string) (*automation.StoredAutomation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

// UpdateUsage records a successful reuse. The read-modify-write runs under
// the write lock, so concurrent reuses of the same id never lose an
// increment.
func (s *MemoryStore) UpdateUsage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}

	now := s.now()
	a.Metadata.LastUsed = &now
	a.Metadata.UseCount++
	a.Metadata.Confidence += UsageNudge
	if a.Metadata.Confidence > 1.0 {
		a.Metadata.Confidence = 1.0
	}
	return nil
}

// DeleteByID removes one automation; unknown ids are a no-op.
func (s *MemoryStore) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// Clear removes every automation.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*automation.StoredAutomation)
	return nil
}

// ExportAll returns deep copies of every stored automation.
func (s *MemoryStore) ExportAll() ([]*automation.StoredAutomation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*automation.StoredAutomation, 0, len(s.records))
	for _, a := range s.records {
		out = append(out, a.Clone())
	}
	return out, nil
}

// Import upserts each record by id after checking schema versions.
func (s *MemoryStore) Import(list []*automation.StoredAutomation) error {
	if err := checkImportVersions(list); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range list {
		s.records[a.ID] = a.Clone()
	}
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error {
	return nil
}
