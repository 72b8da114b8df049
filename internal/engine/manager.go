/*
Package engine decides whether an automation request is served by a stored
automation or by recording a new one, and tracks executions.

The Manager is the public surface consumed by the extension layer. It owns
the preference cache, delegates persistence to an injected storage.Store
(durable or in-memory, chosen by the caller), and keeps an optional
full-text index in step with the store.
*/
package engine

import (
	"context"
	"errors"
	"log"

	"github.com/semantest/replay/internal/automation"
	"github.com/semantest/replay/internal/prefs"
	"github.com/semantest/replay/internal/search"
	"github.com/semantest/replay/internal/storage"
)

// Runner executes the underlying recorded script. It is an external
// collaborator (Playwright bridge, extension message, test stub); the
// engine only times it and records the outcome.
type Runner interface {
	Run(ctx context.Context, a *automation.StoredAutomation, params map[string]any, execContext map[string]any) (any, error)
}

// Manager orchestrates preference lookup, matching, execution tracking,
// and store maintenance.
type Manager struct {
	store  storage.Store
	prefs  *prefs.Cache
	runner Runner
	index  *search.Index // nil disables free-text search
}

// NewManager wires a manager around an explicitly chosen store backend.
// index may be nil.
func NewManager(store storage.Store, runner Runner, index *search.Index) *Manager {
	return &Manager{
		store:  store,
		prefs:  prefs.NewCache(),
		runner: runner,
		index:  index,
	}
}

// NewManagerWithCache is NewManager with an injected preference cache,
// used by tests that drive a fake clock.
func NewManagerWithCache(store storage.Store, runner Runner, index *search.Index, cache *prefs.Cache) *Manager {
	m := NewManager(store, runner, index)
	m.prefs = cache
	return m
}

// SaveAutomation persists the result of a recording session and returns
// the stored record.
func (m *Manager) SaveAutomation(ev automation.ImplementedEvent) (*automation.StoredAutomation, error) {
	a := automation.NewFromRecording(ev)

	if err := m.store.Save(a); err != nil {
		return nil, err
	}

	if m.index != nil {
		if err := m.index.Add(a); err != nil {
			log.Printf("Warning: failed to index automation %s: %v", a.ID, err)
		}
	}

	return a, nil
}

// SetUserPreference remembers a reuse/skip/record decision for an
// action+website pair.
func (m *Manager) SetUserPreference(action, website string, pref prefs.Preference) {
	m.prefs.Set(prefs.Key(action, website), pref)
}

// GetAllAutomations returns copies of every stored automation.
func (m *Manager) GetAllAutomations() ([]*automation.StoredAutomation, error) {
	return m.store.ExportAll()
}

// GetAutomation returns one automation by id.
func (m *Manager) GetAutomation(id string) (*automation.StoredAutomation, error) {
	return m.store.GetByID(id)
}

// DeleteAutomation removes one automation from the store and the index.
func (m *Manager) DeleteAutomation(id string) error {
	if err := m.store.DeleteByID(id); err != nil {
		return err
	}

	if m.index != nil {
		if err := m.index.Remove(id); err != nil {
			log.Printf("Warning: failed to remove automation %s from index: %v", id, err)
		}
	}
	return nil
}

// ExportAutomations returns deep copies suitable for serialization.
func (m *Manager) ExportAutomations() ([]*automation.StoredAutomation, error) {
	return m.store.ExportAll()
}

// ImportAutomations upserts previously exported records and reindexes.
func (m *Manager) ImportAutomations(list []*automation.StoredAutomation) error {
	if err := m.store.Import(list); err != nil {
		return err
	}
	return m.reindex()
}

// SearchAutomations runs a criteria query against the store.
func (m *Manager) SearchAutomations(c automation.SearchCriteria) ([]*automation.StoredAutomation, error) {
	return m.store.FindMatching(c)
}

// SearchText runs a free-text query against the index and resolves hits
// through the store. Hits deleted since indexing are skipped.
func (m *Manager) SearchText(text string, limit int) ([]*automation.StoredAutomation, error) {
	if m.index == nil {
		return nil, nil
	}

	ids, err := m.index.Search(text, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*automation.StoredAutomation, 0, len(ids))
	for _, id := range ids {
		a, err := m.store.GetByID(id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ClearAll removes every stored automation and empties the index.
func (m *Manager) ClearAll() error {
	if err := m.store.Clear(); err != nil {
		return err
	}
	return m.reindex()
}

// reindex rebuilds the optional index from the store.
func (m *Manager) reindex() error {
	if m.index == nil {
		return nil
	}

	list, err := m.store.ExportAll()
	if err != nil {
		return err
	}
	return m.index.Rebuild(list)
}
