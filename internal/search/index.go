/*
Package search maintains a full-text index over stored automations.

The index answers free-form queries ("github login", "search cats") against
action names, websites, domains, and user notes. It complements, and never
replaces, the criteria matcher in the storage package: criteria matching is
the contract the decision engine depends on, while this index only backs the
interactive search surface.
*/
package search

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/semantest/replay/internal/automation"
)

// Index wraps an in-memory Bleve index over automation documents. It is
// rebuilt from the store at startup, so losing it costs nothing.
type Index struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Index{bleveIndex: index}, nil
}

// buildIndexMapping creates the Bleve mapping for automation documents.
func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textField := bleve.NewTextFieldMapping()
	docMapping.AddFieldMappingsAt("action", textField)
	docMapping.AddFieldMappingsAt("website", textField)
	docMapping.AddFieldMappingsAt("domain", textField)
	docMapping.AddFieldMappingsAt("notes", textField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}

// Add indexes one automation, replacing any previous document for its id.
func (i *Index) Add(a *automation.StoredAutomation) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc := map[string]any{
		"action":  a.Action,
		"website": a.Website,
		"domain":  a.Matching.DomainPattern,
		"notes":   a.Metadata.UserNotes,
	}

	if err := i.bleveIndex.Index(a.ID, doc); err != nil {
		return fmt.Errorf("failed to index automation %s: %w", a.ID, err)
	}
	return nil
}

// Remove drops one automation from the index.
func (i *Index) Remove(id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.bleveIndex.Delete(id); err != nil {
		return fmt.Errorf("failed to remove automation %s from index: %w", id, err)
	}
	return nil
}

// Rebuild replaces the index contents with the given automations in one
// batch.
func (i *Index) Rebuild(list []*automation.StoredAutomation) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := fresh.NewBatch()
	for _, a := range list {
		doc := map[string]any{
			"action":  a.Action,
			"website": a.Website,
			"domain":  a.Matching.DomainPattern,
			"notes":   a.Metadata.UserNotes,
		}
		if err := batch.Index(a.ID, doc); err != nil {
			return fmt.Errorf("failed to index automation %s: %w", a.ID, err)
		}
	}

	if err := fresh.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index automations: %w", err)
	}

	old := i.bleveIndex
	i.bleveIndex = fresh
	return old.Close()
}

// Search returns the ids of automations matching the query text, best
// first, capped at limit.
func (i *Index) Search(text string, limit int) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	query := bleve.NewMatchQuery(text)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)

	results, err := i.bleveIndex.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	ids := make([]string, 0, len(results.Hits))
	for _, hit := range results.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Count returns the number of indexed automations.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	count, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return count, nil
}

// Close closes the index and releases resources.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}
	return nil
}
