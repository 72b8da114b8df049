/*
Package storage persists stored automations and answers matching queries.

Two interchangeable backends implement the Store interface: a durable
SQLite-backed store (modernc.org/sqlite, pure Go) and an in-memory store
used as a fallback and in tests. Both run queries through the same
selection/filter/ranking pipeline in match.go, so for any sequence of calls
they produce identical observable results; only durability differs.

Backend choice is an explicit decision made by the caller at construction
time, never auto-detected.
*/
package storage

import (
	"errors"
	"fmt"

	"github.com/semantest/replay/internal/automation"
)

// ErrNotFound is returned when an operation references an automation id
// that does not exist.
var ErrNotFound = errors.New("automation not found")

// UsageNudge is how much a successful reuse raises confidence.
const UsageNudge = 0.05

// Store is the persistence contract for stored automations.
type Store interface {
	// Save upserts an automation keyed by id. Idempotent.
	Save(a *automation.StoredAutomation) error

	// FindMatching returns automations satisfying the criteria, ranked by
	// confidence descending with a 0.1-epsilon tie-break on use count.
	FindMatching(c automation.SearchCriteria) ([]*automation.StoredAutomation, error)

	// GetByID returns the automation or ErrNotFound.
	GetByID(id string) (*automation.StoredAutomation, error)

	// UpdateUsage atomically records a successful reuse: lastUsed = now,
	// useCount += 1, confidence = min(1, confidence+UsageNudge).
	// Returns ErrNotFound for an unknown id.
	UpdateUsage(id string) error

	// DeleteByID removes one automation. Deleting an unknown id is a no-op.
	DeleteByID(id string) error

	// Clear removes every automation.
	Clear() error

	// ExportAll returns deep copies of every stored automation.
	ExportAll() ([]*automation.StoredAutomation, error)

	// Import upserts each record by id. Records with a schema version newer
	// than automation.SchemaVersion are rejected.
	Import(list []*automation.StoredAutomation) error

	// Close releases backend resources.
	Close() error
}

// checkImportVersions rejects records written by a newer schema than this
// build understands. Older and current versions are imported verbatim;
// there is no migration logic.
func checkImportVersions(list []*automation.StoredAutomation) error {
	for _, a := range list {
		if a.Version > automation.SchemaVersion {
			return fmt.Errorf("automation %s has unsupported schema version %d (max %d)",
				a.ID, a.Version, automation.SchemaVersion)
		}
	}
	return nil
}
