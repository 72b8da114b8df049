/*
Package cli implements the replay command surface: managing the automation
store (list, search, export, import, remove, clear) and exercising the
decision engine from the terminal.
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/semantest/replay/internal/automation"
	"github.com/semantest/replay/internal/config"
	"github.com/semantest/replay/internal/engine"
	"github.com/semantest/replay/internal/search"
	"github.com/semantest/replay/internal/storage"
)

// cliRunner is the Runner handed to the manager in CLI context. Real script
// execution belongs to the browser side; the CLI only manages the store.
type cliRunner struct{}

func (cliRunner) Run(_ context.Context, a *automation.StoredAutomation, _ map[string]any, _ map[string]any) (any, error) {
	return nil, errors.New("script execution is not available from the CLI")
}

// openManager builds the manager from configuration: explicit backend
// choice, optional full-text index rebuilt from the store. The returned
// close function releases the store and index.
func openManager() (*engine.Manager, func(), error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	var index *search.Index
	if cfg.Settings != nil && cfg.Settings.SearchIndex {
		index, err = search.New()
		if err != nil {
			store.Close()
			return nil, nil, err
		}

		list, err := store.ExportAll()
		if err != nil {
			index.Close()
			store.Close()
			return nil, nil, err
		}
		if err := index.Rebuild(list); err != nil {
			log.Printf("Warning: failed to build search index: %v", err)
		}
	}

	mgr := engine.NewManager(store, cliRunner{}, index)

	closeAll := func() {
		if index != nil {
			if err := index.Close(); err != nil {
				log.Printf("Warning: failed to close search index: %v", err)
			}
		}
		if err := store.Close(); err != nil {
			log.Printf("Warning: failed to close store: %v", err)
		}
	}

	return mgr, closeAll, nil
}

// openStore constructs the configured backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendSQLite:
		dbPath, err := cfg.DatabasePath()
		if err != nil {
			return nil, err
		}
		return storage.NewSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// printAutomation renders one automation in the list/search output format.
func printAutomation(a *automation.StoredAutomation) {
	fmt.Printf("  %s\n", a.ID)
	fmt.Printf("    Action:     %s\n", a.Action)
	fmt.Printf("    Website:    %s\n", a.Website)
	if len(a.Parameters) > 0 {
		fmt.Printf("    Parameters: %v\n", a.Parameters)
	}
	fmt.Printf("    Confidence: %.2f  Uses: %d\n", a.Metadata.Confidence, a.Metadata.UseCount)
	if a.Metadata.LastUsed != nil {
		fmt.Printf("    Last used:  %s\n", a.Metadata.LastUsed.Format("2006-01-02 15:04:05"))
	}
	if a.Metadata.UserNotes != "" {
		fmt.Printf("    Notes:      %s\n", a.Metadata.UserNotes)
	}
}
