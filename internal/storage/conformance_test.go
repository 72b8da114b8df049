package storage

import (
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/semantest/replay/internal/automation"
)

// conformance runs the same scenarios against every backend: the two
// implementations must be observably identical, only durability differs.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "automations.db"))
			if err != nil {
				t.Fatalf("NewSQLiteStore failed: %v", err)
			}
			return s
		},
	}
}

func runConformance(t *testing.T, scenario func(t *testing.T, s Store)) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			scenario(t, s)
		})
	}
}

func fullAutomation(id string) *automation.StoredAutomation {
	recordedAt := time.Date(2026, 2, 14, 9, 30, 0, 123456789, time.UTC)
	return &automation.StoredAutomation{
		ID:              id,
		EventType:       automation.DefaultEventType,
		Action:          "search",
		Website:         "example.com",
		Parameters:      []string{"query"},
		Script:          "fill #q cats; click #go",
		TemplatedScript: "fill #q {{query}}; click #go",
		Metadata: automation.Metadata{
			RecordedAt:          recordedAt,
			UseCount:            3,
			ActionsCount:        2,
			RecordingDurationMs: 4200,
			Confidence:          0.8,
			UserNotes:           "search flow",
		},
		Matching: automation.Matching{
			URLPattern:      "https://example.com/*",
			DomainPattern:   "example.com",
			ExactParameters: []string{"query"},
			ContextPatterns: map[string]string{"page": "results*"},
		},
		Version: automation.SchemaVersion,
	}
}

func TestConformance_SaveAndGet(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		want := fullAutomation("a1")
		if err := s.Save(want); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := s.GetByID("a1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}

		if got.Action != want.Action || got.Website != want.Website {
			t.Errorf("round trip lost action/website: %+v", got)
		}
		if got.Script != want.Script || got.TemplatedScript != want.TemplatedScript {
			t.Error("round trip lost scripts")
		}
		if !got.Metadata.RecordedAt.Equal(want.Metadata.RecordedAt) {
			t.Errorf("RecordedAt = %v, want %v", got.Metadata.RecordedAt, want.Metadata.RecordedAt)
		}
		if got.Metadata.LastUsed != nil {
			t.Error("LastUsed should be nil before any reuse")
		}
		if got.Matching.ContextPatterns["page"] != "results*" {
			t.Errorf("ContextPatterns = %v", got.Matching.ContextPatterns)
		}
		if got.Version != automation.SchemaVersion {
			t.Errorf("Version = %d", got.Version)
		}
	})
}

func TestConformance_SaveIsUpsert(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		a := fullAutomation("a1")
		if err := s.Save(a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		a.Metadata.UserNotes = "updated"
		if err := s.Save(a); err != nil {
			t.Fatalf("second Save failed: %v", err)
		}

		all, err := s.ExportAll()
		if err != nil {
			t.Fatalf("ExportAll failed: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected 1 record after upsert, got %d", len(all))
		}
		if all[0].Metadata.UserNotes != "updated" {
			t.Errorf("UserNotes = %q", all[0].Metadata.UserNotes)
		}
	})
}

func TestConformance_GetByIDNotFound(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		if _, err := s.GetByID("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConformance_FindMatchingIndexPaths(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		a := fullAutomation("a1") // search @ example.com
		a.Matching.ContextPatterns = nil

		b := fullAutomation("b1") // login @ example.com
		b.Action = "login"
		b.Parameters = []string{"username", "password"}
		b.Matching.ContextPatterns = nil

		c := fullAutomation("c1") // search @ other.com
		c.Website = "other.com"
		c.Matching.ContextPatterns = nil

		for _, rec := range []*automation.StoredAutomation{a, b, c} {
			if err := s.Save(rec); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		got, err := s.FindMatching(automation.SearchCriteria{Action: "search", Website: "example.com"})
		if err != nil {
			t.Fatalf("FindMatching failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != "a1" {
			t.Errorf("compound index: got %d results", len(got))
		}

		got, err = s.FindMatching(automation.SearchCriteria{Action: "search"})
		if err != nil {
			t.Fatalf("FindMatching failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("action index: got %d results, want 2", len(got))
		}

		got, err = s.FindMatching(automation.SearchCriteria{Website: "example.com"})
		if err != nil {
			t.Fatalf("FindMatching failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("website index: got %d results, want 2", len(got))
		}

		got, err = s.FindMatching(automation.SearchCriteria{EventType: automation.DefaultEventType})
		if err != nil {
			t.Fatalf("FindMatching failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("event type index: got %d results, want 3", len(got))
		}

		got, err = s.FindMatching(automation.SearchCriteria{})
		if err != nil {
			t.Fatalf("FindMatching failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("full scan: got %d results, want 3", len(got))
		}
	})
}

func TestConformance_FindMatchingRanking(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		confident := fullAutomation("confident")
		confident.Metadata.Confidence = 0.90
		confident.Metadata.UseCount = 2
		confident.Matching.ContextPatterns = nil

		popular := fullAutomation("popular")
		popular.Metadata.Confidence = 0.81
		popular.Metadata.UseCount = 9
		popular.Matching.ContextPatterns = nil

		if err := s.Save(confident); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := s.Save(popular); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		got, err := s.FindMatching(automation.SearchCriteria{Action: "search", Website: "example.com"})
		if err != nil {
			t.Fatalf("FindMatching failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d results, want 2", len(got))
		}
		if got[0].ID != "popular" {
			t.Errorf("epsilon tie-break: first result = %s, want popular", got[0].ID)
		}
	})
}

func TestConformance_UpdateUsage(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		a := fullAutomation("a1")
		a.Metadata.Confidence = 0.8
		a.Metadata.UseCount = 0
		if err := s.Save(a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		for i := 0; i < 2; i++ {
			if err := s.UpdateUsage("a1"); err != nil {
				t.Fatalf("UpdateUsage failed: %v", err)
			}
		}

		got, err := s.GetByID("a1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Metadata.UseCount != 2 {
			t.Errorf("UseCount = %d, want 2", got.Metadata.UseCount)
		}
		if math.Abs(got.Metadata.Confidence-0.9) > 1e-9 {
			t.Errorf("Confidence = %f, want 0.9", got.Metadata.Confidence)
		}
		if got.Metadata.LastUsed == nil {
			t.Error("LastUsed not set by UpdateUsage")
		}

		if err := s.UpdateUsage("missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConformance_UpdateUsageSaturates(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		a := fullAutomation("a1")
		a.Metadata.Confidence = 0.9
		if err := s.Save(a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		for i := 0; i < 5; i++ {
			if err := s.UpdateUsage("a1"); err != nil {
				t.Fatalf("UpdateUsage failed: %v", err)
			}
		}

		got, err := s.GetByID("a1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Metadata.Confidence != 1.0 {
			t.Errorf("Confidence = %f, want saturation at 1.0", got.Metadata.Confidence)
		}
	})
}

func TestConformance_UpdateUsageConcurrent(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		a := fullAutomation("a1")
		a.Metadata.UseCount = 0
		if err := s.Save(a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		const reuses = 40
		var wg sync.WaitGroup
		for i := 0; i < reuses; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.UpdateUsage("a1"); err != nil {
					t.Errorf("UpdateUsage failed: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := s.GetByID("a1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Metadata.UseCount != reuses {
			t.Errorf("UseCount = %d, want %d (lost updates)", got.Metadata.UseCount, reuses)
		}
	})
}

func TestConformance_DeleteAndClear(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		if err := s.Save(fullAutomation("a1")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := s.Save(fullAutomation("a2")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		// Deleting an unknown id is a no-op.
		if err := s.DeleteByID("missing"); err != nil {
			t.Errorf("DeleteByID(missing) = %v, want nil", err)
		}

		if err := s.DeleteByID("a1"); err != nil {
			t.Fatalf("DeleteByID failed: %v", err)
		}
		if _, err := s.GetByID("a1"); !errors.Is(err, ErrNotFound) {
			t.Error("a1 still present after delete")
		}

		if err := s.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		all, err := s.ExportAll()
		if err != nil {
			t.Fatalf("ExportAll failed: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("expected empty store after Clear, got %d", len(all))
		}
	})
}

func TestConformance_ExportClearImportRoundTrip(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		a := fullAutomation("a1")
		b := fullAutomation("b1")
		b.Action = "login"
		b.Metadata.Confidence = 0.65

		if err := s.Save(a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := s.Save(b); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		exported, err := s.ExportAll()
		if err != nil {
			t.Fatalf("ExportAll failed: %v", err)
		}

		if err := s.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if err := s.Import(exported); err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		restored, err := s.FindMatching(automation.SearchCriteria{})
		if err != nil {
			t.Fatalf("FindMatching failed: %v", err)
		}
		if len(restored) != 2 {
			t.Fatalf("restored %d records, want 2", len(restored))
		}

		byID := make(map[string]*automation.StoredAutomation)
		for _, r := range restored {
			byID[r.ID] = r
		}
		got, ok := byID["a1"]
		if !ok {
			t.Fatal("a1 missing after round trip")
		}
		if got.Metadata.Confidence != a.Metadata.Confidence {
			t.Errorf("Confidence = %f, want %f", got.Metadata.Confidence, a.Metadata.Confidence)
		}
		if !got.Metadata.RecordedAt.Equal(a.Metadata.RecordedAt) {
			t.Errorf("RecordedAt changed in round trip")
		}
		if got.Matching.ContextPatterns["page"] != "results*" {
			t.Errorf("ContextPatterns lost in round trip: %v", got.Matching.ContextPatterns)
		}
	})
}

func TestConformance_ImportRejectsFutureVersion(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		a := fullAutomation("a1")
		a.Version = automation.SchemaVersion + 1

		if err := s.Import([]*automation.StoredAutomation{a}); err == nil {
			t.Error("expected import of future schema version to fail")
		}
	})
}

func TestConformance_ExportReturnsDeepCopies(t *testing.T) {
	runConformance(t, func(t *testing.T, s Store) {
		if err := s.Save(fullAutomation("a1")); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		exported, err := s.ExportAll()
		if err != nil {
			t.Fatalf("ExportAll failed: %v", err)
		}
		exported[0].Metadata.UserNotes = "mutated"
		exported[0].Matching.ContextPatterns["page"] = "mutated"

		got, err := s.GetByID("a1")
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Metadata.UserNotes == "mutated" || got.Matching.ContextPatterns["page"] == "mutated" {
			t.Error("export handed out a shared reference to stored state")
		}
	})
}
