package storage

import (
	"testing"

	"github.com/semantest/replay/internal/automation"
)

func testAutomation(id, action, website string, confidence float64, useCount int) *automation.StoredAutomation {
	return &automation.StoredAutomation{
		ID:        id,
		EventType: automation.DefaultEventType,
		Action:    action,
		Website:   website,
		Metadata: automation.Metadata{
			Confidence: confidence,
			UseCount:   useCount,
		},
		Version: automation.SchemaVersion,
	}
}

func TestSelectIndex(t *testing.T) {
	tests := []struct {
		name string
		c    automation.SearchCriteria
		want indexPath
	}{
		{"action+website", automation.SearchCriteria{Action: "search", Website: "example.com"}, idxActionWebsite},
		{"action only", automation.SearchCriteria{Action: "search"}, idxAction},
		{"website only", automation.SearchCriteria{Website: "example.com"}, idxWebsite},
		{"event type only", automation.SearchCriteria{EventType: "automationRequested"}, idxEventType},
		{"empty criteria", automation.SearchCriteria{}, idxFullScan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selectIndex(tt.c); got != tt.want {
				t.Errorf("selectIndex = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankMatches_EpsilonTieBreak(t *testing.T) {
	// 0.90 vs 0.81 differ by 0.09 <= 0.1: use count wins.
	a := testAutomation("a", "search", "example.com", 0.90, 2)
	b := testAutomation("b", "search", "example.com", 0.81, 9)

	matches := []*automation.StoredAutomation{a, b}
	rankMatches(matches)

	if matches[0].ID != "b" {
		t.Errorf("expected heavily-used automation first, got %s", matches[0].ID)
	}
}

func TestRankMatches_ConfidenceWins(t *testing.T) {
	// 0.95 vs 0.70 differ by more than 0.1: confidence wins regardless of
	// use count.
	a := testAutomation("a", "search", "example.com", 0.95, 0)
	b := testAutomation("b", "search", "example.com", 0.70, 100)

	matches := []*automation.StoredAutomation{b, a}
	rankMatches(matches)

	if matches[0].ID != "a" {
		t.Errorf("expected higher-confidence automation first, got %s", matches[0].ID)
	}
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		want    bool
	}{
		{"abc", "abc", true},
		{"abc", "abcd", false},
		{"abc*", "abcdefg", true},
		{"abc*", "xabc", false},
		{"*bc", "abc", true},
		{"a*c", "aXXXc", true},
		{"a*c", "ac", true},
		{"a*c", "acx", false},
	}

	for _, tt := range tests {
		if got := matchesPattern(tt.pattern, tt.value); got != tt.want {
			t.Errorf("matchesPattern(%q, %q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
		}
	}
}

func TestMatchesContext(t *testing.T) {
	a := testAutomation("a", "search", "example.com", 0.9, 0)
	a.Matching.ContextPatterns = map[string]string{"page": "results*"}

	if !matchesContext(a, map[string]any{"page": "resultsView"}) {
		t.Error("expected wildcard context to match")
	}
	if matchesContext(a, map[string]any{"page": "home"}) {
		t.Error("expected mismatching context to fail")
	}
	if matchesContext(a, map[string]any{"other": "resultsView"}) {
		t.Error("expected missing context key to fail")
	}

	// No patterns: matches any context.
	b := testAutomation("b", "search", "example.com", 0.9, 0)
	if !matchesContext(b, map[string]any{"page": "anything"}) {
		t.Error("expected pattern-free automation to match any context")
	}
}

func TestRefineAndRank_Filters(t *testing.T) {
	withParams := testAutomation("params", "search", "example.com", 0.9, 0)
	withParams.Parameters = []string{"query", "lang"}

	lowConfidence := testAutomation("low", "search", "example.com", 0.3, 0)
	lowConfidence.Parameters = []string{"query"}

	wrongContext := testAutomation("ctx", "search", "example.com", 0.9, 0)
	wrongContext.Parameters = []string{"query"}
	wrongContext.Matching.ContextPatterns = map[string]string{"role": "admin"}

	candidates := []*automation.StoredAutomation{withParams, lowConfidence, wrongContext}

	floor := 0.5
	got := refineAndRank(candidates, automation.SearchCriteria{
		Parameters:    []string{"query"},
		MinConfidence: &floor,
		Context:       map[string]any{"role": "viewer"},
	})

	if len(got) != 1 || got[0].ID != "params" {
		t.Fatalf("expected only %q to survive, got %d results", "params", len(got))
	}
}

func TestRefineAndRank_AbsentFiltersPassEverything(t *testing.T) {
	withCtx := testAutomation("ctx", "search", "example.com", 0.2, 0)
	withCtx.Matching.ContextPatterns = map[string]string{"role": "admin"}

	got := refineAndRank([]*automation.StoredAutomation{withCtx}, automation.SearchCriteria{})

	if len(got) != 1 {
		t.Fatalf("expected absent criteria to impose no restriction, got %d results", len(got))
	}
}
