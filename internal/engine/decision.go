package engine

import (
	"fmt"
	"sort"

	"github.com/semantest/replay/internal/automation"
	"github.com/semantest/replay/internal/prefs"
)

// minRelevanceConfidence is the fixed floor applied to every derived search:
// automations below it are not considered reusable.
const minRelevanceConfidence = 0.5

// criteriaFromRequest derives the search criteria for a request: action,
// website, the names of all supplied parameters, the request context, and
// the fixed confidence floor.
func criteriaFromRequest(req automation.Request) automation.SearchCriteria {
	names := make([]string, 0, len(req.Parameters))
	for name := range req.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	floor := minRelevanceConfidence
	return automation.SearchCriteria{
		Action:        req.Action,
		Website:       req.Website,
		Parameters:    names,
		Context:       req.Context,
		MinConfidence: &floor,
	}
}

// HandleRequest turns a request into one of three outcomes: execute a
// stored automation, prompt the user about reuse, or record a new one.
//
// The preference cache is consulted before storage: a live skip or
// record-new preference short-circuits the search entirely. Storage
// failures propagate unmodified; there are no retries at this layer.
func (m *Manager) HandleRequest(req automation.Request) (*automation.Decision, error) {
	pref, havePref := m.prefs.Get(prefs.Key(req.Action, req.Website))
	if havePref {
		switch pref.Action {
		case prefs.Skip:
			return &automation.Decision{
				Action:  automation.ActionRecordNew,
				Message: "User chose to skip automation for this action",
			}, nil
		case prefs.RecordNew:
			return &automation.Decision{
				Action:  automation.ActionRecordNew,
				Message: "User preference is to always record new automations",
			}, nil
		}
	}

	matches, err := m.store.FindMatching(criteriaFromRequest(req))
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return &automation.Decision{
			Action:  automation.ActionRecordNew,
			Message: "No existing automation found",
		}, nil
	}

	if havePref && pref.Action == prefs.Reuse {
		return &automation.Decision{
			Action:       automation.ActionExecute,
			Automation:   matches[0],
			Message:      "Auto-executing automation based on user preference",
			TotalMatches: len(matches),
		}, nil
	}

	return &automation.Decision{
		Action:       automation.ActionReusePrompt,
		Automation:   matches[0],
		Message:      fmt.Sprintf("Found %d matching automation(s)", len(matches)),
		TotalMatches: len(matches),
	}, nil
}
