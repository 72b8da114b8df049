/*
Package automation defines the stored automation record, the typed payloads
exchanged with the recording and UI layers, and the pattern-extraction
utilities that derive matching metadata from a recorded script.

A StoredAutomation is a learned implementation of one action on one website.
Its matching block is part of the persisted contract consumed by the
extension layer, so field names are stable camelCase JSON.
*/
package automation

import "time"

// SchemaVersion is the current version tag written to new records.
// There is no migration logic yet; import rejects records from the future.
const SchemaVersion = 1

// DefaultEventType is the event type assigned to automations created from
// a recording session.
const DefaultEventType = "automationRequested"

// Metadata tracks the usage and confidence lifecycle of a stored automation.
type Metadata struct {
	// RecordedAt is when the recording session completed.
	RecordedAt time.Time `json:"recordedAt"`

	// LastUsed is the time of the most recent successful reuse, if any.
	LastUsed *time.Time `json:"lastUsed,omitempty"`

	// UseCount is the number of successful reuses. Monotonic, never reset.
	UseCount int `json:"useCount"`

	// ActionsCount is the number of recorded steps in the script.
	ActionsCount int `json:"actionsCount"`

	// RecordingDurationMs is how long the recording session took.
	RecordingDurationMs int64 `json:"recordingDuration,omitempty"`

	// Confidence estimates reliability in [0,1]. It rises by 0.05 on each
	// successful reuse and saturates at 1.0.
	Confidence float64 `json:"confidence"`

	// UserNotes is free-form text attached by the user during recording.
	UserNotes string `json:"userNotes,omitempty"`
}

// Matching holds the derived metadata used to decide whether a stored
// automation applies to a new request.
type Matching struct {
	// URLPattern is a wildcard pattern over the website URL,
	// e.g. "https://example.com/*".
	URLPattern string `json:"urlPattern,omitempty"`

	// DomainPattern is the bare domain the automation was recorded on.
	DomainPattern string `json:"domainPattern,omitempty"`

	// ExactParameters is a copy of the parameter names the script expects.
	ExactParameters []string `json:"exactParameters"`

	// ContextPatterns narrows which request contexts the automation applies
	// to. A pattern is an exact value, or contains a single '*' wildcard
	// meaning "any substring". An absent map matches every context.
	ContextPatterns map[string]string `json:"contextPatterns,omitempty"`
}

// StoredAutomation is a learned, reusable implementation of an action on a
// website plus the metadata used to match it against future requests.
type StoredAutomation struct {
	// ID is an opaque unique identifier assigned at creation. Immutable.
	ID string `json:"id"`

	// EventType is the request event kind this automation answers.
	EventType string `json:"eventType"`

	// Action is the symbolic name of the automated behavior (e.g. "search").
	Action string `json:"action"`

	// Website is the origin/domain the automation applies to.
	Website string `json:"website"`

	// Parameters are the distinct parameter names the script expects,
	// in first-seen order. Derived from the templated script.
	Parameters []string `json:"parameters"`

	// Script is the raw recorded procedure, serialized by the recorder.
	Script string `json:"script"`

	// TemplatedScript is the recorded procedure with concrete values
	// replaced by {{name}} placeholders.
	TemplatedScript string `json:"templatedScript"`

	Metadata Metadata `json:"metadata"`
	Matching Matching `json:"matching"`

	// Version is the schema version tag, currently always 1.
	Version int `json:"version"`
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate persisted state through a returned pointer.
func (a *StoredAutomation) Clone() *StoredAutomation {
	if a == nil {
		return nil
	}
	c := *a
	if a.Metadata.LastUsed != nil {
		t := *a.Metadata.LastUsed
		c.Metadata.LastUsed = &t
	}
	if a.Parameters != nil {
		c.Parameters = append([]string(nil), a.Parameters...)
	}
	if a.Matching.ExactParameters != nil {
		c.Matching.ExactParameters = append([]string(nil), a.Matching.ExactParameters...)
	}
	if a.Matching.ContextPatterns != nil {
		c.Matching.ContextPatterns = make(map[string]string, len(a.Matching.ContextPatterns))
		for k, v := range a.Matching.ContextPatterns {
			c.Matching.ContextPatterns[k] = v
		}
	}
	return &c
}

// SearchCriteria is the derived query used to search stored automations.
// Zero-valued fields are treated as absent and impose no restriction.
type SearchCriteria struct {
	// EventType restricts matches to a single event kind.
	EventType string

	// Action restricts matches to one symbolic action name.
	Action string

	// Website restricts matches to one origin/domain.
	Website string

	// Parameters are names the stored automation must all support.
	Parameters []string

	// Context holds concrete values tested against each candidate's
	// contextPatterns.
	Context map[string]any

	// MinConfidence filters out candidates below the floor when non-nil.
	MinConfidence *float64
}
