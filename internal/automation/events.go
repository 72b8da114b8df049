package automation

import "time"

// Request is an automation-requested event: the caller wants an action
// performed and the engine must decide whether a stored automation covers it.
type Request struct {
	// Action is the symbolic name of the behavior being requested.
	Action string `json:"action"`

	// Parameters are the concrete values the action should run with.
	// Their names become the required-parameter set of the search.
	Parameters map[string]any `json:"parameters"`

	// Context carries concrete values tested against stored
	// contextPatterns (e.g. page state, user role).
	Context map[string]any `json:"context,omitempty"`

	// ExpectedOutcome is an optional description of what success looks like.
	ExpectedOutcome string `json:"expectedOutcome,omitempty"`

	// Website is the origin the request targets.
	Website string `json:"website,omitempty"`

	// TabID identifies the browser tab the request originated from.
	TabID int `json:"tabId,omitempty"`
}

// RecordingMetadata describes a completed recording session.
type RecordingMetadata struct {
	RecordedAt          time.Time `json:"recordedAt"`
	WebsiteURL          string    `json:"websiteUrl"`
	RecordingDurationMs int64     `json:"recordingDurationMs,omitempty"`
	StepCount           int       `json:"stepCount"`
	Elements            []string  `json:"elements,omitempty"`
	UserNotes           string    `json:"userNotes,omitempty"`
}

// ImplementedEvent is the notification that a recording session produced a
// new automation for the given request.
type ImplementedEvent struct {
	RequestID       string            `json:"requestId"`
	Action          string            `json:"action"`
	Script          string            `json:"script"`
	TemplatedScript string            `json:"templatedScript"`
	Metadata        RecordingMetadata `json:"metadata"`
}

// DecisionAction is the outcome kind of a handled request.
type DecisionAction string

const (
	// ActionExecute means a stored automation should run without asking.
	ActionExecute DecisionAction = "execute"

	// ActionReusePrompt means matches exist and the user should be asked.
	ActionReusePrompt DecisionAction = "reuse-prompt"

	// ActionRecordNew means no automation applies; record a new one.
	ActionRecordNew DecisionAction = "record-new"
)

// Decision is the engine's answer to a Request.
type Decision struct {
	Action DecisionAction `json:"action"`

	// Automation is the top-ranked match, set for execute and reuse-prompt.
	Automation *StoredAutomation `json:"automation,omitempty"`

	// Message is a human-readable explanation of the outcome.
	Message string `json:"message"`

	// TotalMatches is how many stored automations satisfied the criteria.
	TotalMatches int `json:"totalMatches,omitempty"`
}

// ExecutionResult is the timed envelope returned by the execution tracker.
// Execution failure is an expected, user-visible outcome, so it is carried
// here as data rather than as an error.
type ExecutionResult struct {
	Success         bool   `json:"success"`
	Result          any    `json:"result,omitempty"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	AutomationID    string `json:"automationId"`
}
