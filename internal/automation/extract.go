package automation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// initialConfidence is assigned to a freshly recorded automation. It leaves
// headroom for the +0.05 nudge applied on each successful reuse.
const initialConfidence = 0.8

// paramToken matches {{name}} placeholders in a templated script.
var paramToken = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// ExtractParameters scans a templated script for {{name}} placeholders and
// returns the distinct names in first-seen order.
func ExtractParameters(templatedScript string) []string {
	var names []string
	seen := make(map[string]bool)

	for _, m := range paramToken.FindAllStringSubmatch(templatedScript, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}

// ExtractDomain parses a website string as a URL and returns its host,
// defaulting to an https:// scheme when none is present. Unparseable input
// is returned unchanged; a bad website string should never abort a save.
func ExtractDomain(website string) string {
	raw := website
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return website
	}

	return u.Hostname()
}

// GenerateURLPattern builds the wildcard URL pattern for a domain.
func GenerateURLPattern(domain string) string {
	return fmt.Sprintf("https://%s/*", domain)
}

// NewFromRecording builds a StoredAutomation from a completed recording
// session. Parameters and matching metadata are derived here, never
// user-supplied.
func NewFromRecording(ev ImplementedEvent) *StoredAutomation {
	params := ExtractParameters(ev.TemplatedScript)
	domain := ExtractDomain(ev.Metadata.WebsiteURL)

	return &StoredAutomation{
		ID:              uuid.NewString(),
		EventType:       DefaultEventType,
		Action:          ev.Action,
		Website:         domain,
		Parameters:      params,
		Script:          ev.Script,
		TemplatedScript: ev.TemplatedScript,
		Metadata: Metadata{
			RecordedAt:          ev.Metadata.RecordedAt,
			UseCount:            0,
			ActionsCount:        ev.Metadata.StepCount,
			RecordingDurationMs: ev.Metadata.RecordingDurationMs,
			Confidence:          initialConfidence,
			UserNotes:           ev.Metadata.UserNotes,
		},
		Matching: Matching{
			URLPattern:      GenerateURLPattern(domain),
			DomainPattern:   domain,
			ExactParameters: append([]string(nil), params...),
		},
		Version: SchemaVersion,
	}
}
