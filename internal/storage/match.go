package storage

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/semantest/replay/internal/automation"
)

// rankEpsilon is the confidence gap under which two candidates are treated
// as tied and ordered by use count instead. Preferring a heavily-used
// automation over a marginally-more-confident but rarely-used one is
// deliberate.
const rankEpsilon = 0.1

// indexPath identifies which index a FindMatching call reads. Exactly one
// path is used per call, the first applicable in priority order; the
// remaining criteria are applied afterwards as post-index filters.
type indexPath int

const (
	idxActionWebsite indexPath = iota
	idxAction
	idxWebsite
	idxEventType
	idxFullScan
)

// selectIndex picks the most specific applicable index for the criteria.
func selectIndex(c automation.SearchCriteria) indexPath {
	switch {
	case c.Action != "" && c.Website != "":
		return idxActionWebsite
	case c.Action != "":
		return idxAction
	case c.Website != "":
		return idxWebsite
	case c.EventType != "":
		return idxEventType
	default:
		return idxFullScan
	}
}

// refineAndRank applies the post-index filters in order (required-parameter
// containment, confidence floor, context patterns) and ranks the survivors.
// Both backends funnel their index results through here so their observable
// behavior stays identical.
func refineAndRank(candidates []*automation.StoredAutomation, c automation.SearchCriteria) []*automation.StoredAutomation {
	matches := make([]*automation.StoredAutomation, 0, len(candidates))

	for _, a := range candidates {
		if len(c.Parameters) > 0 && !hasAllParameters(a, c.Parameters) {
			continue
		}
		if c.MinConfidence != nil && a.Metadata.Confidence < *c.MinConfidence {
			continue
		}
		if c.Context != nil && !matchesContext(a, c.Context) {
			continue
		}
		matches = append(matches, a)
	}

	rankMatches(matches)
	return matches
}

// hasAllParameters reports whether every required name appears in the
// automation's parameter list.
func hasAllParameters(a *automation.StoredAutomation, required []string) bool {
	for _, name := range required {
		found := false
		for _, have := range a.Parameters {
			if have == name {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchesContext tests the request context against the automation's
// contextPatterns. An automation without patterns matches any context.
// Otherwise every pattern key must be satisfied by the stringified context
// value: exact equality for plain patterns, full regexp match for patterns
// containing a '*' wildcard.
func matchesContext(a *automation.StoredAutomation, ctx map[string]any) bool {
	if len(a.Matching.ContextPatterns) == 0 {
		return true
	}

	for key, pattern := range a.Matching.ContextPatterns {
		value, ok := ctx[key]
		if !ok {
			return false
		}
		if !matchesPattern(pattern, fmt.Sprintf("%v", value)) {
			return false
		}
	}

	return true
}

// matchesPattern evaluates a single context pattern. A '*' in the pattern
// means "any substring"; everything else is literal.
func matchesPattern(pattern, value string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == value
	}

	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}

	re, err := regexp.Compile("^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return false
	}

	return re.MatchString(value)
}

// rankMatches sorts in place: confidence descending, with use count
// descending as the tie-break when confidences differ by at most
// rankEpsilon.
func rankMatches(matches []*automation.StoredAutomation) {
	sort.SliceStable(matches, func(i, j int) bool {
		ci := matches[i].Metadata.Confidence
		cj := matches[j].Metadata.Confidence
		if math.Abs(ci-cj) <= rankEpsilon {
			return matches[i].Metadata.UseCount > matches[j].Metadata.UseCount
		}
		return ci > cj
	})
}
