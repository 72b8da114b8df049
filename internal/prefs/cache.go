/*
Package prefs is the time-bounded memory of a user's prior reuse/skip/record
decision for an action+website pair.

Entries are keyed by "{action}:{website|any}", expire lazily on read, and
are overwritten by later decisions for the same key. Time is read through an
injected clock so expiry is testable without sleeping.
*/
package prefs

import (
	"sync"
	"time"
)

// defaultTTL bounds a preference that carries no doNotAskFor directive.
const defaultTTL = 24 * time.Hour

// PreferenceAction is what the user asked the engine to do for a key.
type PreferenceAction string

const (
	// Reuse means matching automations run without a prompt.
	Reuse PreferenceAction = "reuse"

	// RecordNew means always record, never offer reuse.
	RecordNew PreferenceAction = "record-new"

	// Skip means do not automate this action at all.
	Skip PreferenceAction = "skip"
)

// DoNotAskFor types.
const (
	DoNotAskDuration = "duration"
	DoNotAskTimes    = "times"
)

// DoNotAskFor scopes how long a preference should be honored.
type DoNotAskFor struct {
	// Type is DoNotAskDuration (value in minutes) or DoNotAskTimes
	// (value in future occurrences).
	Type string `json:"type"`

	Value int `json:"value"`
}

// Preference is a user's remembered decision.
type Preference struct {
	Action      PreferenceAction `json:"action"`
	DoNotAskFor *DoNotAskFor     `json:"doNotAskFor,omitempty"`
}

type entry struct {
	pref  Preference
	until time.Time
}

// Cache holds live preference entries. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   func() time.Time
}

// NewCache creates a preference cache reading the real clock.
func NewCache() *Cache {
	return NewCacheWithClock(time.Now)
}

// NewCacheWithClock creates a preference cache with an injected clock.
func NewCacheWithClock(clock func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Key builds the cache key for an action+website pair. An empty website
// collapses to "any".
func Key(action, website string) string {
	if website == "" {
		website = "any"
	}
	return action + ":" + website
}

// Set stores a preference, computing its expiry from the doNotAskFor
// directive: duration values are minutes; "times" values are approximated
// as one hour per occurrence rather than literally counting N future
// requests, matching the behavior users already rely on. No directive means
// a 24 hour default.
func (c *Cache) Set(key string, pref Preference) {
	now := c.clock()

	ttl := defaultTTL
	if d := pref.DoNotAskFor; d != nil {
		switch d.Type {
		case DoNotAskDuration:
			ttl = time.Duration(d.Value) * time.Minute
		case DoNotAskTimes:
			ttl = time.Duration(d.Value) * time.Hour
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{pref: pref, until: now.Add(ttl)}
}

// Get returns the live preference for a key. Expired entries are deleted on
// the spot and reported as a miss; there is no background sweep.
func (c *Cache) Get(key string) (Preference, bool) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Preference{}, false
	}
	if now.After(e.until) {
		delete(c.entries, key)
		return Preference{}, false
	}
	return e.pref, true
}

// Len reports how many entries are currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
