// Package version exposes build metadata stamped in via ldflags.
package version

import "fmt"

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the full version line shown by 'replay version'.
func String() string {
	return fmt.Sprintf("replay %s (commit %s, built %s)", Version, Commit, Date)
}
