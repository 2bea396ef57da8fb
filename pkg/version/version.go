// Package version exposes build metadata set via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the short git revision.
	Commit = "unknown"
)

// String renders the version line reported at startup.
func String() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
