// Package version holds build information injected via ldflags.
package version

import "fmt"

// These variables are set via ldflags during build, e.g.
// -X github.com/philipparndt/cncview/version.Version=v1.2.0
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with commit and build date when known
func GetFullVersion() string {
	if Version == "dev" && GitCommit == "unknown" {
		return "dev"
	}
	commit := GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildDate)
}
