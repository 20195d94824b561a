// Package version carries build information and checks for newer releases.
package version

import "fmt"

// Overridden at build time with -ldflags "-X github.com/cumulus-dev/cumulus/internal/version.Version=v1.2.3"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFullVersion returns detailed version information
func GetFullVersion() string {
	return fmt.Sprintf("cumulus %s (commit: %s, built: %s)", Version, Commit, BuildDate)
}
