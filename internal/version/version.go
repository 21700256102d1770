// Package version carries build-time version information for the
// sketch2cad binary.
package version

import "fmt"

// Set at build time using -ldflags.
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Full returns the version with commit and build time.
func Full() string {
	return fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildTime)
}
