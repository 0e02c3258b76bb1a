// Package version exposes build-time version information.
package version

// Set at build time via -ldflags.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// GitCommit is the source commit hash.
	GitCommit = "unknown"
)
