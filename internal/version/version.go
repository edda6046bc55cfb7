// Package version carries build metadata injected via ldflags.
package version

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// GitCommit is the short commit hash of the build.
	GitCommit = ""
	// BuildDate is the build timestamp in RFC 3339.
	BuildDate = ""
)
