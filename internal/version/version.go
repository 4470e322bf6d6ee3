// Package version carries build metadata injected via -ldflags.
package version

var (
	// Version is the release version of the station binary.
	Version = "dev"
	// GitSHA identifies the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)
