package version

// Set at build time via -ldflags.
var (
	// Version is the release version of the converter
	Version = "dev"
	// GitSHA is the git commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)
