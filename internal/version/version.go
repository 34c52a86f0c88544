package version

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of Charity Prep
	Version = "0.3.0"

	// ProjectURL is the project homepage
	ProjectURL = "https://github.com/charityprep/charityprep"
)

// Commit is set at build time with -ldflags "-X charityprep/internal/version.Commit=..."
var Commit = "dev"

// GetVersion returns the current version
func GetVersion() string {
	return Version
}

// Info describes the running build for the health endpoint
func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"go":      runtime.Version(),
		"build":   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
