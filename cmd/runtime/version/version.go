// Package version exposes the build version of the binaries.
package version

import "fmt"

// Set at link time with -ldflags "-X ...".
var (
	gitTag    = "Unknown"
	gitCommit = "Unknown"
	buildDate = "Unknown"
)

// Get returns the version string of the running binary.
func Get() string {
	return fmt.Sprintf("%s (%s, built %s)", gitTag, gitCommit, buildDate)
}
