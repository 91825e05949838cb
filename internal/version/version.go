// Package version provides version information for ctb
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version (set at build time)
	Version = "dev"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// Date is the build date (set at build time)
	Date = "unknown"
)

// SchemaFormat is the schema document version this build reads and writes.
const SchemaFormat = "v1.0.0"

// Info holds version information
type Info struct {
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	Platform     string
	SchemaFormat string
}

// Get returns version information
func Get() Info {
	return Info{
		Version:      Version,
		Commit:       Commit,
		BuildDate:    Date,
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SchemaFormat: SchemaFormat,
	}
}

// String returns a human-readable version string
func (i *Info) String() string {
	if i.Commit != "unknown" && len(i.Commit) > 7 {
		return fmt.Sprintf("%s (commit: %s, built: %s)", i.Version, i.Commit[:7], i.BuildDate)
	}
	return fmt.Sprintf("%s (built: %s)", i.Version, i.BuildDate)
}

// Full returns detailed version information
func (i *Info) Full() string {
	return fmt.Sprintf(`ctb version %s
Git commit: %s
Built: %s
Schema format: %s
Go version: %s
Platform: %s`,
		i.Version, i.Commit, i.BuildDate, i.SchemaFormat, i.GoVersion, i.Platform)
}
