// Package vars holds build-time variables populated via the linker (ldflags).
package vars

import (
	"fmt"
	"io"
	"strconv"
	"time"
)

// License of the project
const License = "AGPL-3.0"

var (
	// Name of the project
	Name = "a2sim"

	// Version of application (git tag) semver/tag, e.g. v1.2.3
	Version = "dev"

	// Commit is the current git commit, full or short git SHA
	Commit = "unknown"

	// Revision build, count of commits
	Revision = 0

	// BuildTime is the time of start build app, RFC3339 UTC
	BuildTime = time.Unix(0, 0).UTC()

	// URL to repository (https)
	URL = "https://github.com/woozymasta/a2sim"

	_revision  string
	_buildTime string
)

// BuildInfo is the build metadata exposed by the status API.
type BuildInfo struct {
	// betteralign:ignore

	BuildTime time.Time `json:"build_time" example:"1970-01-01T00:00:00Z"`
	Name      string    `json:"name" example:"a2sim"`
	Version   string    `json:"version" example:"v1.2.3"`
	Commit    string    `json:"commit" example:"da15c17"`
	URL       string    `json:"url" example:"https://github.com/woozymasta/a2sim"`
	License   string    `json:"license" example:"AGPL-3.0"`
	Revision  int       `json:"revision,omitempty" example:"1337"`
}

func init() {
	if n, err := strconv.Atoi(_revision); err == nil {
		Revision = n
	}

	if _buildTime != "" {
		if t, err := time.Parse(time.RFC3339, _buildTime); err == nil {
			BuildTime = t.UTC()
		}
	}
}

// Info returns the build metadata.
func Info() BuildInfo {
	return BuildInfo{
		BuildTime: BuildTime,
		Name:      Name,
		Version:   Version,
		Commit:    shortCommit(),
		URL:       URL,
		License:   License,
		Revision:  Revision,
	}
}

// Print writes the build information to w.
func Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, `name:     %s
url:      %s
version:  %s
commit:   %s
revision: %d
built:    %s
license:  %s
`, Name, URL, Version, Commit, Revision, BuildTime.Format(time.RFC3339), License)
}

// shortCommit returns the first 7 characters of the git commit hash.
func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}

	return Commit
}
