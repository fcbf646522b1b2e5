package version

import "fmt"

// Version is the release version embedded in the binary.
// It can be overridden at build time via:
// go build -ldflags "-X github.com/oukeidos/gdmount/internal/version.Version=1.0.0"
var Version = "1.0.0"

// Commit is the git commit hash embedded in the binary.
var Commit = "unknown"

// BuildDate is the RFC3339 build timestamp embedded in the binary.
var BuildDate = "unknown"

// Info returns a multi-line version string for CLI output. toolVersion,
// when non-empty, is the mount tool's own version line.
func Info(toolVersion string) string {
	s := fmt.Sprintf("gdmount %s\ncommit: %s\nbuild: %s", Version, Commit, BuildDate)
	if toolVersion != "" {
		s += "\ntool: " + toolVersion
	}
	return s
}
