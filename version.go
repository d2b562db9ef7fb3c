package audiotag

import (
	"fmt"
	"runtime"
)

// Version is the semantic version of the audiotag library.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// VersionInfo describes the build of the running binary.
type VersionInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
}

// String formats the info for a --version flag, e.g.
// "0.1.0 (commit 1a2b3c, built 2026-01-02T15:04:05Z, go1.26.0)".
func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s, %s)", v.Version, v.GitCommit, v.BuildTime, v.GoVersion)
}

// GetVersionInfo returns the version together with the build metadata set
// through -ldflags:
//
//	go build -ldflags="-X github.com/simonhull/audiotag.gitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/simonhull/audiotag.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/tagdump
//
// Unset fields read "unknown"; the Go version falls back to runtime.Version.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

var (
	gitCommit = "unknown"
	buildTime = "unknown"
)
