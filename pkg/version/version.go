// Package version reports the netapi build.
package version

import (
	"runtime"
	"runtime/debug"
)

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/netapi-network/netapi/pkg/version.Version=v1.0.0 \
//	  -X github.com/netapi-network/netapi/pkg/version.GitCommit=abc1234 \
//	  -X github.com/netapi-network/netapi/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Build describes the running binary
type Build struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Current returns the build information. A commit missing from ldflags
// falls back to the VCS revision stamped by the go tool.
func Current() Build {
	b := Build{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if b.GitCommit != "unknown" {
		return b
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				b.GitCommit = s.Value[:7]
			}
		}
	}
	return b
}

// Info returns a formatted version string for display.
func Info() string {
	b := Current()
	return b.Version + " (" + b.GitCommit + ") built " + b.BuildDate
}
