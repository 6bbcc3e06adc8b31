// Package version reports which build of palettevision is running. The CLI
// prints it and the HTTP service returns it from /healthz.
//
// Release builds set the variables below with -ldflags, for example:
//
//	go build -ldflags "-X github.com/jmylchreest/palettevision/internal/version.Version=1.2.0 \
//	  -X github.com/jmylchreest/palettevision/internal/version.Commit=$(git rev-parse HEAD) \
//	  -X github.com/jmylchreest/palettevision/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

// unset marks a build variable that was not provided at link time.
const unset = "unknown"

// shortCommitLen is the number of commit hash characters shown by String.
const shortCommitLen = 8

var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"
	// Commit is the full git commit hash.
	Commit = unset
	// Date is the build time in RFC3339.
	Date = unset
	// GoVersion is the toolchain the binary was built with.
	GoVersion = runtime.Version()
)

// Info is the build description served by /healthz and printed by the
// version command.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo collects the build variables and the running platform.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String formats the build for humans. Commit and date are only shown when
// both were set at link time.
func String() string {
	info := GetInfo()
	if info.Commit == unset || info.Date == unset {
		return fmt.Sprintf("palettevision version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("palettevision version %s (commit: %s, built: %s, %s, %s)",
		info.Version, shortCommit(info.Commit), info.Date, info.GoVersion, info.Platform)
}

// Short returns just the release version.
func Short() string {
	return Version
}

func shortCommit(commit string) string {
	if len(commit) > shortCommitLen {
		return commit[:shortCommitLen]
	}
	return commit
}
