// Package version holds build metadata injected with ldflags:
//
//	go build -ldflags "-X git.home.luguber.info/inful/notionsync/internal/version.Version=v1.2.0"
package version

import "fmt"

var Version = "dev"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// UserAgent is sent with every outbound HTTP request.
func UserAgent() string {
	return "notionsync/" + Version
}

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("notionsync %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
