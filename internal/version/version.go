// Package version holds build metadata shared by the CLI and the HTTP
// User-Agent.
package version

// Overridden at build time:
//
//	go build -ldflags "-X github.com/filebox/filebox-client/internal/version.Version=v1.2.0"
var (
	Version   = "v1.0.0-dev"
	BuildTime = "unknown"
)
