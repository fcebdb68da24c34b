package buildinfo

import "runtime"

// These are intended to be set via -ldflags at build time.
// Example:
// go build -ldflags "-X github.com/gilby125/airport-network/pkg/buildinfo.Version=v1.2.3 -X github.com/gilby125/airport-network/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) -X github.com/gilby125/airport-network/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"date":    Date,
		"go":      runtime.Version(),
	}
}
