// Package buildinfo holds the version stamped into cookgraph binaries.
//
// Release builds override the defaults with the linker:
//
//	go build -ldflags "-X github.com/matzehuels/cookgraph/pkg/buildinfo.Version=$(git describe --tags) \
//	    -X github.com/matzehuels/cookgraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/cookgraph
package buildinfo

import "fmt"

// Stamped at link time; the defaults mark a local build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template, printed by `cookgraph --version`.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
