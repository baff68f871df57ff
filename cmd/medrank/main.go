// Command medrank is the command-line client for the reputation platform:
// local scoring against profile files plus remote directory and evaluation
// operations against a running API server.
package main

import (
	"fmt"
	"os"

	"github.com/openmdr/MedRank-Intelligence/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
