package main

import (
	"github.com/clio-cli/clio/internal/cli"
)

// Version information (injected by the release build).
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	cli.SetVersion(Version, Commit, Date)
	cli.Execute()
}
