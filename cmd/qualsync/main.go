package main

import (
	"fmt"
	"os"

	app "github.com/civiclab/qualsync/internal"
	"github.com/civiclab/qualsync/internal/cli"
)

// Set by goreleaser ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Bootstrap = app.Bootstrap

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
