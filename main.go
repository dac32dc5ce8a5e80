package main

import (
	"fmt"
	"os"

	"github.com/libstand-labs/libstand/internal/branding"
	"github.com/libstand-labs/libstand/internal/cli"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", branding.CLIName(), err)
		os.Exit(1)
	}
}
