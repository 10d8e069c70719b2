package main

import (
	"fmt"
	"os"

	"github.com/jinconf/jin/cmd/jin/cmd"
	"github.com/jinconf/jin/internal/jerr"
)

// Version information (set via ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersion(version, commit, date)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(jerr.ExitCode(err))
	}
}
