// Package main is the entry point for the qemu-eos-builder CLI.
//
// All functionality lives in internal/cli. Build metadata (version,
// commit, date) is injected via ldflags at release time and defaults to
// "dev", "none", and "unknown" in development builds:
//
//	go build -ldflags "-X main.version=1.2.0 -X main.commit=$(git rev-parse --short HEAD)"
package main

import (
	"github.com/shinji-kodama/qemu-eos-builder/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
