// Package main is the entry point for the nodeup CLI.
//
// nodeup bootstraps a cloud virtual machine into a member of a
// Kubernetes-compatible cluster: it installs a container runtime, joins the
// node to the control plane, deploys the declared workload set and leaves
// behind a supervised health aggregation daemon.
//
// Commands: init, up, health, version, completion.
//
// For detailed usage information, run:
//
//	nodeup --help
package main

import (
	"fmt"
	"os"

	"github.com/mkrenz/nodeup/cmd/nodeup/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
