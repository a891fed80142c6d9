package commands

import (
	"github.com/spf13/cobra"

	"github.com/mkrenz/nodeup/cmd/nodeup/handlers"
)

// Init returns the command for interactively creating a node configuration.
//
// When attached to a terminal the command walks through an interactive
// wizard; otherwise it writes a commented template to edit by hand.
//
// Flags:
//
//	--output, -o: Path to output file (default "nodeup.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a node configuration",
		Long: `Interactively create a node configuration file.

This command guides you through configuring the node step by step.
It will ask about:

  - Cluster identity (name and control-plane address)
  - The join token (or leave it to NODEUP_JOIN_TOKEN)
  - Node role (server or agent)
  - Observability workloads to deploy after the join

When stdin is not a terminal a commented template is written instead,
suitable for editing by hand or templating in CI.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Init(outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "nodeup.yaml", "Output file path")

	return cmd
}
