package commands

import (
	"github.com/spf13/cobra"

	"github.com/mkrenz/nodeup/cmd/nodeup/handlers"
)

// Up returns the command that provisions the local machine.
//
// This command runs the full provisioning pipeline: installing the container
// runtime, joining the node to the control plane, deploying the declared
// workload set and installing the health daemon.
//
// Optional flags:
//
//	--config, -c: Path to node configuration YAML file (default: auto-detect nodeup.yaml)
//	--report: Path the machine-readable run report is written to
//
// Environment variables:
//
//	NODEUP_JOIN_TOKEN: Cluster join token (overrides the file value)
//	NODEUP_SERVER: Control-plane address (overrides the file value)
func Up() *cobra.Command {
	var (
		configPath string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision this machine into a cluster member",
		Long: `Provision this machine into a cluster member.

This command installs the container runtime, joins the node to the
control plane, deploys the configured workload set and leaves behind a
supervised health aggregation daemon.

If no config file is specified, it looks for nodeup.yaml in the current
directory. Use 'nodeup init' to create a configuration file.

Examples:
  # Provision using nodeup.yaml in the current directory
  nodeup up

  # Provision using a specific config file
  nodeup up -c worker.yaml

  # Re-run after a transient failure; completed steps converge quickly
  nodeup up`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Up(cmd.Context(), configPath, reportPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: nodeup.yaml)")
	cmd.Flags().StringVar(&reportPath, "report", "nodeup-run.json", "Path the run report is written to")

	return cmd
}
