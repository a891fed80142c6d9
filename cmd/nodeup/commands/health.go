package commands

import (
	"github.com/spf13/cobra"

	"github.com/mkrenz/nodeup/cmd/nodeup/handlers"
)

// Health returns the command for querying the node's health daemon.
//
// This command asks the locally running nodeup-healthd for a fresh status
// snapshot and prints it.
//
// Optional flags:
//
//	--endpoint, -e: Base address of the health daemon (default http://127.0.0.1:9100)
//	--watch, -w: Continuously watch status updates
//	--json: Output in JSON format
func Health() *cobra.Command {
	var (
		endpoint   string
		watch      bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show the node's current health status",
		Long: `Show the node's current health status.

Queries the health aggregation daemon that 'nodeup up' installs. Every
query triggers fresh probes of the deployed workloads; the answer is
never cached.

Examples:
  # Show status once
  nodeup health

  # Watch status updates every 5 seconds
  nodeup health --watch

  # Machine-readable output
  nodeup health --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Health(cmd.Context(), endpoint, watch, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "http://127.0.0.1:9100", "Base address of the health daemon")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Continuously watch status updates")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
