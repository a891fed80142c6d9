// Package main is the entrypoint for nodeup-healthd, the node's health
// aggregation daemon.
//
// The daemon is installed and supervised by 'nodeup up' through systemd. It
// probes every deployed workload's readiness endpoint on demand and answers
// health queries with a fresh status document; Prometheus metrics are served
// alongside on /metrics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkrenz/nodeup/internal/config"
	"github.com/mkrenz/nodeup/internal/health"
	"github.com/mkrenz/nodeup/internal/provision"
	"github.com/mkrenz/nodeup/internal/stages"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodeup-healthd",
		Short: "Health aggregation daemon for nodeup-provisioned nodes",
	}
	cmd.AddCommand(serveCommand())
	return cmd
}

// serveCommand returns the serve subcommand, the form the systemd unit
// invokes.
func serveCommand() *cobra.Command {
	var (
		configPath string
		listenAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health queries for this node",
		Long: `Serve health queries for this node.

Loads the workload set from the node configuration and answers every
health query with a fresh probe round; nothing is cached between
queries. The process runs until terminated and is expected to be
supervised by systemd.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath, listenAddr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", stages.StableConfigPath, "Path to the node configuration file")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "Bind address (overrides the config value)")

	return cmd
}

func serve(ctx context.Context, configPath, listenAddr string) error {
	cfg, err := config.LoadHealthFile(configPath)
	if err != nil {
		return err
	}

	addr := cfg.Health.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	targets := health.TargetsFromEndpoints(cfg.ReadinessEndpoints())
	aggregator := health.NewAggregator(targets, cfg.Health.ProbeTimeout)
	server := health.NewServer(aggregator)

	observer := provision.NewConsoleObserver().WithFields(map[string]string{"node": cfg.Node.Name})
	observer.Printf("nodeup-healthd listening on %s (%d services)", addr, len(targets))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, addr)
}
