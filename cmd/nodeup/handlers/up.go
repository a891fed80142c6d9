// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mkrenz/nodeup/internal/config"
	"github.com/mkrenz/nodeup/internal/provision"
	"github.com/mkrenz/nodeup/internal/stages"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// findConfigFile resolves the config path.
	findConfigFile = config.FindConfigFile

	// loadConfigFile loads and validates the config.
	loadConfigFile = config.LoadFile

	// buildPipeline assembles the provisioning stages.
	buildPipeline = stages.BuildPipeline

	// writeFile writes the run report.
	writeFile = os.WriteFile
)

// Up provisions the local machine into a cluster member.
//
// This function runs the complete bootstrap workflow:
//  1. Loads and validates the node configuration
//  2. Assembles the provisioning pipeline for the node's role
//  3. Executes the pipeline stage by stage, gating on real cluster state
//  4. Writes a machine-readable run report for fleet tooling
//
// The report is written regardless of the run outcome so an operator can
// tell a half-provisioned machine from a ready one without shell access.
func Up(ctx context.Context, configPath, reportPath string) error {
	path, err := findConfigFile(configPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	timeouts := config.LoadTimeouts()
	observer := provision.NewConsoleObserver().WithFields(map[string]string{
		"cluster": cfg.Cluster.Name,
		"node":    cfg.Node.Name,
	})

	observer.Printf("Provisioning node %s into cluster %s (role: %s)", cfg.Node.Name, cfg.Cluster.Name, cfg.Node.Role)

	run := provision.NewOrchestrator(observer).Execute(ctx, buildPipeline(cfg, path, timeouts, observer))

	if reportPath != "" {
		if err := writeRunReport(reportPath, run); err != nil {
			observer.Printf("Warning: %v", err)
		}
	}

	printRunSummary(run)

	if run.Failed() {
		return fmt.Errorf("provisioning failed at: %s", strings.Join(run.FailedStages(), ", "))
	}
	return nil
}

// writeRunReport persists the run record as indented JSON.
func writeRunReport(path string, run *provision.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := writeFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}

// printRunSummary prints a per-stage outcome table and the overall verdict.
func printRunSummary(run *provision.Run) {
	fmt.Println()
	for _, res := range run.Results {
		indicator := "✓"
		if res.Status != provision.StageSucceeded {
			indicator = "✗"
		}
		line := fmt.Sprintf("  %s %-20s %-10s %s", indicator, res.Stage, res.Status, res.Elapsed.Round(time.Millisecond))
		fmt.Println(line)
	}
	fmt.Println()

	if run.Failed() {
		fmt.Println("Status: failed")
		return
	}
	fmt.Println("Status: ready")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  nodeup health          # query the node's health daemon")
	fmt.Println("  nodeup health --watch  # follow workload readiness")
}
