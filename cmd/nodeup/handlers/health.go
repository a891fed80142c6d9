package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mkrenz/nodeup/internal/health"
)

// healthClient performs the status queries, replaceable in tests.
var healthClient = &http.Client{Timeout: 10 * time.Second}

// Health queries the node's health daemon and prints the snapshot.
//
// Every invocation triggers fresh probes on the daemon side; the printed
// state is never older than the request.
func Health(ctx context.Context, endpoint string, watch, jsonOutput bool) error {
	if watch {
		return watchHealth(ctx, endpoint, jsonOutput)
	}
	return showHealth(ctx, endpoint, jsonOutput)
}

// showHealth fetches and prints one snapshot.
func showHealth(ctx context.Context, endpoint string, jsonOutput bool) error {
	snapshot, err := fetchSnapshot(ctx, endpoint)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printSnapshot(snapshot)
	return nil
}

// watchHealth re-queries the daemon every 5 seconds until the context ends.
func watchHealth(ctx context.Context, endpoint string, jsonOutput bool) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	if err := showHealth(ctx, endpoint, jsonOutput); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !jsonOutput {
				fmt.Print("\033[H\033[2J")
			}
			if err := showHealth(ctx, endpoint, jsonOutput); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}
	}
}

// fetchSnapshot asks the daemon for a fresh status document.
func fetchSnapshot(ctx context.Context, endpoint string) (*health.Snapshot, error) {
	url := strings.TrimSuffix(endpoint, "/") + health.StatusPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := healthClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health daemon unreachable at %s (is the node provisioned?): %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health daemon answered %s on %s", resp.Status, url)
	}

	var snapshot health.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode status document: %w", err)
	}
	return &snapshot, nil
}

// printSnapshot renders the snapshot for a human.
func printSnapshot(snapshot *health.Snapshot) {
	fmt.Printf("Node status: %s\n", snapshot.Status)
	fmt.Printf("Queried at:  %s\n", snapshot.Timestamp.Format(time.RFC3339))
	fmt.Println()

	if len(snapshot.Services) == 0 {
		fmt.Println("No workloads report a readiness endpoint.")
		return
	}

	names := make([]string, 0, len(snapshot.Services))
	for name := range snapshot.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Services:")
	for _, name := range names {
		indicator := "○"
		if snapshot.Services[name] == health.ServiceReady {
			indicator = "✓"
		}
		fmt.Printf("  %s %-20s %s\n", indicator, name, snapshot.Services[name])
	}
}
