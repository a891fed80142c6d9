package config

import (
	"os"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	RuntimeInstall time.Duration // Timeout for the container runtime install stage
	ClusterJoin    time.Duration // Timeout for the cluster join command itself
	NodeReady      time.Duration // Deadline for the node Ready gate after joining
	WorkloadDeploy time.Duration // Default deadline for each workload readiness check
	PollInterval   time.Duration // Interval between readiness evaluations
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - NODEUP_TIMEOUT_RUNTIME_INSTALL (default: 10m)
//   - NODEUP_TIMEOUT_CLUSTER_JOIN (default: 5m)
//   - NODEUP_TIMEOUT_NODE_READY (default: 2m)
//   - NODEUP_TIMEOUT_WORKLOAD_DEPLOY (default: 5m)
//   - NODEUP_POLL_INTERVAL (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		RuntimeInstall: parseDuration("NODEUP_TIMEOUT_RUNTIME_INSTALL", 10*time.Minute),
		ClusterJoin:    parseDuration("NODEUP_TIMEOUT_CLUSTER_JOIN", 5*time.Minute),
		NodeReady:      parseDuration("NODEUP_TIMEOUT_NODE_READY", 2*time.Minute),
		WorkloadDeploy: parseDuration("NODEUP_TIMEOUT_WORKLOAD_DEPLOY", 5*time.Minute),
		PollInterval:   parseDuration("NODEUP_POLL_INTERVAL", 5*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
