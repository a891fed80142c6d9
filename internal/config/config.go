// Package config defines the node provisioning configuration and its
// loading rules. Configuration is read once at startup and never re-read
// mid-run.
package config

import (
	"time"

	"github.com/mkrenz/nodeup/internal/workload"
)

// DefaultFileName is the config file looked up in the working directory
// when none is given.
const DefaultFileName = "nodeup.yaml"

// Config is the full provisioning configuration for one node.
type Config struct {
	Cluster   ClusterConfig       `yaml:"cluster"`
	Node      NodeConfig          `yaml:"node"`
	Versions  VersionsConfig      `yaml:"versions"`
	Security  SecurityConfig      `yaml:"security"`
	Health    HealthConfig        `yaml:"health"`
	Workloads []workload.Workload `yaml:"workloads"`
}

// ClusterConfig identifies the cluster being joined.
type ClusterConfig struct {
	// Name of the cluster, used in logs and reports.
	Name string `yaml:"name"`

	// Server is the control-plane address, e.g. https://cp.internal:6443.
	Server string `yaml:"server"`

	// Token is the join token. Usually supplied via NODEUP_JOIN_TOKEN
	// rather than the file.
	Token string `yaml:"token,omitempty"`

	// Kubeconfig is where the distribution writes the admin kubeconfig
	// after joining. Defaults to /etc/rancher/k3s/k3s.yaml.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
}

// NodeConfig identifies this machine.
type NodeConfig struct {
	// Name the node registers under. Defaults to the hostname.
	Name string `yaml:"name,omitempty"`

	// Role is either "server" or "agent". Defaults to "agent".
	Role string `yaml:"role,omitempty"`
}

// VersionsConfig pins installer versions.
type VersionsConfig struct {
	Kubernetes string `yaml:"kubernetes,omitempty"`
	Runtime    string `yaml:"runtime,omitempty"`
}

// SecurityConfig configures the optional host hardening step. The security
// provisioner is present exactly when Command is set; nothing is probed for
// at runtime.
type SecurityConfig struct {
	// Command is the external hardening command to run, empty to skip.
	Command string `yaml:"command,omitempty"`
}

// HealthConfig configures the health aggregation daemon.
type HealthConfig struct {
	// Listen is the aggregator's bind address. Defaults to ":9100".
	Listen string `yaml:"listen,omitempty"`

	// ProbeTimeout bounds each workload probe. Defaults to 3s.
	ProbeTimeout time.Duration `yaml:"probeTimeout,omitempty"`
}

// ReadinessEndpoints returns the name->endpoint mapping for workloads that
// expose a readiness endpoint.
func (c *Config) ReadinessEndpoints() map[string]string {
	endpoints := make(map[string]string)
	for _, w := range c.Workloads {
		if w.ReadinessEndpoint != "" {
			endpoints[w.Name] = w.ReadinessEndpoint
		}
	}
	return endpoints
}
