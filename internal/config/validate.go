package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for errors that would make the
// provisioning run meaningless.
func (c *Config) Validate() error {
	var errs []string

	if c.Cluster.Name == "" {
		errs = append(errs, "cluster.name is required")
	}
	if c.Cluster.Server == "" {
		errs = append(errs, "cluster.server is required")
	}
	if c.Cluster.Token == "" {
		errs = append(errs, "cluster.token is required (or set NODEUP_JOIN_TOKEN)")
	}
	if c.Node.Role != "server" && c.Node.Role != "agent" {
		errs = append(errs, fmt.Sprintf("node.role must be server or agent, got %q", c.Node.Role))
	}

	seen := make(map[string]bool)
	for i, w := range c.Workloads {
		if w.Name == "" {
			errs = append(errs, fmt.Sprintf("workloads[%d]: name is required", i))
			continue
		}
		if seen[w.Name] {
			errs = append(errs, fmt.Sprintf("workloads[%d]: duplicate name %q", i, w.Name))
		}
		seen[w.Name] = true

		if w.Manifest == "" && w.ManifestFile == "" && w.Chart == nil {
			errs = append(errs, fmt.Sprintf("workload %s: one of manifest, manifestFile or chart is required", w.Name))
		}
		if w.Selector == "" {
			errs = append(errs, fmt.Sprintf("workload %s: selector is required", w.Name))
		}
		if w.Chart != nil && (w.Chart.Name == "" || w.Chart.RepoURL == "") {
			errs = append(errs, fmt.Sprintf("workload %s: chart requires name and repoURL", w.Name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
