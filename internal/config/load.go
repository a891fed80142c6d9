package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFile reads, defaults and validates the configuration from a YAML
// file. Secrets may be supplied through the environment instead of the
// file; NODEUP_JOIN_TOKEN and NODEUP_SERVER override their file values.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadHealthFile reads the configuration for the health daemon. The daemon
// only needs the workload set and the health section, so join-time
// requirements like the token are not validated.
func LoadHealthFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// FindConfigFile returns the explicit path if given, otherwise the default
// file in the working directory.
func FindConfigFile(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if _, err := os.Stat(DefaultFileName); err != nil {
		return "", fmt.Errorf("no config file found: %s does not exist (run 'nodeup init' first)", DefaultFileName)
	}
	return DefaultFileName, nil
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("NODEUP_JOIN_TOKEN"); token != "" {
		cfg.Cluster.Token = token
	}
	if server := os.Getenv("NODEUP_SERVER"); server != "" {
		cfg.Cluster.Server = server
	}
	if name := os.Getenv("NODEUP_NODE_NAME"); name != "" {
		cfg.Node.Name = name
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Node.Name == "" {
		if hostname, err := os.Hostname(); err == nil {
			cfg.Node.Name = hostname
		}
	}
	if cfg.Node.Role == "" {
		cfg.Node.Role = "agent"
	}
	if cfg.Cluster.Kubeconfig == "" {
		cfg.Cluster.Kubeconfig = "/etc/rancher/k3s/k3s.yaml"
	}
	if cfg.Health.Listen == "" {
		cfg.Health.Listen = ":9100"
	}
	if cfg.Health.ProbeTimeout <= 0 {
		cfg.Health.ProbeTimeout = 3 * time.Second
	}
}
