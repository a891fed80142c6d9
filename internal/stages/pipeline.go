package stages

import (
	"context"
	"fmt"
	"os"

	"github.com/mkrenz/nodeup/internal/config"
	"github.com/mkrenz/nodeup/internal/k8s"
	"github.com/mkrenz/nodeup/internal/poll"
	"github.com/mkrenz/nodeup/internal/provision"
	"github.com/mkrenz/nodeup/internal/workload"
)

// StableKubeconfigPath is where the pipeline places the admin kubeconfig
// for later stages and the health daemon.
const StableKubeconfigPath = "/etc/nodeup/kubeconfig"

// StableConfigPath is where the pipeline places the node configuration for
// the health daemon.
const StableConfigPath = "/etc/nodeup/nodeup.yaml"

// Factory variables, replaceable in tests.
var (
	// newPlane builds the control-plane adapter from a kubeconfig path.
	newPlane = func(kubeconfigPath string) (workload.ControlPlane, error) {
		data, err := os.ReadFile(kubeconfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read kubeconfig: %w", err)
		}
		return k8s.NewPlane(data)
	}

	// newNodeReadyProbe builds the node Ready predicate. A fresh client is
	// created per evaluation so the probe tolerates a kubeconfig that only
	// appears once the join settles.
	newNodeReadyProbe = func(kubeconfigPath, nodeName string) poll.Predicate {
		return func(ctx context.Context) (bool, error) {
			client, err := k8s.NewClient(kubeconfigPath)
			if err != nil {
				return false, err
			}
			return client.NodeReady(nodeName)(ctx)
		}
	}
)

// BuildPipeline assembles the full provisioning pipeline for the node.
//
// Which real-world steps are fatal is configuration here, not control flow:
// platform stages (runtime, join, kubeconfig) and the workload set are
// fatal, host hardening is not. The health daemon is installed before the
// workload set so it serves "initializing" even when deployment fails.
func BuildPipeline(cfg *config.Config, configPath string, timeouts *config.Timeouts, observer provision.Observer) []provision.Stage {
	stages := []provision.Stage{
		{
			Name:     "install-runtime",
			Fatal:    true,
			Executor: installRuntimeCommand(cfg, timeouts),
		},
		{
			Name:     "join-cluster",
			Fatal:    true,
			Executor: joinClusterCommand(cfg, timeouts),
			Gate: &poll.Check{
				Label:    "node-ready",
				Interval: timeouts.PollInterval,
				Deadline: timeouts.NodeReady,
				Probe:    newNodeReadyProbe(cfg.Cluster.Kubeconfig, cfg.Node.Name),
			},
		},
		{
			Name:  "setup-kubeconfig",
			Fatal: true,
			Executor: KubeconfigSetup{
				Source: cfg.Cluster.Kubeconfig,
				Dest:   StableKubeconfigPath,
			},
		},
	}

	if cfg.Security.Command != "" {
		stages = append(stages, provision.Stage{
			Name:  "harden-host",
			Fatal: false,
			Executor: Command{
				Name: "harden-host",
				Path: "/bin/sh",
				Args: []string{"-c", cfg.Security.Command},
			},
		})
	}

	stages = append(stages,
		provision.Stage{
			Name:     "install-healthd",
			Fatal:    false,
			Executor: NewHealthdInstaller(configPath, StableConfigPath),
		},
		provision.Stage{
			Name:     "deploy-workloads",
			Fatal:    true,
			Executor: deployWorkloadsExecutor(cfg, timeouts, observer),
		},
	)

	return stages
}

// installRuntimeCommand installs the container runtime via the system
// package manager.
func installRuntimeCommand(cfg *config.Config, timeouts *config.Timeouts) provision.Executor {
	script := "apt-get update -q && apt-get install -yq containerd"
	if cfg.Versions.Runtime != "" {
		script = fmt.Sprintf("apt-get update -q && apt-get install -yq containerd=%s", cfg.Versions.Runtime)
	}
	return Command{
		Name:    "install-runtime",
		Path:    "/bin/sh",
		Args:    []string{"-c", script},
		Timeout: timeouts.RuntimeInstall,
		Retries: 2,
	}
}

// joinClusterCommand runs the distribution installer that joins this node
// to the control plane. Token and server address pass through as opaque
// environment values.
func joinClusterCommand(cfg *config.Config, timeouts *config.Timeouts) provision.Executor {
	env := []string{
		"K3S_TOKEN=" + cfg.Cluster.Token,
		"K3S_NODE_NAME=" + cfg.Node.Name,
	}
	if cfg.Versions.Kubernetes != "" {
		env = append(env, "INSTALL_K3S_VERSION="+cfg.Versions.Kubernetes)
	}

	script := "curl -sfL https://get.k3s.io | sh -s - server"
	if cfg.Node.Role == "agent" {
		env = append(env, "K3S_URL="+cfg.Cluster.Server)
		script = "curl -sfL https://get.k3s.io | sh -s - agent"
	}

	return Command{
		Name:    "join-cluster",
		Path:    "/bin/sh",
		Args:    []string{"-c", script},
		Env:     env,
		Timeout: timeouts.ClusterJoin,
		Retries: 1,
	}
}

// deployWorkloadsExecutor submits the workload set and blocks until every
// workload is ready or its deadline passes.
func deployWorkloadsExecutor(cfg *config.Config, timeouts *config.Timeouts, observer provision.Observer) provision.Executor {
	return provision.ExecutorFunc(func(ctx context.Context) error {
		if len(cfg.Workloads) == 0 {
			return nil
		}

		plane, err := newPlane(StableKubeconfigPath)
		if err != nil {
			return err
		}

		workloads := make([]workload.Workload, len(cfg.Workloads))
		copy(workloads, cfg.Workloads)
		for i := range workloads {
			if workloads[i].Interval <= 0 {
				workloads[i].Interval = timeouts.PollInterval
			}
			if workloads[i].Deadline <= 0 {
				workloads[i].Deadline = timeouts.WorkloadDeploy
			}
		}

		_, err = workload.NewDeployer(plane, observer).Deploy(ctx, workloads)
		return err
	})
}
