package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/mkrenz/nodeup/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive wizard.
	runWizard = config.RunWizard

	// isTerminal reports whether stdin is attached to a terminal.
	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
)

// Init creates a node configuration file.
//
// On a terminal the interactive wizard collects the cluster identity, join
// token and workload selection. Without a terminal (CI, cloud-init) a
// commented template is written instead.
func Init(outputPath string) error {
	if fileExists(outputPath) {
		return fmt.Errorf("%s already exists; remove it first or choose another path with --output", outputPath)
	}

	if !isTerminal() {
		if err := os.WriteFile(outputPath, []byte(configTemplate), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("Wrote template configuration to %s. Edit it before running 'nodeup up'.\n", outputPath)
		return nil
	}

	printWelcome()

	result, err := runWizard()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(renderConfig(result)), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, result)
	return nil
}

// configTemplate is the non-interactive starting point. The join token is
// deliberately absent; it belongs in NODEUP_JOIN_TOKEN.
const configTemplate = `# nodeup node configuration
cluster:
  name: prod
  server: https://cp.internal:6443
  # token: supplied via NODEUP_JOIN_TOKEN

node:
  # name defaults to the hostname
  role: agent

health:
  listen: ":9100"

workloads:
  - name: metrics
    chart:
      repoURL: https://prometheus-community.github.io/helm-charts
      name: prometheus
    selector: app.kubernetes.io/name=prometheus
    readinessEndpoint: http://127.0.0.1:30900/-/ready
`

// renderConfig turns wizard answers into a YAML document. Rendering by hand
// keeps the section comments that yaml.Marshal would drop.
func renderConfig(result *config.WizardResult) string {
	var b strings.Builder

	b.WriteString("# nodeup node configuration (generated by 'nodeup init')\n")
	b.WriteString("cluster:\n")
	fmt.Fprintf(&b, "  name: %s\n", result.ClusterName)
	fmt.Fprintf(&b, "  server: %s\n", result.Server)
	if result.Token != "" {
		fmt.Fprintf(&b, "  token: %s\n", result.Token)
	} else {
		b.WriteString("  # token: supplied via NODEUP_JOIN_TOKEN\n")
	}

	b.WriteString("\nnode:\n")
	b.WriteString("  # name defaults to the hostname\n")
	fmt.Fprintf(&b, "  role: %s\n", result.NodeRole)

	b.WriteString("\nhealth:\n")
	b.WriteString("  listen: \":9100\"\n")

	if len(result.Stack) > 0 {
		b.WriteString("\nworkloads:\n")
		for _, name := range result.Stack {
			b.WriteString(workloadBlock(name))
		}
	}

	return b.String()
}

// workloadBlock returns the YAML entry for one of the wizard's workload
// choices.
func workloadBlock(name string) string {
	switch name {
	case "metrics":
		return `  - name: metrics
    chart:
      repoURL: https://prometheus-community.github.io/helm-charts
      name: prometheus
    selector: app.kubernetes.io/name=prometheus
    readinessEndpoint: http://127.0.0.1:30900/-/ready
`
	case "logging":
		return `  - name: logging
    chart:
      repoURL: https://grafana.github.io/helm-charts
      name: loki
    selector: app.kubernetes.io/name=loki
    readinessEndpoint: http://127.0.0.1:30100/ready
`
	case "dashboard":
		return `  - name: dashboard
    chart:
      repoURL: https://kubernetes.github.io/dashboard
      name: kubernetes-dashboard
    selector: app.kubernetes.io/name=kubernetes-dashboard
`
	default:
		return fmt.Sprintf("  - name: %s\n    selector: app=%s\n", name, name)
	}
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("nodeup - node bootstrap for Kubernetes clusters")
	fmt.Println("===============================================")
	fmt.Println()
	fmt.Println("This wizard creates a node configuration with sensible defaults.")
	fmt.Println()
}

// printInitSuccess prints the summary and next steps.
func printInitSuccess(outputPath string, result *config.WizardResult) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Node Summary")
	fmt.Println("------------")
	fmt.Printf("  Cluster: %s\n", result.ClusterName)
	fmt.Printf("  Server:  %s\n", result.Server)
	fmt.Printf("  Role:    %s\n", result.NodeRole)
	if len(result.Stack) > 0 {
		fmt.Printf("  Workloads: %s\n", strings.Join(result.Stack, ", "))
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	if result.Token == "" {
		fmt.Println("  1. Set the cluster join token:")
		fmt.Println("     export NODEUP_JOIN_TOKEN=<your-token>")
		fmt.Println()
		fmt.Println("  2. Provision this machine:")
	} else {
		fmt.Println("  1. Provision this machine:")
	}
	fmt.Println("     nodeup up")
	fmt.Println()
}
