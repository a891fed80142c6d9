package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
)

// WizardResult holds the user's choices from the init wizard.
type WizardResult struct {
	ClusterName string
	Server      string
	Token       string
	NodeRole    string
	Stack       []string
}

var clusterNameRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

func validateClusterName(name string) error {
	if name == "" {
		return fmt.Errorf("cluster name is required")
	}
	if !clusterNameRe.MatchString(name) {
		return fmt.Errorf("cluster name must be DNS-safe lowercase")
	}
	return nil
}

func validateServer(server string) error {
	if !strings.HasPrefix(server, "https://") && !strings.HasPrefix(server, "http://") {
		return fmt.Errorf("server must be a http(s) URL")
	}
	return nil
}

// RunWizard runs the interactive configuration wizard.
func RunWizard() (*WizardResult, error) {
	result := &WizardResult{
		NodeRole: "agent",
		Stack:    []string{"metrics", "logging"},
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("A unique name for the cluster this node joins (DNS-safe, lowercase)").
				Placeholder("prod").
				Value(&result.ClusterName).
				Validate(validateClusterName),

			huh.NewInput().
				Title("Control-plane address").
				Placeholder("https://cp.internal:6443").
				Value(&result.Server).
				Validate(validateServer),

			huh.NewInput().
				Title("Join token").
				Description("Leave empty to supply via NODEUP_JOIN_TOKEN").
				EchoMode(huh.EchoModePassword).
				Value(&result.Token),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Node role").
				Options(
					huh.NewOption("Agent (worker)", "agent"),
					huh.NewOption("Server (control plane)", "server"),
				).
				Value(&result.NodeRole),

			huh.NewMultiSelect[string]().
				Title("Observability workloads").
				Options(
					huh.NewOption("Metrics store", "metrics").Selected(true),
					huh.NewOption("Log aggregator", "logging").Selected(true),
					huh.NewOption("Dashboard", "dashboard"),
				).
				Value(&result.Stack),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard aborted: %w", err)
	}
	return result, nil
}
