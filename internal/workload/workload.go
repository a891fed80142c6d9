// Package workload deploys the declarative workload set to the control
// plane and waits for every workload to become ready.
package workload

import (
	"time"
)

// ChartRef identifies a Helm chart deployed as a workload.
type ChartRef struct {
	RepoURL string                 `yaml:"repoURL"`
	Name    string                 `yaml:"name"`
	Version string                 `yaml:"version"`
	Release string                 `yaml:"release,omitempty"`
	Values  map[string]interface{} `yaml:"values,omitempty"`
}

// Workload is one declaratively-deployed service. Exactly one of Manifest
// or Chart describes how it is submitted; Selector describes how its
// readiness is observed.
type Workload struct {
	// Name is unique within the workload set.
	Name string `yaml:"name"`

	// Namespace the workload lives in. Defaults to "default".
	Namespace string `yaml:"namespace,omitempty"`

	// Manifest is raw YAML applied to the control plane.
	Manifest string `yaml:"manifest,omitempty"`

	// ManifestFile is a path to a YAML manifest, read at deploy time.
	ManifestFile string `yaml:"manifestFile,omitempty"`

	// Chart, when set, is installed instead of a raw manifest.
	Chart *ChartRef `yaml:"chart,omitempty"`

	// Selector is the label selector the control plane uses to report pod
	// readiness for this workload.
	Selector string `yaml:"selector"`

	// MinReady is the number of ready pods required. Defaults to 1.
	MinReady int `yaml:"minReady,omitempty"`

	// ReadinessEndpoint is the workload's own health URL, probed by the
	// health aggregator after deployment. Optional.
	ReadinessEndpoint string `yaml:"readinessEndpoint,omitempty"`

	// Interval and Deadline configure the deploy-time readiness check.
	Interval time.Duration `yaml:"interval,omitempty"`
	Deadline time.Duration `yaml:"deadline,omitempty"`
}

// EffectiveNamespace returns the namespace, defaulted.
func (w Workload) EffectiveNamespace() string {
	if w.Namespace == "" {
		return "default"
	}
	return w.Namespace
}

// EffectiveMinReady returns the required ready pod count, defaulted.
func (w Workload) EffectiveMinReady() int {
	if w.MinReady <= 0 {
		return 1
	}
	return w.MinReady
}
