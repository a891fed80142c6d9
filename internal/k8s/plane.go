package k8s

import (
	"context"
	"fmt"
	"os"

	"github.com/mkrenz/nodeup/internal/poll"
	"github.com/mkrenz/nodeup/internal/workload"
)

// Plane adapts the cluster client to the workload deployer's ControlPlane
// contract.
type Plane struct {
	client     *Client
	helm       *HelmClient
	kubeconfig []byte
}

// NewPlane creates a control-plane adapter from kubeconfig bytes.
func NewPlane(kubeconfig []byte) (*Plane, error) {
	client, err := NewClientFromBytes(kubeconfig)
	if err != nil {
		return nil, err
	}
	return &Plane{
		client:     client,
		helm:       NewHelmClient(),
		kubeconfig: kubeconfig,
	}, nil
}

// Submit hands one workload to the cluster, either as a Helm release or as
// a raw manifest.
func (p *Plane) Submit(ctx context.Context, w workload.Workload) error {
	if w.Chart != nil {
		release := w.Chart.Release
		if release == "" {
			release = w.Name
		}
		return p.helm.InstallOrUpgrade(p.kubeconfig, w.EffectiveNamespace(), release,
			w.Chart.RepoURL, w.Chart.Name, w.Chart.Version, w.Chart.Values)
	}

	manifest := w.Manifest
	if w.ManifestFile != "" {
		data, err := os.ReadFile(w.ManifestFile)
		if err != nil {
			return fmt.Errorf("failed to read manifest for %s: %w", w.Name, err)
		}
		manifest = string(data)
	}
	if manifest == "" {
		return fmt.Errorf("workload %s declares neither a manifest nor a chart", w.Name)
	}

	return p.client.ApplyManifest(ctx, manifest)
}

// Ready returns the pod-readiness predicate for the workload's selector.
func (p *Plane) Ready(w workload.Workload) poll.Predicate {
	return p.client.PodsReady(w.EffectiveNamespace(), w.Selector, w.EffectiveMinReady())
}
