package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// KubeconfigSetup copies the kubeconfig written by the cluster join to a
// stable location with tightened permissions, so later stages and the
// health daemon read from one known path.
type KubeconfigSetup struct {
	// Source is where the distribution writes the admin kubeconfig.
	Source string

	// Dest is the stable path the rest of the system uses.
	Dest string
}

// Run implements provision.Executor.
func (k KubeconfigSetup) Run(_ context.Context) error {
	data, err := os.ReadFile(k.Source)
	if err != nil {
		return fmt.Errorf("failed to read kubeconfig from %s: %w", k.Source, err)
	}

	if err := os.MkdirAll(filepath.Dir(k.Dest), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	if err := os.WriteFile(k.Dest, data, 0o600); err != nil {
		return fmt.Errorf("failed to write kubeconfig to %s: %w", k.Dest, err)
	}
	return nil
}
