package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrenz/nodeup/internal/config"
)

func TestInit_RefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodeup.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cluster: {}"), 0o600))

	err := Init(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_NonInteractiveWritesTemplate(t *testing.T) {
	restore := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = restore })

	path := filepath.Join(t.TempDir(), "nodeup.yaml")
	require.NoError(t, Init(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "NODEUP_JOIN_TOKEN")
	assert.Contains(t, string(data), "role: agent")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestInit_InteractiveWritesWizardResult(t *testing.T) {
	restoreTerminal := isTerminal
	restoreWizard := runWizard
	isTerminal = func() bool { return true }
	runWizard = func() (*config.WizardResult, error) {
		return &config.WizardResult{
			ClusterName: "prod",
			Server:      "https://cp.internal:6443",
			NodeRole:    "server",
			Stack:       []string{"metrics", "dashboard"},
		}, nil
	}
	t.Cleanup(func() {
		isTerminal = restoreTerminal
		runWizard = restoreWizard
	})

	path := filepath.Join(t.TempDir(), "nodeup.yaml")
	require.NoError(t, Init(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "name: prod")
	assert.Contains(t, text, "server: https://cp.internal:6443")
	assert.Contains(t, text, "role: server")
	assert.Contains(t, text, "name: metrics")
	assert.Contains(t, text, "kubernetes-dashboard")
	// No token answered, so none may end up in the file.
	assert.NotContains(t, text, "\n  token:")
	assert.Contains(t, text, "# token: supplied via NODEUP_JOIN_TOKEN")
}

func TestRenderConfig_InlinesToken(t *testing.T) {
	t.Parallel()
	text := renderConfig(&config.WizardResult{
		ClusterName: "prod",
		Server:      "https://cp:6443",
		Token:       "s3cret",
		NodeRole:    "agent",
	})
	assert.Contains(t, text, "token: s3cret")
	assert.NotContains(t, text, "workloads:")
}

func TestWorkloadBlock_UnknownNameFallsBack(t *testing.T) {
	t.Parallel()
	block := workloadBlock("cache")
	assert.Contains(t, block, "name: cache")
	assert.Contains(t, block, "selector: app=cache")
}
