package stages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const healthdUnitTemplate = `[Unit]
Description=nodeup health aggregation daemon
After=network-online.target
Wants=network-online.target

[Service]
ExecStart=%s serve --config %s
Restart=always
RestartSec=5

[Install]
WantedBy=multi-user.target
`

// HealthdInstaller installs nodeup-healthd as an independently supervised
// systemd service. The daemon deliberately outlives the provisioning run:
// systemd owns its lifecycle and restarts it on crash.
type HealthdInstaller struct {
	// BinaryPath is the installed nodeup-healthd binary.
	BinaryPath string

	// SourceConfig is the operator's config file, copied to ConfigPath so
	// the daemon keeps working even if the original moves.
	SourceConfig string

	// ConfigPath is the config file the daemon reads its workload set from.
	ConfigPath string

	// UnitDir is where the unit file is written.
	UnitDir string

	// Systemctl is the systemctl binary, replaceable in tests.
	Systemctl string
}

// NewHealthdInstaller returns an installer with the standard paths.
func NewHealthdInstaller(sourceConfig, configPath string) *HealthdInstaller {
	return &HealthdInstaller{
		BinaryPath:   "/usr/local/bin/nodeup-healthd",
		SourceConfig: sourceConfig,
		ConfigPath:   configPath,
		UnitDir:      "/etc/systemd/system",
		Systemctl:    "systemctl",
	}
}

// UnitFile renders the systemd unit.
func (h *HealthdInstaller) UnitFile() string {
	return fmt.Sprintf(healthdUnitTemplate, h.BinaryPath, h.ConfigPath)
}

// Run implements provision.Executor. It writes the unit file, reloads
// systemd and starts the service enabled.
func (h *HealthdInstaller) Run(ctx context.Context) error {
	if h.SourceConfig != "" && h.SourceConfig != h.ConfigPath {
		data, err := os.ReadFile(h.SourceConfig)
		if err != nil {
			return fmt.Errorf("failed to read config for healthd: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(h.ConfigPath), 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
		if err := os.WriteFile(h.ConfigPath, data, 0o600); err != nil {
			return fmt.Errorf("failed to stage healthd config: %w", err)
		}
	}

	unitPath := filepath.Join(h.UnitDir, "nodeup-healthd.service")
	if err := os.WriteFile(unitPath, []byte(h.UnitFile()), 0o644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}

	reload := Command{Name: "systemd daemon-reload", Path: h.Systemctl, Args: []string{"daemon-reload"}}
	if err := reload.Run(ctx); err != nil {
		return err
	}

	enable := Command{Name: "enable nodeup-healthd", Path: h.Systemctl, Args: []string{"enable", "--now", "nodeup-healthd"}}
	return enable.Run(ctx)
}
