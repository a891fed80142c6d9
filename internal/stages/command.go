// Package stages provides the concrete stage executors for node
// provisioning and the builder that assembles them into a pipeline.
//
// The executors wrap the third-party installers (package manager, runtime
// installer, cluster join command) as opaque commands; the pipeline only
// sees their success or failure.
package stages

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mkrenz/nodeup/internal/util/retry"
)

// Command runs an external command as a provisioning stage. Transient
// failures are retried with backoff; the last lines of output are folded
// into the returned error for the run report.
type Command struct {
	Name    string
	Path    string
	Args    []string
	Env     []string // extra KEY=VALUE pairs appended to the environment
	Timeout time.Duration
	Retries int
}

// Run implements provision.Executor.
func (c Command) Run(ctx context.Context) error {
	operation := func() error {
		runCtx := ctx
		if c.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
			defer cancel()
		}

		// #nosec G204 -- commands come from the operator's own config
		cmd := exec.CommandContext(runCtx, c.Path, c.Args...)
		cmd.Env = append(os.Environ(), c.Env...)

		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s failed: %w: %s", c.Name, err, lastLines(out, 5))
		}
		return nil
	}

	return retry.Do(ctx, operation,
		retry.WithMaxRetries(c.Retries),
		retry.WithInitialDelay(2*time.Second),
	)
}

// lastLines returns up to n trailing non-empty output lines, flattened for
// inclusion in an error message.
func lastLines(out []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
