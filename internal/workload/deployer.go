package workload

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mkrenz/nodeup/internal/poll"
)

// DefaultDeadline bounds a workload's readiness wait when the workload set
// does not declare one.
const DefaultDeadline = 5 * time.Minute

// ControlPlane is the cluster-management system workloads are handed to.
// Scheduling is its problem; the deployer only submits and observes.
type ControlPlane interface {
	// Submit hands one workload's definition to the control plane.
	Submit(ctx context.Context, w Workload) error

	// Ready returns a predicate observing the workload's readiness.
	Ready(w Workload) poll.Predicate
}

// Logger is the logging surface the deployer needs.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Deployer submits the workload set and waits for all of it to become ready.
type Deployer struct {
	plane ControlPlane
	log   Logger
}

// NewDeployer creates a deployer backed by the given control plane.
func NewDeployer(plane ControlPlane, log Logger) *Deployer {
	return &Deployer{plane: plane, log: log}
}

// Deploy submits every workload to the control plane as one batch, then
// waits for each workload's readiness check concurrently, each on its own
// clock. It returns once all checks have either been satisfied or timed out
// (join semantics). The returned error names every workload that never
// became ready; partially-ready workloads are left running.
func (d *Deployer) Deploy(ctx context.Context, workloads []Workload) (map[string]poll.Outcome, error) {
	for _, w := range workloads {
		if err := d.plane.Submit(ctx, w); err != nil {
			return nil, fmt.Errorf("failed to submit workload %s: %w", w.Name, err)
		}
		d.log.Printf("submitted workload %s", w.Name)
	}

	outcomes := make([]poll.Outcome, len(workloads))
	var wg sync.WaitGroup

	for i, w := range workloads {
		wg.Add(1)
		go func(i int, w Workload) {
			defer wg.Done()
			outcomes[i] = poll.WaitUntil(ctx, readinessCheck(d.plane, w))
		}(i, w)
	}
	wg.Wait()

	results := make(map[string]poll.Outcome, len(workloads))
	var late []string
	for i, w := range workloads {
		results[w.Name] = outcomes[i]
		if outcomes[i].Satisfied {
			d.log.Printf("workload %s ready after %v", w.Name, outcomes[i].Elapsed.Round(time.Millisecond))
		} else {
			late = append(late, w.Name)
		}
	}

	if len(late) > 0 {
		sort.Strings(late)
		return results, fmt.Errorf("workloads not ready within deadline: %s", strings.Join(late, ", "))
	}
	return results, nil
}

// readinessCheck builds the poll check for one workload, defaulting the
// deadline when the set does not declare one.
func readinessCheck(plane ControlPlane, w Workload) poll.Check {
	deadline := w.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return poll.Check{
		Label:    fmt.Sprintf("workload %s ready", w.Name),
		Interval: w.Interval,
		Deadline: deadline,
		Probe:    plane.Ready(w),
	}
}
