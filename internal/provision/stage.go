// Package provision contains the stage pipeline that turns a fresh machine
// into a cluster node.
//
// A pipeline is an ordered list of stages. Each stage wraps an opaque
// executor (an install command, a cluster join, a manifest deployment) and
// may declare a readiness gate that must become true before the pipeline
// moves on. The orchestrator runs stages strictly in order, fails fast on
// fatal stages and records everything into a Run that outlives the pipeline.
package provision

import (
	"context"
	"time"

	"github.com/mkrenz/nodeup/internal/poll"
)

// Executor is the contract every provisioning stage implements. The
// orchestrator never inspects how a stage achieves its effect, only whether
// Run returned an error.
type Executor interface {
	Run(ctx context.Context) error
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context) error

// Run implements Executor.
func (f ExecutorFunc) Run(ctx context.Context) error { return f(ctx) }

// Stage is one named, ordered unit of provisioning work.
type Stage struct {
	// Name is unique within a pipeline and used in results and logs.
	Name string

	// Fatal aborts the whole pipeline when this stage fails or its gate
	// times out. Non-fatal failures are recorded and skipped over.
	Fatal bool

	// Executor performs the stage's effect.
	Executor Executor

	// Gate, when set, is polled after a successful execution. The stage only
	// counts as complete once the gate is satisfied within its deadline.
	Gate *poll.Check
}

// StageStatus is the outcome of a single stage.
type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageTimedOut  StageStatus = "timed_out"
)

// StageResult records the outcome of running one stage. Results are
// append-only; once created they are never mutated.
type StageResult struct {
	Stage   string        `json:"stage"`
	Status  StageStatus   `json:"status"`
	Detail  string        `json:"detail,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

// RunStatus is the overall state of a pipeline run.
type RunStatus string

const (
	RunInProgress RunStatus = "in_progress"
	RunReady      RunStatus = "ready"
	RunFailed     RunStatus = "failed"
)

// Run is the aggregate record of one pipeline execution. It is written only
// by the orchestrator's control flow and becomes read-only once FinishedAt
// is set.
type Run struct {
	Results    []StageResult `json:"results"`
	Status     RunStatus     `json:"status"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt,omitzero"`
}

// Failed reports whether the run ended in failure.
func (r *Run) Failed() bool { return r.Status == RunFailed }

// FailedStages returns the names of stages that failed or timed out.
func (r *Run) FailedStages() []string {
	var names []string
	for _, res := range r.Results {
		if res.Status != StageSucceeded {
			names = append(names, res.Stage)
		}
	}
	return names
}
