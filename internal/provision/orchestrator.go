package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/mkrenz/nodeup/internal/poll"
)

// Orchestrator drives an ordered pipeline of stages.
type Orchestrator struct {
	observer Observer
}

// NewOrchestrator creates an orchestrator reporting to the given observer.
// A nil observer falls back to console output.
func NewOrchestrator(observer Observer) *Orchestrator {
	if observer == nil {
		observer = NewConsoleObserver()
	}
	return &Orchestrator{observer: observer}
}

// Execute runs the stages strictly in declared order and returns the
// completed run record.
//
// A failing executor on a fatal stage, or a fatal stage whose readiness gate
// times out, ends the run immediately with RunFailed; results for stages
// after the failing one are never produced. Non-fatal failures and gate
// timeouts are recorded and the pipeline proceeds. When every stage
// completes, the run is RunReady.
func (o *Orchestrator) Execute(ctx context.Context, stages []Stage) *Run {
	run := &Run{
		Status:    RunInProgress,
		StartedAt: time.Now(),
	}

	o.observer.Printf("Starting provisioning with %d stages...", len(stages))

	for i, stage := range stages {
		stageStart := time.Now()
		o.observer.Event(Event{
			Type:    EventStageStarted,
			Stage:   stage.Name,
			Message: fmt.Sprintf("starting (%d/%d)", i+1, len(stages)),
		})

		if err := stage.Executor.Run(ctx); err != nil {
			run.Results = append(run.Results, StageResult{
				Stage:   stage.Name,
				Status:  StageFailed,
				Detail:  err.Error(),
				Elapsed: time.Since(stageStart),
			})

			if stage.Fatal {
				o.observer.Event(Event{Type: EventStageFailed, Stage: stage.Name, Message: fmt.Sprintf("failed: %v", err)})
				return o.finish(run, RunFailed)
			}

			o.observer.Event(Event{Type: EventStageSkippedOver, Stage: stage.Name, Message: fmt.Sprintf("non-fatal failure: %v", err)})
			continue
		}

		if stage.Gate != nil {
			if !o.waitGate(ctx, run, stage, stageStart) {
				return o.finish(run, RunFailed)
			}
			continue
		}

		run.Results = append(run.Results, StageResult{
			Stage:   stage.Name,
			Status:  StageSucceeded,
			Elapsed: time.Since(stageStart),
		})
		o.observer.Event(Event{
			Type:    EventStageCompleted,
			Stage:   stage.Name,
			Message: fmt.Sprintf("completed in %v", time.Since(stageStart).Round(time.Millisecond)),
		})
	}

	return o.finish(run, RunReady)
}

// waitGate blocks on the stage's readiness gate and appends the stage
// result. It returns false when the pipeline must abort.
func (o *Orchestrator) waitGate(ctx context.Context, run *Run, stage Stage, stageStart time.Time) bool {
	o.observer.Event(Event{
		Type:    EventGateWaiting,
		Stage:   stage.Name,
		Message: fmt.Sprintf("waiting for %s (deadline %v)", stage.Gate.Label, stage.Gate.Deadline),
	})

	outcome := poll.WaitUntil(ctx, *stage.Gate)

	if outcome.Satisfied {
		run.Results = append(run.Results, StageResult{
			Stage:   stage.Name,
			Status:  StageSucceeded,
			Elapsed: time.Since(stageStart),
		})
		o.observer.Event(Event{
			Type:    EventGateSatisfied,
			Stage:   stage.Name,
			Message: fmt.Sprintf("%s satisfied after %v", stage.Gate.Label, outcome.Elapsed.Round(time.Millisecond)),
		})
		return true
	}

	run.Results = append(run.Results, StageResult{
		Stage:   stage.Name,
		Status:  StageTimedOut,
		Detail:  fmt.Sprintf("%s not satisfied within %v", stage.Gate.Label, stage.Gate.Deadline),
		Elapsed: time.Since(stageStart),
	})

	if stage.Fatal {
		o.observer.Event(Event{Type: EventGateTimeout, Stage: stage.Name, Message: fmt.Sprintf("%s timed out, aborting", stage.Gate.Label)})
		return false
	}

	o.observer.Event(Event{Type: EventGateTimeout, Stage: stage.Name, Message: fmt.Sprintf("%s timed out, continuing", stage.Gate.Label)})
	return true
}

// finish marks the run terminal.
func (o *Orchestrator) finish(run *Run, status RunStatus) *Run {
	run.Status = status
	run.FinishedAt = time.Now()
	o.observer.Printf("Provisioning %s after %v", status, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return run
}
