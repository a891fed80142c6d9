// Package poll provides a bounded-time readiness polling primitive.
//
// Every wait loop in the provisioning pipeline goes through WaitUntil so
// that interval and deadline semantics are uniform and testable in one
// place. The primitive knows nothing about stages or workloads.
package poll

import (
	"context"
	"time"
)

// DefaultInterval is used when a Check does not declare its own interval.
const DefaultInterval = 5 * time.Second

// Predicate observes a condition. It must be side-effect-free and safe to
// call repeatedly. A returned error means "not yet satisfied", not failure;
// only the deadline terminates the wait.
type Predicate func(ctx context.Context) (bool, error)

// Check pairs a predicate with its polling policy.
type Check struct {
	// Label identifies the check in logs, e.g. "node-ready".
	Label string

	// Interval is the pause between evaluations. Defaults to DefaultInterval.
	Interval time.Duration

	// Deadline bounds the total wait. A deadline shorter than the interval
	// degenerates to a single evaluation.
	Deadline time.Duration

	// Probe is the condition being waited on.
	Probe Predicate
}

// Outcome reports how a wait ended.
type Outcome struct {
	Satisfied bool
	Elapsed   time.Duration
	Attempts  int
}

// WaitUntil evaluates the check's probe immediately and then every interval
// until it reports true or the deadline elapses. Probe errors (a service
// refusing connections while it starts, a not-yet-registered API object) are
// treated as not-yet-satisfied.
//
// Context cancellation ends the wait early with an unsatisfied outcome.
func WaitUntil(ctx context.Context, check Check) Outcome {
	interval := check.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	attempts := 0

	for {
		attempts++
		ok, err := check.Probe(ctx)
		if ok && err == nil {
			return Outcome{Satisfied: true, Elapsed: time.Since(start), Attempts: attempts}
		}

		if time.Since(start)+interval > check.Deadline {
			return Outcome{Satisfied: false, Elapsed: time.Since(start), Attempts: attempts}
		}

		select {
		case <-ctx.Done():
			return Outcome{Satisfied: false, Elapsed: time.Since(start), Attempts: attempts}
		case <-time.After(interval):
		}
	}
}
