package workload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrenz/nodeup/internal/poll"
)

type testLogger struct{}

func (testLogger) Printf(string, ...interface{}) {}

// fakePlane simulates a control plane where each workload becomes ready a
// fixed duration after submission. A zero entry means never ready.
type fakePlane struct {
	mu        sync.Mutex
	readyIn   map[string]time.Duration
	submitted []string
	submitErr map[string]error
}

func newFakePlane(readyIn map[string]time.Duration) *fakePlane {
	return &fakePlane{readyIn: readyIn, submitErr: map[string]error{}}
}

func (p *fakePlane) Submit(_ context.Context, w Workload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.submitErr[w.Name]; err != nil {
		return err
	}
	p.submitted = append(p.submitted, w.Name)
	return nil
}

func (p *fakePlane) Ready(w Workload) poll.Predicate {
	start := time.Now()
	return func(_ context.Context) (bool, error) {
		after, ok := p.readyIn[w.Name]
		if !ok || after == 0 {
			return false, errors.New("no ready replicas")
		}
		return time.Since(start) >= after, nil
	}
}

func TestDeploy_AllReady(t *testing.T) {
	t.Parallel()
	plane := newFakePlane(map[string]time.Duration{
		"db":    time.Millisecond,
		"cache": time.Millisecond,
	})
	d := NewDeployer(plane, testLogger{})

	results, err := d.Deploy(context.Background(), []Workload{
		{Name: "db", Selector: "app=db", Interval: 5 * time.Millisecond, Deadline: time.Second},
		{Name: "cache", Selector: "app=cache", Interval: 5 * time.Millisecond, Deadline: time.Second},
	})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results["db"].Satisfied)
	assert.True(t, results["cache"].Satisfied)
	assert.Equal(t, []string{"db", "cache"}, plane.submitted, "submission happens in declared order")
}

func TestDeploy_JoinSemantics(t *testing.T) {
	t.Parallel()
	// A is ready almost immediately, B never becomes ready. Deploy must wait
	// for B's full deadline, not return when A finishes.
	plane := newFakePlane(map[string]time.Duration{"a": time.Millisecond})
	d := NewDeployer(plane, testLogger{})

	start := time.Now()
	results, err := d.Deploy(context.Background(), []Workload{
		{Name: "a", Selector: "app=a", Interval: 5 * time.Millisecond, Deadline: time.Second},
		{Name: "b", Selector: "app=b", Interval: 10 * time.Millisecond, Deadline: 100 * time.Millisecond},
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
	assert.NotContains(t, err.Error(), "a,")
	assert.True(t, results["a"].Satisfied)
	assert.False(t, results["b"].Satisfied)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond, "deploy is bounded by the slowest workload")
}

func TestDeploy_ErrorNamesAllLateWorkloads(t *testing.T) {
	t.Parallel()
	plane := newFakePlane(map[string]time.Duration{})
	d := NewDeployer(plane, testLogger{})

	_, err := d.Deploy(context.Background(), []Workload{
		{Name: "metrics", Selector: "app=metrics", Interval: 5 * time.Millisecond, Deadline: 20 * time.Millisecond},
		{Name: "logging", Selector: "app=logging", Interval: 5 * time.Millisecond, Deadline: 20 * time.Millisecond},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging, metrics")
}

func TestDeploy_SubmitFailureAborts(t *testing.T) {
	t.Parallel()
	plane := newFakePlane(map[string]time.Duration{"db": time.Millisecond})
	plane.submitErr["db"] = errors.New("manifest rejected")
	d := NewDeployer(plane, testLogger{})

	results, err := d.Deploy(context.Background(), []Workload{
		{Name: "db", Selector: "app=db", Deadline: time.Second},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
	assert.Contains(t, err.Error(), "manifest rejected")
	assert.Nil(t, results)
}

func TestDeploy_EmptySet(t *testing.T) {
	t.Parallel()
	d := NewDeployer(newFakePlane(nil), testLogger{})

	results, err := d.Deploy(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWorkloadDefaults(t *testing.T) {
	t.Parallel()
	w := Workload{Name: "db"}
	assert.Equal(t, "default", w.EffectiveNamespace())
	assert.Equal(t, 1, w.EffectiveMinReady())

	w = Workload{Name: "db", Namespace: "storage", MinReady: 3}
	assert.Equal(t, "storage", w.EffectiveNamespace())
	assert.Equal(t, 3, w.EffectiveMinReady())
}
