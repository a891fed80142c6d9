// Package health aggregates per-workload health probes into a single
// status document served over HTTP.
//
// The aggregator is a long-lived daemon, deliberately decoupled from the
// provisioning run that starts it. It holds no state between queries: every
// request triggers one fresh probe per workload, so the answer always
// reflects current truth.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Service status values reported per workload.
const (
	ServiceReady       = "ready"
	ServiceUnavailable = "unavailable"
)

// Aggregate status values.
const (
	StatusReady        = "ready"
	StatusInitializing = "initializing"
)

// DefaultProbeTimeout bounds a single probe. Kept low so one unresponsive
// dependency cannot stall the aggregate response.
const DefaultProbeTimeout = 3 * time.Second

// Target is one probed workload endpoint.
type Target struct {
	Name     string
	Endpoint string
}

// Snapshot is the aggregator's answer to one query.
type Snapshot struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
}

// Aggregator probes a fixed set of targets on every query.
type Aggregator struct {
	targets      []Target
	probeTimeout time.Duration
	client       *http.Client
}

// NewAggregator creates an aggregator for the given targets. A
// non-positive probeTimeout falls back to DefaultProbeTimeout.
func NewAggregator(targets []Target, probeTimeout time.Duration) *Aggregator {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &Aggregator{
		targets:      targets,
		probeTimeout: probeTimeout,
		client:       &http.Client{},
	}
}

// Snapshot probes every target concurrently and reduces the results.
// The aggregate is ready only when every probed workload is ready. Probe
// failures downgrade the individual workload to unavailable; they are never
// an error at the request level.
func (a *Aggregator) Snapshot(ctx context.Context) Snapshot {
	type probeResult struct {
		index int
		ok    bool
	}

	results := make(chan probeResult, len(a.targets))
	for i, target := range a.targets {
		go func(i int, target Target) {
			results <- probeResult{index: i, ok: a.probe(ctx, target)}
		}(i, target)
	}

	services := make(map[string]string, len(a.targets))
	overall := StatusReady
	for range a.targets {
		res := <-results
		name := a.targets[res.index].Name
		if res.ok {
			services[name] = ServiceReady
			continue
		}
		services[name] = ServiceUnavailable
		overall = StatusInitializing
	}

	return Snapshot{
		Status:    overall,
		Services:  services,
		Timestamp: time.Now().UTC(),
	}
}

// probe issues one bounded GET against the target's endpoint. Any 2xx
// response counts as ready.
func (a *Aggregator) probe(ctx context.Context, target Target) bool {
	start := time.Now()
	ok := a.probeOnce(ctx, target)

	result := ServiceUnavailable
	if ok {
		result = ServiceReady
	}
	probesTotal.WithLabelValues(target.Name, result).Inc()
	probeDuration.WithLabelValues(target.Name).Observe(time.Since(start).Seconds())
	return ok
}

func (a *Aggregator) probeOnce(ctx context.Context, target Target) bool {
	ctx, cancel := context.WithTimeout(ctx, a.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.Endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// TargetsFromEndpoints builds the probe set from a name->endpoint mapping,
// skipping workloads without a readiness endpoint.
func TargetsFromEndpoints(endpoints map[string]string) []Target {
	targets := make([]Target, 0, len(endpoints))
	for name, endpoint := range endpoints {
		if endpoint == "" {
			continue
		}
		targets = append(targets, Target{Name: name, Endpoint: endpoint})
	}
	return targets
}

// String implements fmt.Stringer for log output.
func (s Snapshot) String() string {
	return fmt.Sprintf("%s (%d services)", s.Status, len(s.Services))
}
