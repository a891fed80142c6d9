package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusPath is the single query path the aggregator answers on.
const StatusPath = "/healthz"

// Server exposes the aggregator over HTTP.
type Server struct {
	aggregator *Aggregator
	mux        *http.ServeMux
}

// NewServer wires the aggregator to its HTTP surface: the status document
// on StatusPath, Prometheus metrics on /metrics, 404 for everything else.
func NewServer(aggregator *Aggregator) *Server {
	s := &Server{
		aggregator: aggregator,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc(StatusPath, s.statusHandler)
	s.mux.Handle("/metrics", promhttp.Handler())
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe serves queries until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// statusHandler answers one liveness query. The path match always yields a
// 200 with the current snapshot; each request performs fresh probes.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := s.aggregator.Snapshot(r.Context())
	queriesTotal.WithLabelValues(snapshot.Status).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(snapshot)
}
