package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrenz/nodeup/internal/health"
)

func healthBackend(t *testing.T, snapshot health.Snapshot) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != health.StatusPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(snapshot))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchSnapshot(t *testing.T) {
	t.Parallel()
	backend := healthBackend(t, health.Snapshot{
		Status:    health.StatusReady,
		Services:  map[string]string{"metrics": health.ServiceReady},
		Timestamp: time.Now(),
	})

	snapshot, err := fetchSnapshot(context.Background(), backend.URL)
	require.NoError(t, err)
	assert.Equal(t, health.StatusReady, snapshot.Status)
	assert.Equal(t, health.ServiceReady, snapshot.Services["metrics"])
}

func TestFetchSnapshot_TrailingSlash(t *testing.T) {
	t.Parallel()
	backend := healthBackend(t, health.Snapshot{Status: health.StatusInitializing})

	snapshot, err := fetchSnapshot(context.Background(), backend.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, health.StatusInitializing, snapshot.Status)
}

func TestFetchSnapshot_DaemonDown(t *testing.T) {
	t.Parallel()
	backend := httptest.NewServer(http.NotFoundHandler())
	backend.Close()

	_, err := fetchSnapshot(context.Background(), backend.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestFetchSnapshot_UnexpectedStatus(t *testing.T) {
	t.Parallel()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(backend.Close)

	_, err := fetchSnapshot(context.Background(), backend.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHealth_Once(t *testing.T) {
	t.Parallel()
	backend := healthBackend(t, health.Snapshot{
		Status:    health.StatusReady,
		Services:  map[string]string{"metrics": health.ServiceReady},
		Timestamp: time.Now(),
	})

	assert.NoError(t, Health(context.Background(), backend.URL, false, true))
}

func TestHealth_WatchStopsOnContextCancel(t *testing.T) {
	t.Parallel()
	backend := healthBackend(t, health.Snapshot{Status: health.StatusReady, Timestamp: time.Now()})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Health(ctx, backend.URL, true, true)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
