package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StatusDocument(t *testing.T) {
	t.Parallel()
	backend := readyBackend(t)

	server := NewServer(NewAggregator([]Target{{Name: "db", Endpoint: backend.URL}}, time.Second))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StatusPath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status    string            `json:"status"`
		Services  map[string]string `json:"services"`
		Timestamp time.Time         `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, map[string]string{"db": "ready"}, body.Services)
	assert.WithinDuration(t, time.Now(), body.Timestamp, time.Minute)
}

func TestServer_UnknownPathIs404(t *testing.T) {
	t.Parallel()
	server := NewServer(NewAggregator(nil, time.Second))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StatusIs200EvenWhenInitializing(t *testing.T) {
	t.Parallel()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(down.Close)

	server := NewServer(NewAggregator([]Target{{Name: "cache", Endpoint: down.URL}}, time.Second))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StatusPath, nil))

	require.Equal(t, http.StatusOK, rec.Code, "probe failures are reflected in the body, never the status code")

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, StatusInitializing, snapshot.Status)
	assert.Equal(t, "unavailable", snapshot.Services["cache"])
}

func TestServer_MetricsExposed(t *testing.T) {
	t.Parallel()
	server := NewServer(NewAggregator(nil, time.Second))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
