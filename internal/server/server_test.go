package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogbuilder/internal/render"
)

func startTestServer(t *testing.T, registry *prometheus.Registry) *Server {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o600))

	s := New(Options{Addr: "127.0.0.1:0", OutputDir: dir, Registry: registry})
	require.NoError(t, s.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestServer_ServesOutputDirectory(t *testing.T) {
	s := startTestServer(t, nil)

	status, body := get(t, "http://"+s.Addr()+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "home")
}

func TestServer_Healthz(t *testing.T) {
	s := startTestServer(t, nil)

	status, body := get(t, "http://"+s.Addr()+"/healthz")
	assert.Equal(t, http.StatusOK, status)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestServer_StatusReflectsLastBuild(t *testing.T) {
	s := startTestServer(t, nil)

	status, body := get(t, "http://"+s.Addr()+"/api/status")
	assert.Equal(t, http.StatusOK, status)
	var empty map[string]any
	require.NoError(t, json.Unmarshal(body, &empty))
	assert.Nil(t, empty["build"])

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.RecordBuild(&render.BuildReport{
		BuildID:   "abc-123",
		Start:     start,
		End:       start.Add(90 * time.Millisecond),
		Outcome:   render.OutcomeSuccess,
		Published: 4,
		Pages:     8,
	})

	_, body = get(t, "http://"+s.Addr()+"/api/status")
	var payload struct {
		Build struct {
			ID        string `json:"id"`
			Outcome   string `json:"outcome"`
			Published int    `json:"published"`
		} `json:"build"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "abc-123", payload.Build.ID)
	assert.Equal(t, "success", payload.Build.Outcome)
	assert.Equal(t, 4, payload.Build.Published)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	s := startTestServer(t, registry)

	status, _ := get(t, "http://"+s.Addr()+"/metrics")
	assert.Equal(t, http.StatusOK, status)
}
