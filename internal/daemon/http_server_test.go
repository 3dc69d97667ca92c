package daemon

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhkang-dev/raceboard/internal/analyzer"
	"github.com/dhkang-dev/raceboard/internal/metrics"
	"github.com/dhkang-dev/raceboard/internal/state"
)

func startTestServer(t *testing.T, d *Daemon) string {
	t.Helper()
	d.startTime = time.Now()
	srv := NewHTTPServer("127.0.0.1:0", d)
	require.NoError(t, srv.Start(t.Context()))
	t.Cleanup(func() { _ = srv.Stop(t.Context()) })
	return "http://" + srv.Addr()
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	d := New(testConfig(t), Options{})
	base := startTestServer(t, d)

	resp, body := get(t, base+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.NotEmpty(t, health.Uptime)
}

func TestStatusEndpointIncludesRunHistory(t *testing.T) {
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	now := time.Now()
	require.NoError(t, store.Record(t.Context(), state.Run{
		ID: "r1", RunType: "analyze", Outcome: "success",
		StartedAt: now.Add(-time.Second), FinishedAt: now,
	}))

	d := New(testConfig(t), Options{Store: store})
	base := startTestServer(t, d)

	resp, body := get(t, base+"/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status statusResponse
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, 1, status.OutcomeCounts["analyze"]["success"])
	require.Len(t, status.RecentRuns, 1)
	assert.Equal(t, "r1", status.RecentRuns[0].ID)
}

func TestStatusEndpointFiltersByRunType(t *testing.T) {
	store, err := state.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	now := time.Now()
	require.NoError(t, store.Record(t.Context(), state.Run{
		ID: "a1", RunType: "analyze", Outcome: "success",
		StartedAt: now.Add(-2 * time.Second), FinishedAt: now,
	}))
	require.NoError(t, store.Record(t.Context(), state.Run{
		ID: "u1", RunType: "upload", Outcome: "failed",
		StartedAt: now.Add(-time.Second), FinishedAt: now,
	}))

	d := New(testConfig(t), Options{Store: store})
	base := startTestServer(t, d)

	resp, body := get(t, base+"/status?type=upload")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status statusResponse
	require.NoError(t, json.Unmarshal(body, &status))
	require.Len(t, status.RecentRuns, 1)
	assert.Equal(t, "u1", status.RecentRuns[0].ID)
	assert.Equal(t, "upload", status.RecentRuns[0].RunType)
}

func TestReportEndpointRendersHTML(t *testing.T) {
	d := New(testConfig(t), Options{})
	d.lastResult = &analyzer.Result{
		FirstTime: "2024-05-01 09:00:00.000",
		LastTime:  "2024-05-01 09:10:00.000",
		RaceCount: 2,
	}
	base := startTestServer(t, d)

	resp, body := get(t, base+"/report")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "<h1>")
	assert.Contains(t, string(body), "Race Log Analysis")
}

func TestReportEndpointBeforeFirstAnalysis(t *testing.T) {
	d := New(testConfig(t), Options{})
	base := startTestServer(t, d)

	resp, _ := get(t, base+"/report")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncRunOutcome("analyze", "success")

	d := New(testConfig(t), Options{Recorder: rec, Registry: reg})
	base := startTestServer(t, d)

	resp, body := get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "raceboard_run_outcomes_total")
}

func TestMetricsEndpointAbsentWithoutRegistry(t *testing.T) {
	d := New(testConfig(t), Options{})
	base := startTestServer(t, d)

	resp, _ := get(t, base+"/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
