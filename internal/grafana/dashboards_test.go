package grafana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportedDashboard = `{
	"dashboard": {
		"title": "Race Overview",
		"panels": [
			{"datasource": {"type": "marcusolsson-csv-datasource", "uid": "${DS_MARCUSOLSSON-CSV-DATASOURCE}"}}
		],
		"refresh": "5s",
		"time": {"from": "now-6h", "to": "now"}
	}
}`

func TestPostDashboardSubstitutesAndPinsTime(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/dashboards/db", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"uid":"d-1","version":2,"status":"success","url":"/d/d-1"}`))
	}))

	result, err := c.PostDashboard(context.Background(), []byte(exportedDashboard), UploadOptions{
		DatasourceUID: "csv-uid-7",
		StartTime:     "2026-03-01 09:15:00.250",
		EndTime:       "2026-03-01 11:40:30.000",
		Overwrite:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "d-1", result.UID)
	assert.Equal(t, 2, result.Version)

	assert.Equal(t, true, got["overwrite"])
	assert.Equal(t, float64(0), got["folderId"])

	db := got["dashboard"].(map[string]any)
	assert.Equal(t, "Race Overview", db["title"])
	assert.Equal(t, false, db["refresh"])

	panels := db["panels"].([]any)
	ds := panels[0].(map[string]any)["datasource"].(map[string]any)
	assert.Equal(t, "csv-uid-7", ds["uid"])

	tr := db["time"].(map[string]any)
	assert.Equal(t, "2026-03-01T09:15:00.250+09:00", tr["from"])
	assert.Equal(t, "2026-03-01T11:40:30.000+09:00", tr["to"])
	assert.Equal(t, tr["from"], db["timeFrom"])
	assert.Equal(t, tr["to"], db["timeTo"])
}

func TestPostDashboardWithoutTimeRange(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"uid":"d-2","version":1}`))
	}))

	_, err := c.PostDashboard(context.Background(), []byte(`{"title":"Flat"}`), UploadOptions{
		DatasourceUID: "u",
	})
	require.NoError(t, err)

	db := got["dashboard"].(map[string]any)
	assert.Equal(t, "Flat", db["title"])
	assert.NotContains(t, db, "time")
	assert.NotContains(t, db, "timeFrom")
	assert.Equal(t, false, db["refresh"])
}

func TestPostDashboardOverridesTitle(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"uid":"d-3","version":1}`))
	}))

	_, err := c.PostDashboard(context.Background(), []byte(exportedDashboard), UploadOptions{
		DatasourceUID: "u",
		Title:         "Race Log Analysis",
	})
	require.NoError(t, err)

	db := got["dashboard"].(map[string]any)
	assert.Equal(t, "Race Log Analysis", db["title"])
}

func TestPostDashboardRejectsBadJSON(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	_, err := c.PostDashboard(context.Background(), []byte(`{broken`), UploadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dashboard JSON")
}

func TestFindDashboardByTitle(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search", r.URL.Path)
		require.Equal(t, "dash-db", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`[
			{"uid":"aaa","title":"Race Overview","url":"/d/aaa"},
			{"uid":"bbb","title":"Lap Times","url":"/d/bbb"}
		]`))
	}))

	uid, err := c.FindDashboardByTitle(context.Background(), "Lap Times")
	require.NoError(t, err)
	assert.Equal(t, "bbb", uid)

	uid, err = c.FindDashboardByTitle(context.Background(), "Nope")
	require.NoError(t, err)
	assert.Empty(t, uid)
}

func TestFindDashboardByTitleQueryFallback(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "" {
			// Truncated listing that misses the target.
			_, _ = w.Write([]byte(`[{"uid":"aaa","title":"Other"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"uid":"ccc","title":"Race Overview"}]`))
	}))

	uid, err := c.FindDashboardByTitle(context.Background(), "Race Overview")
	require.NoError(t, err)
	assert.Equal(t, "ccc", uid)
}

func TestDeleteAllDashboardsTallies(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`[
				{"uid":"a","title":"A"},
				{"uid":"","title":"legacy no uid"},
				{"uid":"c","title":"C"}
			]`))
		case r.URL.Path == "/api/dashboards/uid/c":
			w.WriteHeader(http.StatusForbidden)
		default:
			_, _ = w.Write([]byte(`{"message":"deleted"}`))
		}
	}))

	deleted, failed, err := c.DeleteAllDashboards(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 2, failed)
}

func TestDeleteAllDashboardsSearchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "k", 0)
	_, _, err := c.DeleteAllDashboards(context.Background())
	require.Error(t, err)
}
