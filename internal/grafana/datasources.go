package grafana

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dhkang-dev/raceboard/internal/logfields"
)

// CSVDatasourceType is the plugin the dashboards read their data through.
const CSVDatasourceType = "marcusolsson-csv-datasource"

// CSVStoragePath resolves a log path into the form the local-storage CSV
// plugin expects: absolute, with forward slashes regardless of host OS.
func CSVStoragePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve CSV path: %w", err)
	}
	return filepath.ToSlash(abs), nil
}

// Datasource is the summary Grafana returns from /api/datasources.
type Datasource struct {
	ID   int64  `json:"id"`
	UID  string `json:"uid"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// DatasourceDetails carries the full settings of one datasource.
type DatasourceDetails struct {
	Datasource
	URL      string         `json:"url"`
	JSONData map[string]any `json:"jsonData"`
}

// CreateCSVDatasource creates a local-storage CSV datasource pointing at
// csvPath and returns its UID. When name is empty a unique one is generated.
func (c *Client) CreateCSVDatasource(ctx context.Context, name, csvPath string) (string, error) {
	if name == "" {
		name = "racelog-" + uuid.NewString()[:8]
	}

	payload := map[string]any{
		"name":      name,
		"type":      CSVDatasourceType,
		"access":    "proxy",
		"url":       csvPath, // the plugin reads the path from url as well
		"isDefault": false,
		"jsonData": map[string]any{
			"storage":     "local",
			"path":        csvPath,
			"delimiter":   ",",
			"pdcInjected": false,
		},
	}

	req, err := c.NewRequest(ctx, http.MethodPost, "/api/datasources", payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Datasource Datasource `json:"datasource"`
	}
	if err := c.DoRequest(req, &resp); err != nil {
		return "", fmt.Errorf("create CSV datasource: %w", err)
	}

	slog.Info("Datasource created", logfields.Name(name), logfields.UID(resp.Datasource.UID))
	return resp.Datasource.UID, nil
}

// ListDatasources returns all configured datasources.
func (c *Client) ListDatasources(ctx context.Context) ([]Datasource, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, "/api/datasources", nil)
	if err != nil {
		return nil, err
	}
	var out []Datasource
	if err := c.DoRequest(req, &out); err != nil {
		return nil, fmt.Errorf("list datasources: %w", err)
	}
	return out, nil
}

// GetDatasource fetches the full settings of one datasource by numeric ID.
func (c *Client) GetDatasource(ctx context.Context, id int64) (*DatasourceDetails, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, fmt.Sprintf("/api/datasources/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var out DatasourceDetails
	if err := c.DoRequest(req, &out); err != nil {
		return nil, fmt.Errorf("get datasource %d: %w", id, err)
	}
	return &out, nil
}

// FindDatasourceByCSVPath returns the UID of the CSV datasource whose
// configured path matches csvPath, or "" when none matches.
func (c *Client) FindDatasourceByCSVPath(ctx context.Context, csvPath string) (string, error) {
	all, err := c.ListDatasources(ctx)
	if err != nil {
		return "", err
	}

	for _, ds := range all {
		if ds.Type != CSVDatasourceType {
			continue
		}
		details, err := c.GetDatasource(ctx, ds.ID)
		if err != nil {
			slog.Warn("Skipping datasource, details unavailable", logfields.Name(ds.Name), logfields.Error(err))
			continue
		}
		if p, ok := details.JSONData["path"].(string); ok && p == csvPath {
			slog.Info("Matching datasource found", logfields.Name(ds.Name), logfields.UID(ds.UID))
			return ds.UID, nil
		}
	}
	return "", nil
}

// EnsureCSVDatasource finds the datasource for csvPath or creates one.
func (c *Client) EnsureCSVDatasource(ctx context.Context, name, csvPath string) (string, error) {
	uid, err := c.FindDatasourceByCSVPath(ctx, csvPath)
	if err != nil {
		return "", err
	}
	if uid != "" {
		return uid, nil
	}
	return c.CreateCSVDatasource(ctx, name, csvPath)
}

// DeleteAllDatasources removes every datasource, returning how many were
// deleted and how many failed. Individual failures do not stop the sweep.
func (c *Client) DeleteAllDatasources(ctx context.Context) (deleted, failed int, err error) {
	all, err := c.ListDatasources(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, ds := range all {
		req, rerr := c.NewRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/datasources/%d", ds.ID), nil)
		if rerr != nil {
			failed++
			continue
		}
		if derr := c.DoRequest(req, nil); derr != nil {
			slog.Warn("Datasource delete failed", logfields.Name(ds.Name), logfields.Error(derr))
			failed++
			continue
		}
		deleted++
	}
	return deleted, failed, nil
}
