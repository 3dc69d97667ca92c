package grafana

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dhkang-dev/raceboard/internal/logfields"
)

// DatasourceUIDPlaceholder is the template variable Grafana writes into
// exported dashboard JSON; uploads substitute the real datasource UID.
const DatasourceUIDPlaceholder = "${DS_MARCUSOLSSON-CSV-DATASOURCE}"

// DashboardHit is one result from the dashboard search API.
type DashboardHit struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PostResult is what Grafana reports after accepting a dashboard.
type PostResult struct {
	UID     string `json:"uid"`
	Version int    `json:"version"`
	Status  string `json:"status"`
	URL     string `json:"url"`
}

// SearchDashboards lists dashboards, optionally filtered by a search query.
func (c *Client) SearchDashboards(ctx context.Context, query string) ([]DashboardHit, error) {
	endpoint := "/api/search?type=dash-db"
	if query != "" {
		endpoint += "&query=" + url.QueryEscape(query)
	}
	req, err := c.NewRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out []DashboardHit
	if err := c.DoRequest(req, &out); err != nil {
		return nil, fmt.Errorf("search dashboards: %w", err)
	}
	return out, nil
}

// FindDashboardByTitle returns the UID of the dashboard with the exact
// title, or "" when no dashboard matches. The full listing is scanned first,
// then a server-side query as fallback.
func (c *Client) FindDashboardByTitle(ctx context.Context, title string) (string, error) {
	all, err := c.SearchDashboards(ctx, "")
	if err != nil {
		return "", err
	}
	for _, hit := range all {
		if hit.Title == title {
			return hit.UID, nil
		}
	}

	queried, err := c.SearchDashboards(ctx, title)
	if err != nil {
		return "", err
	}
	for _, hit := range queried {
		if hit.Title == title {
			return hit.UID, nil
		}
	}
	return "", nil
}

// UploadOptions configures PostDashboard.
type UploadOptions struct {
	DatasourceUID string // substituted for DatasourceUIDPlaceholder
	Title         string // overrides the template's title when non-empty
	StartTime     string // "YYYY-MM-DD HH:MM:SS.sss" from the analysis
	EndTime       string
	Overwrite     bool
}

// PostDashboard uploads raw dashboard JSON (as exported from Grafana). The
// datasource placeholder is substituted and the dashboard's time range is
// pinned to the analyzed log span in KST so panels open on the data instead
// of 1970.
func (c *Client) PostDashboard(ctx context.Context, dashboardJSON []byte, opts UploadOptions) (*PostResult, error) {
	content := strings.ReplaceAll(string(dashboardJSON), DatasourceUIDPlaceholder, opts.DatasourceUID)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse dashboard JSON: %w", err)
	}

	// Exports sometimes nest the model under a "dashboard" key.
	db := parsed
	if inner, ok := parsed["dashboard"].(map[string]any); ok {
		db = inner
	}

	if opts.StartTime != "" && opts.EndTime != "" {
		startISO, err := ToKSTISO8601(opts.StartTime)
		if err != nil {
			return nil, fmt.Errorf("parse start time: %w", err)
		}
		endISO, err := ToKSTISO8601(opts.EndTime)
		if err != nil {
			return nil, fmt.Errorf("parse end time: %w", err)
		}
		db["time"] = map[string]any{"from": startISO, "to": endISO}
		db["timeFrom"] = startISO
		db["timeTo"] = endISO
	}
	if opts.Title != "" {
		db["title"] = opts.Title
	}
	db["refresh"] = false

	payload := map[string]any{
		"dashboard": db,
		"folderId":  0,
		"overwrite": opts.Overwrite,
	}

	req, err := c.NewRequest(ctx, http.MethodPost, "/api/dashboards/db", payload)
	if err != nil {
		return nil, err
	}

	var result PostResult
	if err := c.DoRequest(req, &result); err != nil {
		return nil, fmt.Errorf("post dashboard: %w", err)
	}

	slog.Info("Dashboard uploaded", logfields.UID(result.UID), slog.Int("version", result.Version))
	return &result, nil
}

// DeleteDashboard removes one dashboard by UID.
func (c *Client) DeleteDashboard(ctx context.Context, uid string) error {
	req, err := c.NewRequest(ctx, http.MethodDelete, "/api/dashboards/uid/"+uid, nil)
	if err != nil {
		return err
	}
	if err := c.DoRequest(req, nil); err != nil {
		return fmt.Errorf("delete dashboard %s: %w", uid, err)
	}
	return nil
}

// DeleteAllDashboards removes every dashboard, returning how many were
// deleted and how many failed. Individual failures do not stop the sweep.
func (c *Client) DeleteAllDashboards(ctx context.Context) (deleted, failed int, err error) {
	all, err := c.SearchDashboards(ctx, "")
	if err != nil {
		return 0, 0, err
	}

	for _, hit := range all {
		if hit.UID == "" {
			slog.Warn("Dashboard without UID skipped", slog.String("title", hit.Title))
			failed++
			continue
		}
		if derr := c.DeleteDashboard(ctx, hit.UID); derr != nil {
			slog.Warn("Dashboard delete failed", logfields.UID(hit.UID), logfields.Error(derr))
			failed++
			continue
		}
		deleted++
	}
	return deleted, failed, nil
}
