// Package grafana is a thin client for the Grafana HTTP API: datasource and
// dashboard management scoped to what the uploader needs.
package grafana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
)

// Client provides common HTTP operations against one Grafana instance.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Client. timeout guards every request.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// NewRequest creates an HTTP request with bearer auth and JSON headers.
// Endpoint should be a relative path like "/api/datasources"; query strings
// in the endpoint are preserved.
func (c *Client) NewRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	cleanEndpoint := strings.TrimPrefix(endpoint, "/")

	var rawQuery string
	if idx := strings.Index(cleanEndpoint, "?"); idx != -1 {
		rawQuery = cleanEndpoint[idx+1:]
		cleanEndpoint = cleanEndpoint[:idx]
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", c.baseURL, err)
	}
	basePath := strings.TrimSuffix(u.Path, "/")
	u.Path = path.Join(basePath, cleanEndpoint)
	if rawQuery != "" {
		u.RawQuery = rawQuery
	}

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		req, err = http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(jsonBody))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u.String(), http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// DoRequest executes req and unmarshals a 2xx JSON response into out (out may
// be nil). Non-2xx responses become structured errors carrying the status and
// any message Grafana returned.
func (c *Client) DoRequest(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(c.baseURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := apiMessage(data)
		return apperrors.GrafanaAPIError(req.URL.Path, resp.StatusCode,
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// apiMessage extracts Grafana's error message field, falling back to the raw body.
func apiMessage(data []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if len(data) > 200 {
		data = data[:200]
	}
	return string(data)
}

func classifyTransportError(baseURL string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.GrafanaUnreachable(baseURL,
			fmt.Errorf("server did not respond within the configured timeout: %w", err))
	}
	return apperrors.GrafanaUnreachable(baseURL, err)
}

// Ping verifies both connectivity and API key validity via GET /api/user.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.NewRequest(ctx, http.MethodGet, "/api/user", nil)
	if err != nil {
		return err
	}

	err = c.DoRequest(req, nil)
	if err == nil {
		return nil
	}

	var re *apperrors.RaceboardError
	if errors.As(err, &re) {
		switch re.Context["status"] {
		case http.StatusUnauthorized:
			return apperrors.GrafanaAuthError(
				errors.New("API key is invalid or lacks permission (HTTP 401)"))
		case http.StatusNotFound:
			return apperrors.GrafanaAPIError("/api/user", http.StatusNotFound,
				errors.New("API URL looks wrong or the Grafana instance is not answering (HTTP 404)"))
		}
	}
	return err
}
