package config

import (
	"strings"
	"time"

	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
)

// Validate checks invariants that Load cannot default away.
// Grafana credentials are only required by commands that talk to the server;
// build and analyze must work without them.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Grafana.ServerURL, "http://") && !strings.HasPrefix(c.Grafana.ServerURL, "https://") {
		return apperrors.ValidationFailed("grafana.server_url", "must start with http:// or https://")
	}

	if c.Build.Entry == "" {
		return apperrors.ConfigRequired("build.entry")
	}
	if c.Build.Name == "" {
		return apperrors.ConfigRequired("build.name")
	}
	for _, bd := range c.Build.BundleData {
		if bd.Src == "" || bd.Dest == "" {
			return apperrors.ValidationFailed("build.bundle_data", "src and dest are both required")
		}
	}

	if _, err := time.ParseDuration(c.Daemon.ScanInterval); err != nil {
		return apperrors.ValidationFailed("daemon.scan_interval", "not a valid duration: "+c.Daemon.ScanInterval)
	}

	switch c.Analyze.Encoding {
	case "auto", "utf-8", "euc-kr":
	default:
		return apperrors.ValidationFailed("analyze.encoding", "must be auto, utf-8 or euc-kr")
	}

	return nil
}

// RequireGrafana validates the fields needed for API access. Called by the
// upload/grafana/daemon commands before constructing a client.
func (c *Config) RequireGrafana() error {
	if c.Grafana.APIKey == "" {
		return apperrors.ConfigRequired("grafana.api_key")
	}
	return nil
}
