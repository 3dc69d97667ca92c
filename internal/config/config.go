// Package config loads and validates the raceboard configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Grafana   GrafanaConfig   `yaml:"grafana"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Analyze   AnalyzeConfig   `yaml:"analyze"`
	Build     BuildConfig     `yaml:"build"`
	Daemon    DaemonConfig    `yaml:"daemon"`
}

// GrafanaConfig holds connection settings for the Grafana HTTP API.
type GrafanaConfig struct {
	ServerURL      string `yaml:"server_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// DashboardConfig describes the dashboard template to upload.
type DashboardConfig struct {
	Title         string `yaml:"title"`
	JSONPath      string `yaml:"json_path"`
	DatasourceUID string `yaml:"datasource_uid,omitempty"` // resolved at runtime when empty
	Overwrite     bool   `yaml:"overwrite,omitempty"`
}

// AnalyzeConfig holds defaults for log analysis.
type AnalyzeConfig struct {
	CSVPath   string `yaml:"csv_path,omitempty"`
	OutputDir string `yaml:"output_dir,omitempty"`
	Encoding  string `yaml:"encoding,omitempty"` // auto, utf-8, euc-kr
}

// BundleData is one packager data resource (source file embedded at dest).
type BundleData struct {
	Src  string `yaml:"src"`
	Dest string `yaml:"dest"`
}

// BuildConfig drives the release packaging pipeline.
type BuildConfig struct {
	Tool          string       `yaml:"tool,omitempty"`
	Entry         string       `yaml:"entry,omitempty"`
	Name          string       `yaml:"name,omitempty"`
	Icon          string       `yaml:"icon,omitempty"`
	BundleData    []BundleData `yaml:"bundle_data,omitempty"`
	OneFile       *bool        `yaml:"onefile,omitempty"`  // default true
	Windowed      *bool        `yaml:"windowed,omitempty"` // default true (no console window)
	DistDir       string       `yaml:"dist_dir,omitempty"`
	WorkDir       string       `yaml:"work_dir,omitempty"`
	DefaultConfig string       `yaml:"default_config,omitempty"`
	DataDir       string       `yaml:"data_dir,omitempty"`
	Readme        string       `yaml:"readme,omitempty"`
}

// NATSConfig configures optional run-event publishing.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// DaemonConfig configures daemon mode.
type DaemonConfig struct {
	Listen       string     `yaml:"listen,omitempty"`
	WatchDir     string     `yaml:"watch_dir,omitempty"`
	ScanInterval string     `yaml:"scan_interval,omitempty"` // Go duration string
	Upload       bool       `yaml:"upload"`
	StateDB      string     `yaml:"state_db,omitempty"`
	NATS         NATSConfig `yaml:"nats,omitempty"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
