package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
grafana:
  server_url: http://grafana.local:3000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pyinstaller", cfg.Build.Tool)
	assert.Equal(t, "main.py", cfg.Build.Entry)
	assert.Equal(t, "GrafanaUploader", cfg.Build.Name)
	assert.Equal(t, "assets/app.ico", cfg.Build.Icon)
	assert.Equal(t, "dist", cfg.Build.DistDir)
	assert.Equal(t, "build", cfg.Build.WorkDir)
	assert.Equal(t, "default_config.ini", cfg.Build.DefaultConfig)
	require.NotNil(t, cfg.Build.OneFile)
	assert.True(t, *cfg.Build.OneFile)
	require.NotNil(t, cfg.Build.Windowed)
	assert.True(t, *cfg.Build.Windowed)
	require.Len(t, cfg.Build.BundleData, 1)
	assert.Equal(t, "config.ini", cfg.Build.BundleData[0].Src)
	assert.Equal(t, ".", cfg.Build.BundleData[0].Dest)

	assert.Equal(t, 10, cfg.Grafana.TimeoutSeconds)
	assert.Equal(t, "10m", cfg.Daemon.ScanInterval)
	assert.Equal(t, "auto", cfg.Analyze.Encoding)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("RACEBOARD_TEST_KEY", "sekrit")
	path := writeConfig(t, `
grafana:
  server_url: http://localhost:3000
  api_key: ${RACEBOARD_TEST_KEY}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.Grafana.APIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad scheme", "grafana:\n  server_url: ftp://x\n"},
		{"bad interval", "daemon:\n  scan_interval: sometimes\n"},
		{"bad encoding", "analyze:\n  encoding: utf-16\n"},
		{"bundle missing dest", "build:\n  bundle_data:\n    - src: config.ini\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, c.yaml))
			require.Error(t, err)
		})
	}
}

func TestRequireGrafana(t *testing.T) {
	cfg, err := Load(writeConfig(t, "grafana:\n  server_url: http://localhost:3000\n"))
	require.NoError(t, err)
	require.Error(t, cfg.RequireGrafana())

	cfg.Grafana.APIKey = "glsa_xxx"
	require.NoError(t, cfg.RequireGrafana())
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, Init(path, false))

	// Written template must load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Race Log Dashboard", cfg.Dashboard.Title)

	// Second init without force refuses to clobber.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}
