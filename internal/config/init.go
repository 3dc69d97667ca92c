package config

import (
	"fmt"
	"os"
)

const defaultConfigTemplate = `# raceboard configuration
grafana:
  server_url: http://localhost:3000
  # Read from the environment so the key never lands in version control.
  api_key: ${GRAFANA_API_KEY}
  timeout_seconds: 10

dashboard:
  title: Race Log Dashboard
  json_path: dashboard.json
  # Leave empty to resolve the CSV datasource UID at upload time.
  datasource_uid: ""
  overwrite: true

analyze:
  csv_path: log.csv
  output_dir: reports
  encoding: auto

build:
  tool: pyinstaller
  entry: main.py
  name: GrafanaUploader
  icon: assets/app.ico
  onefile: true
  windowed: true
  bundle_data:
    - src: config.ini
      dest: .
  dist_dir: dist
  work_dir: build
  default_config: default_config.ini
  data_dir: data
  readme: README.md

daemon:
  listen: ":8085"
  watch_dir: logs
  scan_interval: 10m
  upload: false
  state_db: raceboard.db
  nats:
    enabled: false
    url: nats://127.0.0.1:4222
    subject: raceboard.runs
`

// Init writes a commented default configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
