package config

// Default values applied after unmarshal. Values mirror what the packaged
// application expects at runtime (config.ini staged next to the executable).
const (
	DefaultPackagerTool  = "pyinstaller"
	DefaultEntryScript   = "main.py"
	DefaultExecutable    = "GrafanaUploader"
	DefaultIconPath      = "assets/app.ico"
	DefaultDistDir       = "dist"
	DefaultWorkDir       = "build"
	DefaultConfigSource  = "default_config.ini"
	DefaultConfigStaged  = "config.ini"
	DefaultDataDir       = "data"
	DefaultReadme        = "README.md"
	DefaultGrafanaURL    = "http://localhost:3000"
	DefaultTimeoutSecs   = 10
	DefaultReportDir     = "reports"
	DefaultListenAddr    = ":8085"
	DefaultScanInterval  = "10m"
	DefaultStateDB       = "raceboard.db"
	DefaultNATSSubject   = "raceboard.runs"
	DefaultDashboardName = "Race Log Dashboard"
)

func boolPtr(v bool) *bool { return &v }

func applyDefaults(c *Config) {
	if c.Grafana.ServerURL == "" {
		c.Grafana.ServerURL = DefaultGrafanaURL
	}
	if c.Grafana.TimeoutSeconds <= 0 {
		c.Grafana.TimeoutSeconds = DefaultTimeoutSecs
	}
	if c.Dashboard.Title == "" {
		c.Dashboard.Title = DefaultDashboardName
	}
	if c.Analyze.OutputDir == "" {
		c.Analyze.OutputDir = DefaultReportDir
	}
	if c.Analyze.Encoding == "" {
		c.Analyze.Encoding = "auto"
	}

	b := &c.Build
	if b.Tool == "" {
		b.Tool = DefaultPackagerTool
	}
	if b.Entry == "" {
		b.Entry = DefaultEntryScript
	}
	if b.Name == "" {
		b.Name = DefaultExecutable
	}
	if b.Icon == "" {
		b.Icon = DefaultIconPath
	}
	if b.DistDir == "" {
		b.DistDir = DefaultDistDir
	}
	if b.WorkDir == "" {
		b.WorkDir = DefaultWorkDir
	}
	if b.DefaultConfig == "" {
		b.DefaultConfig = DefaultConfigSource
	}
	if b.DataDir == "" {
		b.DataDir = DefaultDataDir
	}
	if b.Readme == "" {
		b.Readme = DefaultReadme
	}
	if b.OneFile == nil {
		b.OneFile = boolPtr(true)
	}
	if b.Windowed == nil {
		b.Windowed = boolPtr(true)
	}
	if len(b.BundleData) == 0 {
		// The runtime config is embedded into the executable's resource set.
		b.BundleData = []BundleData{{Src: DefaultConfigStaged, Dest: "."}}
	}

	d := &c.Daemon
	if d.Listen == "" {
		d.Listen = DefaultListenAddr
	}
	if d.ScanInterval == "" {
		d.ScanInterval = DefaultScanInterval
	}
	if d.StateDB == "" {
		d.StateDB = DefaultStateDB
	}
	if d.NATS.Subject == "" {
		d.NATS.Subject = DefaultNATSSubject
	}
}
