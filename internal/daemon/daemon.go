// Package daemon runs raceboard as a long-lived service: it watches a log
// directory, analyzes new race logs, optionally uploads dashboards, and
// serves status over HTTP.
package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/dhkang-dev/raceboard/internal/analyzer"
	"github.com/dhkang-dev/raceboard/internal/config"
	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
	"github.com/dhkang-dev/raceboard/internal/events"
	"github.com/dhkang-dev/raceboard/internal/grafana"
	"github.com/dhkang-dev/raceboard/internal/logfields"
	"github.com/dhkang-dev/raceboard/internal/metrics"
	"github.com/dhkang-dev/raceboard/internal/state"
)

// Options carries the collaborators the daemon needs. Nil fields degrade to
// no-ops where that is safe.
type Options struct {
	Store     *state.Store
	Publisher events.Publisher
	Recorder  metrics.Recorder
	Registry  *prom.Registry
	Grafana   *grafana.Client // required only when upload is enabled
}

// Daemon is the long-running service.
type Daemon struct {
	cfg       *config.Config
	store     *state.Store
	publisher events.Publisher
	recorder  metrics.Recorder
	registry  *prom.Registry
	grafana   *grafana.Client
	analyzer  *analyzer.Analyzer

	scheduler  *Scheduler
	watcher    *LogWatcher
	httpServer *HTTPServer

	startTime time.Time

	mu             sync.RWMutex
	lastResult     *analyzer.Result
	lastReportPath string
}

// New assembles a daemon from configuration and collaborators.
func New(cfg *config.Config, opts Options) *Daemon {
	pub := opts.Publisher
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Daemon{
		cfg:       cfg,
		store:     opts.Store,
		publisher: pub,
		recorder:  rec,
		registry:  opts.Registry,
		grafana:   opts.Grafana,
		analyzer:  analyzer.New(cfg.Analyze.Encoding),
	}
}

// Run starts all daemon components and blocks until ctx is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	d.startTime = time.Now()

	interval, err := time.ParseDuration(d.cfg.Daemon.ScanInterval)
	if err != nil {
		return apperrors.DaemonStartError("parse scan interval", err)
	}

	d.scheduler, err = NewScheduler()
	if err != nil {
		return apperrors.DaemonStartError("create scheduler", err)
	}
	if _, err := d.scheduler.ScheduleScan(interval, func() { d.ScanOnce(ctx) }); err != nil {
		return apperrors.DaemonStartError("schedule scan", err)
	}

	if d.cfg.Daemon.WatchDir != "" {
		d.watcher, err = NewLogWatcher(d.cfg.Daemon.WatchDir, func(path string) {
			d.ProcessFile(ctx, path)
		})
		if err != nil {
			return apperrors.DaemonStartError("create log watcher", err)
		}
		if err := d.watcher.Start(ctx); err != nil {
			return apperrors.DaemonStartError("start log watcher", err)
		}
	}

	srv := NewHTTPServer(d.cfg.Daemon.Listen, d)
	if err := srv.Start(ctx); err != nil {
		return apperrors.DaemonStartError("start http server", err)
	}
	d.mu.Lock()
	d.httpServer = srv
	d.mu.Unlock()

	d.scheduler.Start(ctx)
	slog.Info("Daemon started",
		slog.String("listen", d.cfg.Daemon.Listen),
		logfields.Path(d.cfg.Daemon.WatchDir),
		slog.Duration("scan_interval", interval))

	// Catch up on logs that arrived while we were down.
	d.ScanOnce(ctx)

	<-ctx.Done()
	return d.shutdown()
}

func (d *Daemon) shutdown() error {
	slog.Info("Daemon shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if d.watcher != nil {
		_ = d.watcher.Stop(shutdownCtx)
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(shutdownCtx); err != nil {
			slog.Error("Scheduler shutdown failed", logfields.Error(err))
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown failed", logfields.Error(err))
		}
	}
	if err := d.publisher.Close(); err != nil {
		slog.Error("Event publisher close failed", logfields.Error(err))
	}
	return nil
}

// ScanOnce walks the watch directory and processes every CSV log that has
// changed since its last successful run.
func (d *Daemon) ScanOnce(ctx context.Context) {
	dir := d.cfg.Daemon.WatchDir
	if dir == "" {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Error("Scan failed", logfields.Path(dir), logfields.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isCSV(entry.Name()) {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		d.ProcessFile(ctx, filepath.Join(dir, entry.Name()))
	}
}

// ProcessFile analyzes one race log, writes its report, and uploads a
// dashboard when uploads are enabled. Already-processed files are skipped.
func (d *Daemon) ProcessFile(ctx context.Context, path string) {
	fresh, err := d.needsProcessing(ctx, path)
	if err != nil {
		slog.Error("Cannot stat log file", logfields.Path(path), logfields.Error(err))
		return
	}
	if !fresh {
		slog.Debug("Log already processed", logfields.Path(path))
		return
	}

	started := time.Now()
	runID := uuid.NewString()
	slog.Info("Processing race log", logfields.RunID(runID), logfields.Path(path))

	res, err := d.analyzer.AnalyzeFile(path)
	if err != nil {
		slog.Error("Analysis failed", logfields.RunID(runID), logfields.Path(path), logfields.Error(err))
		d.recordRun(ctx, runID, "analyze", "failed", path, 0, started, nil)
		return
	}

	reportPath, err := analyzer.WriteTextReport(res, d.reportDir())
	if err != nil {
		slog.Error("Report write failed", logfields.RunID(runID), logfields.Error(err))
		d.recordRun(ctx, runID, "analyze", "failed", path, res.RaceCount, started, nil)
		return
	}

	d.mu.Lock()
	d.lastResult = res
	d.lastReportPath = reportPath
	d.mu.Unlock()

	d.recorder.ObserveAnalyzeRaces(res.RaceCount)
	d.recordRun(ctx, runID, "analyze", "success", path, res.RaceCount, started,
		map[string]string{"report": reportPath})
	slog.Info("Race log analyzed",
		logfields.RunID(runID),
		logfields.Races(res.RaceCount),
		logfields.Path(reportPath))

	if d.cfg.Daemon.Upload {
		d.uploadDashboard(ctx, path, res)
	}
}

// needsProcessing reports whether the file changed since its last
// successful run.
func (d *Daemon) needsProcessing(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if d.store == nil {
		return true, nil
	}

	last, err := d.store.LastBySource(ctx, path)
	if err != nil {
		slog.Warn("Run history unavailable, processing anyway", logfields.Error(err))
		return true, nil
	}
	if last == nil || last.Outcome != "success" {
		return true, nil
	}
	return info.ModTime().After(last.FinishedAt), nil
}

func (d *Daemon) uploadDashboard(ctx context.Context, csvPath string, res *analyzer.Result) {
	if d.grafana == nil || d.cfg.Dashboard.JSONPath == "" {
		slog.Warn("Upload enabled but Grafana client or dashboard template missing")
		return
	}

	started := time.Now()
	runID := uuid.NewString()

	uid := d.cfg.Dashboard.DatasourceUID
	if uid == "" {
		storagePath, err := grafana.CSVStoragePath(csvPath)
		if err != nil {
			slog.Error("Datasource setup failed", logfields.RunID(runID), logfields.Error(err))
			d.recordRun(ctx, runID, "upload", "failed", csvPath, res.RaceCount, started, nil)
			return
		}
		uid, err = d.grafana.EnsureCSVDatasource(ctx, "", storagePath)
		if err != nil {
			slog.Error("Datasource setup failed", logfields.RunID(runID), logfields.Error(err))
			d.recordRun(ctx, runID, "upload", "failed", csvPath, res.RaceCount, started, nil)
			return
		}
	}

	body, err := os.ReadFile(d.cfg.Dashboard.JSONPath)
	if err != nil {
		slog.Error("Dashboard template unreadable", logfields.RunID(runID), logfields.Error(err))
		d.recordRun(ctx, runID, "upload", "failed", csvPath, res.RaceCount, started, nil)
		return
	}

	result, err := d.grafana.PostDashboard(ctx, body, grafana.UploadOptions{
		DatasourceUID: uid,
		Title:         d.cfg.Dashboard.Title,
		StartTime:     res.FirstTime,
		EndTime:       res.LastTime,
		Overwrite:     d.cfg.Dashboard.Overwrite,
	})
	if err != nil {
		slog.Error("Dashboard upload failed", logfields.RunID(runID), logfields.Error(err))
		d.recordRun(ctx, runID, "upload", "failed", csvPath, res.RaceCount, started, nil)
		return
	}

	d.recorder.ObserveUploadDuration(time.Since(started))
	d.recordRun(ctx, runID, "upload", "success", csvPath, res.RaceCount, started,
		map[string]string{"dashboard_uid": result.UID, "dashboard_url": result.URL})
	slog.Info("Dashboard uploaded", logfields.RunID(runID), logfields.UID(result.UID))
}

func (d *Daemon) recordRun(ctx context.Context, runID, runType, outcome, source string, races int, started time.Time, detail map[string]string) {
	finished := time.Now()
	d.recorder.IncRunOutcome(runType, outcome)

	run := state.Run{
		ID:         runID,
		RunType:    runType,
		Outcome:    outcome,
		Source:     source,
		Races:      races,
		DurationMS: finished.Sub(started).Milliseconds(),
		StartedAt:  started,
		FinishedAt: finished,
		Detail:     detail,
	}

	if d.store != nil {
		if err := d.store.Record(ctx, run); err != nil {
			slog.Error("Run history write failed", logfields.RunID(runID), logfields.Error(err))
		}
	}
	if err := d.publisher.PublishRun(ctx, run); err != nil {
		slog.Warn("Run event publish failed", logfields.RunID(runID), logfields.Error(err))
	}
	slog.Debug("Run recorded", logfields.RunID(runID), logfields.RunType(runType), slog.String("outcome", outcome))
}

func (d *Daemon) reportDir() string {
	if d.cfg.Analyze.OutputDir != "" {
		return d.cfg.Analyze.OutputDir
	}
	return config.DefaultReportDir
}

// StartTime returns when the daemon was started.
func (d *Daemon) StartTime() time.Time { return d.startTime }

// HTTPAddr returns the bound HTTP address, or "" before Run has started the
// server. Useful when listening on port 0.
func (d *Daemon) HTTPAddr() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.httpServer == nil {
		return ""
	}
	return d.httpServer.Addr()
}

// LastResult returns the most recent analysis result, or nil.
func (d *Daemon) LastResult() *analyzer.Result {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastResult
}

// LastReportPath returns the path of the most recent text report.
func (d *Daemon) LastReportPath() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastReportPath
}
