package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dhkang-dev/raceboard/internal/analyzer"
	"github.com/dhkang-dev/raceboard/internal/config"
	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
	"github.com/dhkang-dev/raceboard/internal/grafana"
)

// UploadCmd implements the 'upload' command: analyze a race log, make sure a
// CSV datasource exists for it, and post the dashboard pinned to the log's
// time span.
type UploadCmd struct {
	CSV       string `arg:"" optional:"" help:"Race CSV log to upload (default from config)"`
	Dashboard string `help:"Dashboard JSON template (default from config)"`
	Overwrite bool   `help:"Overwrite an existing dashboard with the same title"`
}

func (u *UploadCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireGrafana(); err != nil {
		return err
	}

	csvPath := u.CSV
	if csvPath == "" {
		csvPath = cfg.Analyze.CSVPath
	}
	if csvPath == "" {
		return apperrors.ConfigRequired("analyze.csv_path")
	}
	dashboardPath := u.Dashboard
	if dashboardPath == "" {
		dashboardPath = cfg.Dashboard.JSONPath
	}
	if dashboardPath == "" {
		return apperrors.ConfigRequired("dashboard.json_path")
	}

	res, err := analyzer.New(cfg.Analyze.Encoding).AnalyzeFile(csvPath)
	if err != nil {
		return err
	}
	fmt.Printf("Analyzed %s: %d races, %s - %s\n", csvPath, res.RaceCount, res.FirstTime, res.LastTime)

	ctx := context.Background()
	client := grafana.NewClient(cfg.Grafana.ServerURL, cfg.Grafana.APIKey,
		time.Duration(cfg.Grafana.TimeoutSeconds)*time.Second)

	if err := client.Ping(ctx); err != nil {
		return err
	}

	// Grafana reads the CSV from local storage, so the path must be absolute.
	storagePath, err := grafana.CSVStoragePath(csvPath)
	if err != nil {
		return err
	}

	uid := cfg.Dashboard.DatasourceUID
	if uid == "" {
		uid, err = client.EnsureCSVDatasource(ctx, "", storagePath)
		if err != nil {
			return err
		}
	}

	body, err := os.ReadFile(dashboardPath)
	if err != nil {
		return fmt.Errorf("read dashboard template: %w", err)
	}

	result, err := client.PostDashboard(ctx, body, grafana.UploadOptions{
		DatasourceUID: uid,
		Title:         cfg.Dashboard.Title,
		StartTime:     res.FirstTime,
		EndTime:       res.LastTime,
		Overwrite:     u.Overwrite || cfg.Dashboard.Overwrite,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Dashboard uploaded: %s (version %d)\n", result.UID, result.Version)
	if result.URL != "" {
		fmt.Printf("View at %s%s\n", cfg.Grafana.ServerURL, result.URL)
	}
	return nil
}
