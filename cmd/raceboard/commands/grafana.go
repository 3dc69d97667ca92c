package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dhkang-dev/raceboard/internal/config"
	"github.com/dhkang-dev/raceboard/internal/grafana"
)

// GrafanaCmd groups Grafana maintenance subcommands.
type GrafanaCmd struct {
	Ping PingCmd `cmd:"" help:"Check API connectivity and credentials"`
	Wipe WipeCmd `cmd:"" help:"Delete all dashboards and datasources"`
}

func grafanaClient(configPath string) (*grafana.Client, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireGrafana(); err != nil {
		return nil, nil, err
	}
	client := grafana.NewClient(cfg.Grafana.ServerURL, cfg.Grafana.APIKey,
		time.Duration(cfg.Grafana.TimeoutSeconds)*time.Second)
	return client, cfg, nil
}

// PingCmd implements 'grafana ping'.
type PingCmd struct{}

func (p *PingCmd) Run(_ *Global, root *CLI) error {
	client, cfg, err := grafanaClient(root.Config)
	if err != nil {
		return err
	}
	if err := client.Ping(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Grafana connection OK (%s)\n", cfg.Grafana.ServerURL)
	return nil
}

// WipeCmd implements 'grafana wipe'. Destructive, so it refuses to run
// without --yes.
type WipeCmd struct {
	Yes bool `help:"Confirm deletion of every dashboard and datasource"`
}

func (w *WipeCmd) Run(_ *Global, root *CLI) error {
	if !w.Yes {
		return fmt.Errorf("refusing to wipe without --yes")
	}

	client, _, err := grafanaClient(root.Config)
	if err != nil {
		return err
	}
	ctx := context.Background()

	dashDeleted, dashFailed, err := client.DeleteAllDashboards(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Dashboards: %d deleted, %d failed\n", dashDeleted, dashFailed)

	dsDeleted, dsFailed, err := client.DeleteAllDatasources(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Datasources: %d deleted, %d failed\n", dsDeleted, dsFailed)
	return nil
}
