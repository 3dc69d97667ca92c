package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/dhkang-dev/raceboard/internal/config"
	"github.com/dhkang-dev/raceboard/internal/daemon"
	"github.com/dhkang-dev/raceboard/internal/events"
	"github.com/dhkang-dev/raceboard/internal/grafana"
	"github.com/dhkang-dev/raceboard/internal/metrics"
	"github.com/dhkang-dev/raceboard/internal/state"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct{}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := state.Open(cfg.Daemon.StateDB)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	var client *grafana.Client
	if cfg.Daemon.Upload {
		if err := cfg.RequireGrafana(); err != nil {
			return err
		}
		client = grafana.NewClient(cfg.Grafana.ServerURL, cfg.Grafana.APIKey,
			time.Duration(cfg.Grafana.TimeoutSeconds)*time.Second)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := daemon.New(cfg, daemon.Options{
		Store:     store,
		Publisher: events.FromConfig(cfg.Daemon.NATS),
		Recorder:  recorder,
		Registry:  registry,
		Grafana:   client,
	})

	slog.Info("Starting daemon, press Ctrl+C to stop")
	return svc.Run(ctx)
}
