// Package events publishes run outcomes to NATS so downstream consumers
// (notification bots, ops dashboards) can react to builds and uploads.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/dhkang-dev/raceboard/internal/config"
	"github.com/dhkang-dev/raceboard/internal/state"
)

// Publisher sends run events. Implementations must be safe for concurrent
// use.
type Publisher interface {
	PublishRun(ctx context.Context, run state.Run) error
	Close() error
}

// NoopPublisher discards all events. Used when publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRun(context.Context, state.Run) error { return nil }
func (NoopPublisher) Close() error                                { return nil }

// NATSPublisher publishes run events to a JetStream subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSPublisher connects to NATS and prepares the JetStream context.
func NewNATSPublisher(cfg config.NATSConfig) (*NATSPublisher, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	slog.Info("NATS publisher initialized",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject))

	return &NATSPublisher{conn: conn, js: js, subject: cfg.Subject}, nil
}

// PublishRun sends one finished run as a JSON message.
func (p *NATSPublisher) PublishRun(ctx context.Context, run state.Run) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}

	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish run event: %w", err)
	}

	slog.Debug("Published run event",
		slog.String("run_id", run.ID),
		slog.String("run_type", run.RunType),
		slog.String("outcome", run.Outcome))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// FromConfig returns a NATS publisher when enabled, a noop otherwise.
// Connection failures are logged and degrade to the noop so a missing
// broker never blocks a run.
func FromConfig(cfg config.NATSConfig) Publisher {
	if !cfg.Enabled {
		return NoopPublisher{}
	}
	p, err := NewNATSPublisher(cfg)
	if err != nil {
		slog.Warn("Event publishing unavailable", slog.String("error", err.Error()))
		return NoopPublisher{}
	}
	return p
}
