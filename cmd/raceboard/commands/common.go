// Package commands defines the raceboard CLI surface.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

// Global carries state shared across subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"raceboard.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Package the uploader into a single-file release build"`
	Clean   CleanCmd   `cmd:"" help:"Remove build artifacts (dist, work dir, spec files)"`
	Analyze AnalyzeCmd `cmd:"" help:"Analyze a race CSV log and write a text report"`
	Upload  UploadCmd  `cmd:"" help:"Analyze a race log and upload its dashboard to Grafana"`
	Grafana GrafanaCmd `cmd:"" help:"Grafana maintenance commands"`
	Daemon  DaemonCmd  `cmd:"" help:"Run as a service that watches for new race logs"`
	Init    InitCmd    `cmd:"" help:"Write a starter configuration file"`
}

// AfterApply runs after flag parsing and sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
