package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dhkang-dev/raceboard/internal/config"
	"github.com/dhkang-dev/raceboard/internal/logfields"
	"github.com/dhkang-dev/raceboard/internal/metrics"
	"github.com/dhkang-dev/raceboard/internal/pipeline"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Dir   string `short:"d" help:"Project directory to build in" default:"."`
	Watch bool   `short:"w" help:"Rebuild whenever project sources change"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if b.Watch {
		return watchAndBuild(context.Background(), b.Dir, cfg.Build)
	}
	return runBuild(context.Background(), b.Dir, cfg.Build)
}

func runBuild(ctx context.Context, dir string, cfg config.BuildConfig) error {
	fmt.Println("Starting release build")

	runner := pipeline.NewRunner(dir, cfg, metrics.NoopRecorder{})
	report, err := runner.Run(ctx)

	for _, name := range report.Skipped {
		fmt.Printf("Notice: %s not found, skipped\n", name)
	}
	for _, link := range report.BrokenLinks {
		fmt.Printf("Warning: README links to missing file %s\n", link)
	}
	return err
}

// watchAndBuild reruns the pipeline when project sources change. Events are
// debounced so editor save bursts trigger one build. Artifacts written by
// the build itself are filtered out to avoid rebuild loops.
func watchAndBuild(ctx context.Context, dir string, cfg config.BuildConfig) error {
	if err := runBuild(ctx, dir, cfg); err != nil {
		slog.Error("Build failed, watching for changes", logfields.Error(err))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	slog.Info("Watching for changes", logfields.Path(dir))

	rebuild := make(chan struct{}, 1)
	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isBuildInput(event.Name, cfg) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(2*time.Second, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))
		case <-rebuild:
			slog.Info("Change detected, rebuilding")
			if err := runBuild(ctx, dir, cfg); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			}
		}
	}
}

// isBuildInput filters out the pipeline's own outputs.
func isBuildInput(path string, cfg config.BuildConfig) bool {
	base := filepath.Base(path)
	if base == cfg.DistDir || base == cfg.WorkDir {
		return false
	}
	if filepath.Ext(base) == ".spec" {
		return false
	}
	// Ignore transient editor files.
	if len(base) > 0 && (base[0] == '.' || base[len(base)-1] == '~') {
		return false
	}
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return false
	}
	return true
}
