package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dhkang-dev/raceboard/internal/logfields"
)

// LogWatcher monitors a directory for new or updated CSV race logs and
// invokes the callback once writes settle.
type LogWatcher struct {
	dir          string
	onFile       func(path string)
	watcher      *fsnotify.Watcher
	debounceTime time.Duration

	mu       sync.Mutex
	timers   map[string]*time.Timer
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewLogWatcher creates a watcher over dir. onFile fires for each CSV file
// after its events have been quiet for the debounce window.
func NewLogWatcher(dir string, onFile func(path string)) (*LogWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("resolve watch directory: %w", err)
	}

	return &LogWatcher{
		dir:          absDir,
		onFile:       onFile,
		watcher:      watcher,
		debounceTime: 2 * time.Second,
		timers:       make(map[string]*time.Timer),
		stopChan:     make(chan struct{}),
	}, nil
}

// Start begins monitoring the directory.
func (w *LogWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.dir, err)
	}

	slog.Info("Starting log watcher", logfields.Path(w.dir))
	go w.watchLoop(ctx)
	return nil
}

// Stop stops the watcher and cancels pending debounce timers.
func (w *LogWatcher) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() {
		slog.Info("Stopping log watcher")
		close(w.stopChan)
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}

		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.timers = make(map[string]*time.Timer)
		w.mu.Unlock()
	})
	return nil
}

func (w *LogWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isCSV(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				slog.Debug("Log file event", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.scheduleCallback(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Log watcher error", logfields.Error(err))
		}
	}
}

// scheduleCallback resets the per-file debounce timer so the callback fires
// once per burst of writes, not once per write.
func (w *LogWatcher) scheduleCallback(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounceTime, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case <-w.stopChan:
			return
		default:
		}
		w.onFile(path)
	})
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
