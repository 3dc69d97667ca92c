package daemon

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pathCollector struct {
	mu    sync.Mutex
	paths []string
}

func (c *pathCollector) add(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
}

func (c *pathCollector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func TestLogWatcherFiresOnCSVWrites(t *testing.T) {
	dir := t.TempDir()
	var got pathCollector

	w, err := NewLogWatcher(dir, got.add)
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond
	require.NoError(t, w.Start(t.Context()))
	defer w.Stop(t.Context())

	path := filepath.Join(dir, "run.csv")
	require.NoError(t, os.WriteFile(path, []byte("time, area, section\n"), 0o644))

	require.Eventually(t, func() bool {
		return len(got.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, got.snapshot()[0], "run.csv")
}

func TestLogWatcherIgnoresNonCSV(t *testing.T) {
	dir := t.TempDir()
	var got pathCollector

	w, err := NewLogWatcher(dir, got.add)
	require.NoError(t, err)
	w.debounceTime = 50 * time.Millisecond
	require.NoError(t, w.Start(t.Context()))
	defer w.Stop(t.Context())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.csv"), []byte("y"), 0o644))

	require.Eventually(t, func() bool {
		return len(got.snapshot()) >= 1
	}, 5*time.Second, 20*time.Millisecond)

	for _, p := range got.snapshot() {
		assert.True(t, isCSV(p), "non-CSV file must not trigger the callback: %s", p)
	}
}

func TestLogWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var got pathCollector

	w, err := NewLogWatcher(dir, got.add)
	require.NoError(t, err)
	w.debounceTime = 200 * time.Millisecond
	require.NoError(t, w.Start(t.Context()))
	defer w.Stop(t.Context())

	path := filepath.Join(dir, "run.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	for range 5 {
		_, err := f.WriteString("row\n")
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return len(got.snapshot()) >= 1
	}, 5*time.Second, 20*time.Millisecond)

	// Let any stray timers fire before counting.
	time.Sleep(400 * time.Millisecond)
	assert.Len(t, got.snapshot(), 1, "a write burst should collapse into one callback")
}

func TestLogWatcherMissingDirectory(t *testing.T) {
	w, err := NewLogWatcher(filepath.Join(t.TempDir(), "missing"), func(string) {})
	require.NoError(t, err)
	require.Error(t, w.Start(t.Context()))
}

func TestIsCSV(t *testing.T) {
	assert.True(t, isCSV("a.csv"))
	assert.True(t, isCSV("a.CSV"))
	assert.False(t, isCSV("a.txt"))
	assert.False(t, isCSV("csv"))
}
