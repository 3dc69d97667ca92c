package packager

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhkang-dev/raceboard/internal/config"
	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
)

func boolPtr(v bool) *bool { return &v }

func testBuildConfig() config.BuildConfig {
	return config.BuildConfig{
		Tool:       "pyinstaller",
		Entry:      "main.py",
		Name:       "GrafanaUploader",
		Icon:       "assets/app.ico",
		BundleData: []config.BundleData{{Src: "config.ini", Dest: "."}},
		OneFile:    boolPtr(true),
		Windowed:   boolPtr(true),
	}
}

func TestArgsFullSet(t *testing.T) {
	p := New(testBuildConfig(), t.TempDir())
	args := p.Args()

	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	want := []string{
		"--onefile", "--noconsole",
		"--icon", "assets/app.ico",
		"--add-data", "config.ini" + sep + ".",
		"--name", "GrafanaUploader",
		"main.py",
	}
	assert.Equal(t, want, args)
}

func TestArgsEntryComesLast(t *testing.T) {
	p := New(testBuildConfig(), t.TempDir())
	args := p.Args()
	require.NotEmpty(t, args)
	assert.Equal(t, "main.py", args[len(args)-1])
}

func TestArgsWithoutOptionalFlags(t *testing.T) {
	cfg := testBuildConfig()
	cfg.Icon = ""
	cfg.BundleData = nil
	cfg.OneFile = boolPtr(false)
	cfg.Windowed = boolPtr(false)

	args := New(cfg, t.TempDir()).Args()
	joined := strings.Join(args, " ")
	assert.NotContains(t, joined, "--onefile")
	assert.NotContains(t, joined, "--noconsole")
	assert.NotContains(t, joined, "--icon")
	assert.NotContains(t, joined, "--add-data")
	assert.Equal(t, []string{"--name", "GrafanaUploader", "main.py"}, args)
}

func TestRunMissingTool(t *testing.T) {
	cfg := testBuildConfig()
	cfg.Tool = "definitely-not-a-real-packager-binary"
	p := New(cfg, t.TempDir())

	err := p.Run(context.Background())
	require.Error(t, err)

	var re *apperrors.RaceboardError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, apperrors.CategoryPackaging, re.Category)
}

func TestExitCodeExtraction(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	// Exercise exit-code extraction without a real packaging tool installed.
	cmd := exec.Command("sh", "-c", "exit 3")
	err := cmd.Run()
	require.Error(t, err)
	assert.Equal(t, 3, exitCode(err))
}

func TestExitCodeHelper(t *testing.T) {
	err := apperrors.PackagingFailed("pyinstaller", 2, assert.AnError)
	assert.Equal(t, 2, ExitCode(err))
	assert.Equal(t, 0, ExitCode(assert.AnError))
	assert.Equal(t, 0, ExitCode(nil))
}

func TestDetectVersionMissingTool(t *testing.T) {
	got := DetectVersion(context.Background(), "definitely-not-a-real-packager-binary")
	assert.Empty(t, got)
}
