// Package packager invokes the external packaging tool that bundles the
// entry script and its resources into a single distributable executable.
package packager

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/dhkang-dev/raceboard/internal/config"
	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
	"github.com/dhkang-dev/raceboard/internal/logfields"
)

// Packager wraps one invocation of the packaging tool.
type Packager struct {
	cfg        config.BuildConfig
	projectDir string
}

// New creates a Packager rooted at projectDir.
func New(cfg config.BuildConfig, projectDir string) *Packager {
	return &Packager{cfg: cfg, projectDir: projectDir}
}

// Args builds the tool's command line from the build configuration.
// Mirrors the flags the packaged application has always been built with:
// single-file output, no console window, icon resource, embedded data
// resources, fixed output name, entry script last.
func (p *Packager) Args() []string {
	args := make([]string, 0, 10)
	if p.cfg.OneFile == nil || *p.cfg.OneFile {
		args = append(args, "--onefile")
	}
	if p.cfg.Windowed == nil || *p.cfg.Windowed {
		args = append(args, "--noconsole")
	}
	if p.cfg.Icon != "" {
		args = append(args, "--icon", p.cfg.Icon)
	}
	for _, bd := range p.cfg.BundleData {
		args = append(args, "--add-data", bd.Src+dataSep()+bd.Dest)
	}
	args = append(args, "--name", p.cfg.Name, p.cfg.Entry)
	return args
}

// dataSep returns the packager's --add-data source/dest separator, which is
// platform dependent (';' on Windows, ':' elsewhere).
func dataSep() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}

// Run executes the packaging tool and waits for it to exit. A non-zero exit
// status is fatal: the returned error carries the tool's exit code so the
// caller can propagate it to the operator.
func (p *Packager) Run(ctx context.Context) error {
	toolPath, err := exec.LookPath(p.cfg.Tool)
	if err != nil {
		return apperrors.PackagerNotFound(p.cfg.Tool, err)
	}

	args := p.Args()
	slog.Info("Running packaging tool", logfields.Tool(p.cfg.Tool), slog.String("args", strings.Join(args, " ")))

	// #nosec G204 -- toolPath is from exec.LookPath over a configured tool name
	cmd := exec.CommandContext(ctx, toolPath, args...)
	cmd.Dir = p.projectDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		code := exitCode(err)
		slog.Error("Packaging tool failed", logfields.Tool(p.cfg.Tool), logfields.ExitCode(code))
		return apperrors.PackagingFailed(p.cfg.Tool, code, err)
	}
	return nil
}

// exitCode extracts the process exit code from an exec error, defaulting to 1
// when the process never ran.
func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}

// ExitCode returns the packaging tool's exit code recorded on err, or 0 when
// err is not a packaging failure.
func ExitCode(err error) int {
	var re *apperrors.RaceboardError
	if errors.As(err, &re) {
		if c, ok := re.Context["exit_code"].(int); ok {
			return c
		}
	}
	return 0
}

// DetectVersion attempts to detect the version of the packaging tool on PATH.
// Returns the version string (e.g., "6.11.1") or empty string if detection
// fails. This is best-effort and will not error if the tool is unavailable.
func DetectVersion(ctx context.Context, tool string) string {
	toolPath, err := exec.LookPath(tool)
	if err != nil {
		return ""
	}

	// #nosec G204 -- toolPath is from exec.LookPath, not user-controlled
	cmd := exec.CommandContext(ctx, toolPath, "--version")
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
