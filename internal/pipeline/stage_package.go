package pipeline

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/dhkang-dev/raceboard/internal/packager"
)

// stagePackage invokes the external packaging tool. A non-zero exit status is
// fatal and aborts the pipeline before any staging copy runs; the exit code
// travels on the error for the caller to propagate.
func stagePackage(ctx context.Context, bs *BuildState) error {
	p := packager.New(bs.Cfg, bs.ProjectDir)

	if v := packager.DetectVersion(ctx, bs.Cfg.Tool); v != "" {
		bs.Report.ToolVersion = v
	}

	if err := p.Run(ctx); err != nil {
		return err
	}

	bs.Report.ExecutablePath = filepath.Join(bs.ProjectDir, bs.Cfg.DistDir, executableName(bs.Cfg.Name))
	return nil
}

// executableName appends the platform's executable suffix.
func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
