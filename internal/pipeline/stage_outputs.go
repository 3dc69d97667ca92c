package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/dhkang-dev/raceboard/internal/config"
	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
	"github.com/dhkang-dev/raceboard/internal/linkcheck"
	"github.com/dhkang-dev/raceboard/internal/logfields"
	"github.com/dhkang-dev/raceboard/internal/staging"
)

// stageOutputs copies auxiliary files into the output directory. Each input
// is independently optional: a missing source produces a skip notice, never
// an error.
func stageOutputs(_ context.Context, bs *BuildState) error {
	distDir := filepath.Join(bs.ProjectDir, bs.Cfg.DistDir)

	// Default configuration, staged under the name the application expects.
	defaultConfig := filepath.Join(bs.ProjectDir, bs.Cfg.DefaultConfig)
	if staging.Exists(defaultConfig) {
		dst := filepath.Join(distDir, config.DefaultConfigStaged)
		if err := staging.CopyFile(defaultConfig, dst); err != nil {
			return apperrors.StagingError("copy default config", err)
		}
		slog.Info("Staged default configuration", logfields.Path(dst))
	} else {
		slog.Info("No default configuration found, skipping", logfields.Path(defaultConfig))
		bs.Report.AddSkipped(bs.Cfg.DefaultConfig)
	}

	// Data directory, copied recursively with overwrite-on-conflict.
	dataDir := filepath.Join(bs.ProjectDir, bs.Cfg.DataDir)
	if staging.Exists(dataDir) {
		dst := filepath.Join(distDir, bs.Cfg.DataDir)
		if err := staging.CopyDir(dataDir, dst); err != nil {
			return apperrors.StagingError("copy data directory", err)
		}
		slog.Info("Staged data directory", logfields.Path(dst))
	} else {
		slog.Info("No data directory found, skipping", logfields.Path(dataDir))
		bs.Report.AddSkipped(bs.Cfg.DataDir)
	}

	// README.
	readme := filepath.Join(bs.ProjectDir, bs.Cfg.Readme)
	if staging.Exists(readme) {
		dst := filepath.Join(distDir, bs.Cfg.Readme)
		if err := staging.CopyFile(readme, dst); err != nil {
			return apperrors.StagingError("copy readme", err)
		}
		slog.Info("Staged README", logfields.Path(dst))

		// Advisory link check against the staged tree.
		broken, err := linkcheck.CheckFile(dst, distDir)
		if err != nil {
			slog.Warn("README link check failed", logfields.Error(err))
		} else if len(broken) > 0 {
			bs.Report.BrokenLinks = broken
			for _, b := range broken {
				slog.Warn("README references a path missing from the staged output", logfields.URL(b))
			}
		}
	} else {
		slog.Info("No README found, skipping", logfields.Path(readme))
		bs.Report.AddSkipped(bs.Cfg.Readme)
	}

	return nil
}
