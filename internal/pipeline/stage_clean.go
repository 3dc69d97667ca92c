package pipeline

import (
	"context"
	"log/slog"

	apperrors "github.com/dhkang-dev/raceboard/internal/errors"
	"github.com/dhkang-dev/raceboard/internal/logfields"
	"github.com/dhkang-dev/raceboard/internal/staging"
)

// stageClean removes prior build artifacts. Absence of the targets is not an
// error; the stage only fails when an existing artifact cannot be deleted.
func stageClean(_ context.Context, bs *BuildState) error {
	slog.Info("Cleaning previous build artifacts",
		logfields.Name(bs.Cfg.DistDir),
		logfields.Path(bs.ProjectDir))

	if err := staging.Clean(bs.ProjectDir, bs.Cfg.DistDir, bs.Cfg.WorkDir); err != nil {
		return apperrors.StagingError("clean", err)
	}
	return nil
}
