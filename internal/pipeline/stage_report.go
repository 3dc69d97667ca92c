package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dhkang-dev/raceboard/internal/logfields"
)

// stageReport stamps workspace metadata and prints the completion banner.
func stageReport(_ context.Context, bs *BuildState) error {
	if commit := headCommit(bs.ProjectDir); commit != "" {
		bs.Report.GitCommit = commit
	}

	slog.Info("Build complete",
		logfields.Path(bs.Report.ExecutablePath),
		slog.String("commit", bs.Report.GitCommit),
		slog.Int("skipped_inputs", len(bs.Report.Skipped)))

	// Friendly banner on stdout for interactive runs.
	fmt.Printf("Build complete: %s\n", bs.Report.ExecutablePath)
	return nil
}
