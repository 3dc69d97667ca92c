package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhkang-dev/raceboard/internal/config"
	"github.com/dhkang-dev/raceboard/internal/logfields"
	"github.com/dhkang-dev/raceboard/internal/metrics"
)

// Runner executes the release pipeline for one project directory.
type Runner struct {
	projectDir string
	cfg        config.BuildConfig
	recorder   metrics.Recorder
}

// NewRunner constructs a Runner. recorder may be nil.
func NewRunner(projectDir string, cfg config.BuildConfig, recorder metrics.Recorder) *Runner {
	return &Runner{projectDir: projectDir, cfg: cfg, recorder: recorder}
}

// Stages returns the canonical stage sequence.
func Stages() []StageDef {
	return []StageDef{
		{Name: StageClean, Fn: stageClean},
		{Name: StagePackage, Fn: stagePackage},
		{Name: StageStageOutputs, Fn: stageOutputs},
		{Name: StageReport, Fn: stageReport},
	}
}

// Run executes all stages in order and returns the report. On error the
// report is still returned with whatever was recorded before the abort.
func (r *Runner) Run(ctx context.Context) (*BuildReport, error) {
	bs := newBuildState(r.projectDir, r.cfg, r.recorder)
	err := runStages(ctx, bs, Stages())
	if err != nil {
		if se, ok := err.(*StageError); ok && se.Kind == StageErrorCanceled {
			bs.Report.finish("canceled")
		} else {
			bs.Report.finish("failed")
		}
	} else {
		bs.Report.finish("success")
	}
	bs.recorder.ObserveBuildDuration(bs.Report.Duration())
	bs.recorder.IncRunOutcome("build", bs.Report.Outcome)
	return bs.Report, err
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. The packaging stage failing must leave the staging
// stages unexecuted (fail-fast, no partial-success continuation).
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(string(st.Name), ctx.Err())
			bs.Report.StageResults[st.Name] = StageResultCanceled
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[string(st.Name)] = dur
		bs.recorder.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			bs.Report.StageResults[st.Name] = StageResultFatal
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultFatal)
			slog.Error("Stage failed", logfields.Stage(string(st.Name)), logfields.Error(err))
			return newFatalStageError(string(st.Name), err)
		}

		bs.Report.StageResults[st.Name] = StageResultSuccess
		bs.recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
		slog.Debug("Stage completed", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(dur.Milliseconds())))
	}
	return nil
}
