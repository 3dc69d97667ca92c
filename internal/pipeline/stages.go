// Package pipeline sequences the release build: clean previous artifacts,
// run the packaging tool, stage distributables, and report the result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dhkang-dev/raceboard/internal/config"
	"github.com/dhkang-dev/raceboard/internal/metrics"
)

// Stage is a discrete unit of work in the release build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// BuildState carries mutable state and metrics across stages.
type BuildState struct {
	ProjectDir string
	Cfg        config.BuildConfig
	Report     *BuildReport
	recorder   metrics.Recorder
	start      time.Time
}

// newBuildState constructs a BuildState.
func newBuildState(projectDir string, cfg config.BuildConfig, recorder metrics.Recorder) *BuildState {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &BuildState{
		ProjectDir: projectDir,
		Cfg:        cfg,
		Report:     newBuildReport(),
		recorder:   recorder,
		start:      time.Now(),
	}
}
