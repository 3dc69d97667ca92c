package pipeline

import (
	"time"
)

// StageResult enumerates per-stage classification outcomes.
// Mirrors metrics.ResultLabel values to simplify emission.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// BuildReport accumulates what happened across a single pipeline run.
type BuildReport struct {
	StartedAt      time.Time                 `json:"started_at"`
	FinishedAt     time.Time                 `json:"finished_at"`
	StageDurations map[string]time.Duration  `json:"stage_durations"`
	StageResults   map[StageName]StageResult `json:"stage_results"`
	Skipped        []string                  `json:"skipped,omitempty"`      // optional staging inputs that were absent
	BrokenLinks    []string                  `json:"broken_links,omitempty"` // advisory README findings
	ExecutablePath string                    `json:"executable_path,omitempty"`
	ToolVersion    string                    `json:"tool_version,omitempty"`
	GitCommit      string                    `json:"git_commit,omitempty"`
	Outcome        string                    `json:"outcome"` // success|failed|canceled
}

func newBuildReport() *BuildReport {
	return &BuildReport{
		StartedAt:      time.Now(),
		StageDurations: make(map[string]time.Duration),
		StageResults:   make(map[StageName]StageResult),
		Outcome:        "failed",
	}
}

// AddSkipped records an optional staging input that was not present.
func (r *BuildReport) AddSkipped(name string) {
	r.Skipped = append(r.Skipped, name)
}

func (r *BuildReport) finish(outcome string) {
	r.FinishedAt = time.Now()
	r.Outcome = outcome
}

// Duration returns the wall-clock duration of the whole run.
func (r *BuildReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
