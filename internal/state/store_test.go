package state

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(runType, outcome string) Run {
	now := time.Now().Truncate(time.Second)
	return Run{
		ID:         uuid.NewString(),
		RunType:    runType,
		Outcome:    outcome,
		Source:     "logs/run.csv",
		Races:      3,
		DurationMS: 1250,
		StartedAt:  now.Add(-2 * time.Second),
		FinishedAt: now,
		Detail:     map[string]string{"report": "out/report.txt"},
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	run := sampleRun("analyze", "success")
	require.NoError(t, s.Record(ctx, run))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, run.ID, got[0].ID)
	assert.Equal(t, "analyze", got[0].RunType)
	assert.Equal(t, "success", got[0].Outcome)
	assert.Equal(t, "logs/run.csv", got[0].Source)
	assert.Equal(t, 3, got[0].Races)
	assert.Equal(t, int64(1250), got[0].DurationMS)
	assert.Equal(t, run.StartedAt.Unix(), got[0].StartedAt.Unix())
	assert.Equal(t, "out/report.txt", got[0].Detail["report"])
}

func TestTimestampsKeepMillisecondPrecision(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	run := sampleRun("analyze", "success")
	run.StartedAt = time.UnixMilli(1714525200123)
	run.FinishedAt = time.UnixMilli(1714525200873)
	require.NoError(t, s.Record(ctx, run))

	got, err := s.LastBySource(ctx, run.Source)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.StartedAt.UnixMilli(), got.StartedAt.UnixMilli())
	assert.Equal(t, run.FinishedAt.UnixMilli(), got.FinishedAt.UnixMilli())
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	base := time.Now().Add(-time.Hour)
	for i := range 5 {
		run := sampleRun("build", "success")
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		run.FinishedAt = run.StartedAt.Add(time.Second)
		require.NoError(t, s.Record(ctx, run))
	}

	got, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].StartedAt.After(got[1].StartedAt))
	assert.True(t, got[1].StartedAt.After(got[2].StartedAt))
}

func TestByType(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.Record(ctx, sampleRun("build", "success")))
	require.NoError(t, s.Record(ctx, sampleRun("upload", "failed")))
	require.NoError(t, s.Record(ctx, sampleRun("upload", "success")))

	got, err := s.ByType(ctx, "upload", 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "upload", r.RunType)
	}
}

func TestLastBySource(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	first := sampleRun("analyze", "failed")
	first.Source = "logs/a.csv"
	first.StartedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.Record(ctx, first))

	second := sampleRun("analyze", "success")
	second.Source = "logs/a.csv"
	require.NoError(t, s.Record(ctx, second))

	got, err := s.LastBySource(ctx, "logs/a.csv")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "success", got.Outcome)

	missing, err := s.LastBySource(ctx, "logs/never-seen.csv")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOutcomeCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	require.NoError(t, s.Record(ctx, sampleRun("build", "success")))
	require.NoError(t, s.Record(ctx, sampleRun("build", "success")))
	require.NoError(t, s.Record(ctx, sampleRun("build", "failed")))
	require.NoError(t, s.Record(ctx, sampleRun("upload", "success")))

	counts, err := s.OutcomeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["build"]["success"])
	assert.Equal(t, 1, counts["build"]["failed"])
	assert.Equal(t, 1, counts["upload"]["success"])
}

func TestDuplicateIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	run := sampleRun("build", "success")
	require.NoError(t, s.Record(ctx, run))
	require.Error(t, s.Record(ctx, run))
}
