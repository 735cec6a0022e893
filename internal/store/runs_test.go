package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/testutil"
)

func sampleResults() []scenario.RunResult {
	return []scenario.RunResult{
		{
			Scenario: scenario.Scenario{
				Name:  "ember-lts-4.12",
				Npm:   &scenario.NpmOverrides{DevDependencies: map[string]string{"ember-source": "~4.12.0"}},
				Extra: map[string]any{"owner": "platform"},
			},
			Command:  "npm test",
			Success:  true,
			Duration: 2 * time.Second,
		},
		{
			Scenario:      scenario.Scenario{Name: "ember-canary", AllowedToFail: true},
			Command:       "npm test",
			AllowedToFail: true,
			ExitCode:      1,
			Duration:      3 * time.Second,
			Error:         &scenario.ErrorInfo{Kind: scenario.ErrorKindExecute, Message: "exited with code 1"},
		},
	}
}

func TestRecordRunRoundTrip(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(&testutil.SequentialIDs{}))
	ctx := context.Background()
	clock := testutil.NewStepClock(time.Minute)
	started := clock.Now()
	finished := clock.Now()

	id, err := s.RecordRun(ctx, Run{
		Command:     "each",
		ProjectRoot: "/work/addon",
		StartedAt:   started,
		FinishedAt:  finished,
		Success:     true,
		Results:     sampleResults(),
	})
	require.NoError(t, err)
	assert.Equal(t, "run-0001", id)

	summary, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "each", summary.Command)
	assert.Equal(t, "/work/addon", summary.ProjectRoot)
	assert.True(t, summary.StartedAt.Equal(started))
	assert.True(t, summary.FinishedAt.Equal(finished))
	assert.True(t, summary.Success)
	assert.Equal(t, 2, summary.Scenarios)
	assert.Equal(t, 1, summary.Failed)

	results, err := s.RunResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sampleResults(), results)
}

func TestRecordRunDefaults(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := createTestStore(t, WithClock(func() time.Time { return fixed }))

	id, err := s.RecordRun(context.Background(), Run{Command: "one"})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	summary, err := s.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, summary.StartedAt.Equal(fixed))
	assert.True(t, summary.FinishedAt.Equal(fixed))
	assert.Equal(t, 0, summary.Scenarios)
	assert.Equal(t, 0, summary.Failed)
}

func TestRecordRunDuplicateID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RecordRun(ctx, Run{ID: "fixed", Command: "each", Results: sampleResults()})
	require.NoError(t, err)
	_, err = s.RecordRun(ctx, Run{ID: "fixed", Command: "each"})
	require.Error(t, err)

	results, err := s.RunResults(ctx, "fixed")
	require.NoError(t, err)
	assert.Len(t, results, 2, "failed insert must not touch the first run")
}

func TestListRunsNewestFirst(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(&testutil.SequentialIDs{}))
	ctx := context.Background()
	clock := testutil.NewStepClock(time.Minute)

	for _, cmd := range []string{"each", "one", "embroider"} {
		ts := clock.Now()
		_, err := s.RecordRun(ctx, Run{Command: cmd, StartedAt: ts, FinishedAt: ts})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-0003", runs[0].ID)
	assert.Equal(t, "embroider", runs[0].Command)
	assert.Equal(t, "run-0001", runs[2].ID)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, runs[:2], limited)
}

func TestListRunsEmpty(t *testing.T) {
	runs, err := createTestStore(t).ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestRunNotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRun(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.RunResults(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}
