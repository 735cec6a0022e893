package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/store"
)

func sampleResults() []scenario.RunResult {
	return []scenario.RunResult{
		{
			Scenario: scenario.Scenario{
				Name: "ember-lts-4.12",
				Npm:  &scenario.NpmOverrides{DevDependencies: map[string]string{"ember-source": "~4.12.0"}},
			},
			Command:  "npm test",
			Success:  true,
			Duration: 1500 * time.Millisecond,
		},
		{
			Scenario:      scenario.Scenario{Name: "ember-canary", AllowedToFail: true},
			Command:       "npm test",
			AllowedToFail: true,
			ExitCode:      1,
			Duration:      2 * time.Second,
			Error:         &scenario.ErrorInfo{Kind: scenario.ErrorKindExecute, Message: "exited with code 1"},
		},
		{
			Scenario: scenario.Scenario{Name: "embroider-safe", Env: map[string]string{"EMBROIDER_TEST_SETUP_OPTIONS": "safe"}},
			Command:  "ember test",
			ExitCode: 2,
			Duration: 3 * time.Second,
			Error:    &scenario.ErrorInfo{Kind: scenario.ErrorKindExecute, Message: "exited with code 2"},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())
	assert.False(t, s.Success)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.AllowedFailures)

	empty := Summarize(nil)
	assert.True(t, empty.Success)
	assert.NotNil(t, empty.Results)
}

func TestWriteJSONGolden(t *testing.T) {
	summary := Summarize(sampleResults())
	summary.RunID = "run-0001"

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, summary))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "summary", buf.Bytes())
}

func TestWriteJSONStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Summarize(sampleResults()[:1])))
	assert.Contains(t, buf.String(), `"status": "ok"`)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Summarize(sampleResults()), false))
	out := buf.String()

	for _, want := range []string{
		"SCENARIO", "RESULT", "EXIT", "DURATION", "COMMAND",
		"ember-lts-4.12", "pass", "1.5s",
		"ember-canary", "fail (allowed)",
		"embroider-safe", "ember test",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "no escape codes without colour")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "3 scenario(s): 1 passed, 1 failed, 1 allowed to fail", lines[len(lines)-1])
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		result scenario.RunResult
		want   string
	}{
		{"pass", scenario.RunResult{Success: true}, "pass"},
		{"fail", scenario.RunResult{ExitCode: 1}, "fail"},
		{"allowed", scenario.RunResult{AllowedToFail: true}, "fail (allowed)"},
		{"setup", scenario.RunResult{Error: &scenario.ErrorInfo{Kind: scenario.ErrorKindSetup}}, "setup failed"},
		{"cancelled", scenario.RunResult{Error: &scenario.ErrorInfo{Kind: scenario.ErrorKindCancelled}}, "cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.result))
		})
	}
}

func TestColorEnabled(t *testing.T) {
	assert.False(t, ColorEnabled(&bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(&bytes.Buffer{}))
}

func TestWriteRuns(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []store.RunSummary{
		{ID: "run-0002", Command: "each", StartedAt: started, FinishedAt: started.Add(90 * time.Second), Success: false, Scenarios: 3, Failed: 1},
		{ID: "run-0001", Command: "embroider", StartedAt: started, FinishedAt: started.Add(time.Minute), Success: true, Scenarios: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRuns(&buf, runs, false))
	out := buf.String()

	for _, want := range []string{"RUN", "run-0002", "each", "fail", "2/3", "1m30s", "run-0001", "embroider", "1/1", "1m0s"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRuns(&buf, nil, false))
	assert.Equal(t, "No runs recorded.\n", buf.String())
}
