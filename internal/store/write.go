package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/tryeach/internal/scenario"
)

const timeLayout = time.RFC3339Nano

// Run is one recorded executor run.
type Run struct {
	ID          string
	Command     string // CLI command that started the run, e.g. "each"
	ProjectRoot string
	StartedAt   time.Time
	FinishedAt  time.Time
	Success     bool
	Error       string // Run-level error, empty on success
	Results     []scenario.RunResult
}

// RecordRun stores run and its results in one transaction and returns the
// run ID. A missing ID is generated and missing timestamps are set to now.
func (s *Store) RecordRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = s.ids.NewID()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = s.now()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = run.FinishedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, command, project_root, started_at, finished_at, success, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Command,
		run.ProjectRoot,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Success,
		run.Error,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	for i, r := range run.Results {
		scenarioJSON, err := json.Marshal(r.Scenario)
		if err != nil {
			return "", fmt.Errorf("record run: marshal scenario %q: %w", r.Scenario.Name, err)
		}

		var kind, message string
		if r.Error != nil {
			kind, message = r.Error.Kind, r.Error.Message
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO scenario_results
			(run_id, position, name, command, success, allowed_to_fail, exit_code, duration_ns, error_kind, error_message, scenario)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			i,
			r.Scenario.Name,
			r.Command,
			r.Success,
			r.AllowedToFail,
			r.ExitCode,
			int64(r.Duration),
			kind,
			message,
			string(scenarioJSON),
		)
		if err != nil {
			return "", fmt.Errorf("record run: result %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: commit: %w", err)
	}
	return run.ID, nil
}
