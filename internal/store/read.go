package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tryeach/internal/scenario"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is a run row with its result counts.
type RunSummary struct {
	ID          string    `json:"id"`
	Command     string    `json:"command"`
	ProjectRoot string    `json:"projectRoot"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Scenarios   int       `json:"scenarios"`
	Failed      int       `json:"failed"`
}

const summaryQuery = `
	SELECT r.id, r.command, r.project_root, r.started_at, r.finished_at, r.success, r.error,
		COUNT(sr.position),
		COALESCE(SUM(CASE WHEN sr.success = 0 THEN 1 ELSE 0 END), 0)
	FROM runs r
	LEFT JOIN scenario_results sr ON sr.run_id = r.id
`

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := summaryQuery + `
	GROUP BY r.id
	ORDER BY r.started_at DESC, r.id COLLATE BINARY DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run summary, or ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (RunSummary, error) {
	row := s.db.QueryRowContext(ctx, summaryQuery+`
	WHERE r.id = ?
	GROUP BY r.id
	`, id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return summary, err
}

// RunResults returns the results of a run in execution order. Captured
// command output is not stored.
func (s *Store) RunResults(ctx context.Context, id string) ([]scenario.RunResult, error) {
	if _, err := s.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.Query(ctx, `
		SELECT command, success, allowed_to_fail, exit_code, duration_ns, error_kind, error_message, scenario
		FROM scenario_results
		WHERE run_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []scenario.RunResult{}
	for rows.Next() {
		var (
			r            scenario.RunResult
			durationNs   int64
			kind, msg    string
			scenarioJSON string
		)
		if err := rows.Scan(&r.Command, &r.Success, &r.AllowedToFail, &r.ExitCode, &durationNs, &kind, &msg, &scenarioJSON); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(scenarioJSON), &r.Scenario); err != nil {
			return nil, fmt.Errorf("decode scenario: %w", err)
		}
		r.Duration = time.Duration(durationNs)
		if kind != "" {
			r.Error = &scenario.ErrorInfo{Kind: kind, Message: msg}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (RunSummary, error) {
	var (
		summary             RunSummary
		startedAt, finished string
	)
	err := row.Scan(
		&summary.ID,
		&summary.Command,
		&summary.ProjectRoot,
		&startedAt,
		&finished,
		&summary.Success,
		&summary.Error,
		&summary.Scenarios,
		&summary.Failed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunSummary{}, err
		}
		return RunSummary{}, fmt.Errorf("scan run: %w", err)
	}

	if summary.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return RunSummary{}, fmt.Errorf("parse started_at: %w", err)
	}
	if summary.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return RunSummary{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return summary, nil
}
