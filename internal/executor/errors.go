package executor

import (
	"errors"
	"fmt"
	"strings"
)

// DependencyApplyError reports that overrides could not be applied or the
// original dependencies could not be restored. It aborts the run.
type DependencyApplyError struct {
	Scenario string
	Op       string // "apply" or "restore"
	Err      error
}

func (e *DependencyApplyError) Error() string {
	return fmt.Sprintf("failed to %s dependencies for scenario %q: %v", e.Op, e.Scenario, e.Err)
}

func (e *DependencyApplyError) Unwrap() error {
	return e.Err
}

// ScenarioFailure describes a scenario command that exited non-zero.
type ScenarioFailure struct {
	Scenario string
	Command  string
	ExitCode int
}

func (e *ScenarioFailure) Error() string {
	return fmt.Sprintf("scenario %q failed: %q exited with code %d", e.Scenario, e.Command, e.ExitCode)
}

// TaskFailedError is returned when at least one scenario that is not
// allowed to fail did not succeed.
type TaskFailedError struct {
	Failed []string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("%d scenario(s) failed: %s", len(e.Failed), strings.Join(e.Failed, ", "))
}

// IsDependencyApplyError returns true if err is a DependencyApplyError.
func IsDependencyApplyError(err error) bool {
	var de *DependencyApplyError
	return errors.As(err, &de)
}

// IsTaskFailed returns true if err is a TaskFailedError.
func IsTaskFailed(err error) bool {
	var te *TaskFailedError
	return errors.As(err, &te)
}
