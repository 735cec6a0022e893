package executor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roach88/tryeach/internal/runner"
	"github.com/roach88/tryeach/internal/scenario"
)

// ScenarioEnv is set to the running scenario's name in the command
// environment.
const ScenarioEnv = "TRYEACH_CURRENT_SCENARIO"

// Applier applies and restores dependency overrides.
type Applier interface {
	Apply(ctx context.Context, overrides *scenario.NpmOverrides, npmOptions []string) error
	Restore(ctx context.Context) error
}

// CommandRunner runs a scenario command.
type CommandRunner interface {
	Run(ctx context.Context, cmd runner.Command) (runner.Outcome, error)
}

// Clock supplies timestamps for scenario durations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options control a single Run.
type Options struct {
	// SkipCleanup leaves the last applied dependencies in place.
	SkipCleanup bool

	// ContinueOnFailure keeps running after a blocking scenario failure.
	ContinueOnFailure bool

	// Command is the configuration-level default command.
	Command string

	// NpmOptions are passed to every install.
	NpmOptions []string

	// PackageManager selects the default test command when neither the
	// scenario nor Command names one.
	PackageManager string
}

// Executor drives scenarios sequentially.
type Executor struct {
	applier Applier
	runner  CommandRunner
	dir     string
	clock   Clock
	logger  *logrus.Logger
	stream  io.Writer
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock replaces the wall clock used for durations.
func WithClock(c Clock) Option {
	return func(e *Executor) {
		e.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithStream streams command output to w while it runs.
func WithStream(w io.Writer) Option {
	return func(e *Executor) {
		e.stream = w
	}
}

// New creates an Executor running commands in dir.
func New(applier Applier, r CommandRunner, dir string, opts ...Option) *Executor {
	e := &Executor{
		applier: applier,
		runner:  r,
		dir:     dir,
		clock:   systemClock{},
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes scenarios in order and returns one result per scenario that
// was started.
//
// The error is a *DependencyApplyError when Setup or Restore failed, ctx.Err()
// when the run was cancelled, a *TaskFailedError when a scenario that is not
// allowed to fail did not succeed, and nil otherwise.
func (e *Executor) Run(ctx context.Context, scenarios []scenario.Scenario, opts Options) ([]scenario.RunResult, error) {
	results := make([]scenario.RunResult, 0, len(scenarios))

	for i, s := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		log := e.logger.WithFields(logrus.Fields{
			"scenario": s.Name,
			"index":    i + 1,
			"total":    len(scenarios),
		})
		log.Info("running scenario")

		result, err := e.runOne(ctx, s, opts)
		results = append(results, result)
		if err != nil {
			return results, err
		}

		log.WithFields(logrus.Fields{
			"success":   result.Success,
			"exit_code": result.ExitCode,
			"duration":  result.Duration,
		}).Info("scenario finished")

		if result.Blocking() && !opts.ContinueOnFailure {
			log.Warn("stopping after failed scenario")
			break
		}
	}

	if failed := blockingNames(results); len(failed) > 0 {
		return results, &TaskFailedError{Failed: failed}
	}
	return results, nil
}

// runOne runs one scenario. Restore is deferred so it happens on every path
// out of Setup and Execute.
func (e *Executor) runOne(ctx context.Context, s scenario.Scenario, opts Options) (result scenario.RunResult, err error) {
	start := e.clock.Now()
	command := commandFor(s, opts)
	result = scenario.RunResult{
		Scenario:      s,
		Command:       command,
		AllowedToFail: s.AllowedToFail,
	}

	defer func() {
		if restoreErr := e.restore(ctx, s, opts); restoreErr != nil {
			if result.Error == nil {
				result.Success = false
				result.Error = &scenario.ErrorInfo{Kind: scenario.ErrorKindRestore, Message: restoreErr.Error()}
			}
			if err == nil {
				err = restoreErr
			} else {
				e.logger.WithError(restoreErr).WithField("scenario", s.Name).Error("restore failed")
			}
		}
		result.Duration = e.clock.Now().Sub(start)
	}()

	if applyErr := e.applier.Apply(ctx, s.Npm, opts.NpmOptions); applyErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Error = &scenario.ErrorInfo{Kind: scenario.ErrorKindCancelled, Message: ctxErr.Error()}
			return result, ctxErr
		}
		result.Error = &scenario.ErrorInfo{Kind: scenario.ErrorKindSetup, Message: applyErr.Error()}
		return result, &DependencyApplyError{Scenario: s.Name, Op: "apply", Err: applyErr}
	}

	env := make(map[string]string, len(s.Env)+1)
	for k, v := range s.Env {
		env[k] = v
	}
	env[ScenarioEnv] = s.Name

	outcome, runErr := e.runner.Run(ctx, runner.Command{
		Line:   command,
		Dir:    e.dir,
		Env:    env,
		Stream: e.stream,
	})
	result.ExitCode = outcome.ExitCode
	result.Output = outcome.Output

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.Error = &scenario.ErrorInfo{Kind: scenario.ErrorKindCancelled, Message: ctxErr.Error()}
		return result, ctxErr
	}
	if runErr != nil {
		result.Error = &scenario.ErrorInfo{Kind: scenario.ErrorKindExecute, Message: runErr.Error()}
		return result, nil
	}
	if !outcome.Success() {
		failure := &ScenarioFailure{Scenario: s.Name, Command: command, ExitCode: outcome.ExitCode}
		result.Error = &scenario.ErrorInfo{Kind: scenario.ErrorKindExecute, Message: failure.Error()}
		return result, nil
	}

	result.Success = true
	return result, nil
}

func (e *Executor) restore(ctx context.Context, s scenario.Scenario, opts Options) error {
	if opts.SkipCleanup {
		e.logger.WithField("scenario", s.Name).Debug("skipping cleanup")
		return nil
	}
	// Restore must run even after cancellation.
	if err := e.applier.Restore(context.WithoutCancel(ctx)); err != nil {
		return &DependencyApplyError{Scenario: s.Name, Op: "restore", Err: err}
	}
	return nil
}

func commandFor(s scenario.Scenario, opts Options) string {
	if s.Command != "" {
		return s.Command
	}
	if opts.Command != "" {
		return opts.Command
	}
	switch opts.PackageManager {
	case scenario.PackageManagerYarn, scenario.PackageManagerPNPM:
		return fmt.Sprintf("%s test", opts.PackageManager)
	}
	return scenario.DefaultCommand
}

func blockingNames(results []scenario.RunResult) []string {
	var names []string
	for _, r := range results {
		if r.Blocking() {
			names = append(names, r.Scenario.Name)
		}
	}
	return names
}
