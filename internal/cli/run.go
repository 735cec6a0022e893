package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/tryeach/internal/config"
	"github.com/roach88/tryeach/internal/deps"
	"github.com/roach88/tryeach/internal/executor"
	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/report"
	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/selector"
	"github.com/roach88/tryeach/internal/store"
)

// RunOptions holds flags shared by the commands that run scenarios.
type RunOptions struct {
	*RootOptions
	SkipCleanup bool
	ConfigPath  string
	FailFast    bool
}

// addRunFlags registers the flags every scenario-running command accepts.
func addRunFlags(fs *pflag.FlagSet, opts *RunOptions) {
	fs.BoolVar(&opts.SkipCleanup, "skip-cleanup", false, "leave the last scenario's dependencies installed")
	fs.StringVar(&opts.ConfigPath, "config-path", "", "path to an alternate configuration file")
	fs.BoolVar(&opts.FailFast, "fail-fast", false, "stop at the first failing scenario")
}

// addConfigPathFlag registers --config-path alone, for commands that resolve
// configuration without running it.
func addConfigPathFlag(fs *pflag.FlagSet, path *string) {
	fs.StringVar(path, "config-path", "", "path to an alternate configuration file")
}

// runRequest describes one scenario-running invocation.
type runRequest struct {
	command  string // CLI command name recorded in history
	selector selector.Request
	override scenario.VersionCompatibility
}

// runScenarios resolves configuration, selects scenarios, runs them and
// reports the results.
func runScenarios(ctx context.Context, cmd *cobra.Command, opts *RunOptions, req runRequest) error {
	logger := opts.logger(cmd.ErrOrStderr())

	p, err := opts.loadProject()
	if err != nil {
		return err
	}

	resolver := config.NewResolver(opts.expander(logger), logger)
	cfg, err := resolver.Resolve(ctx, config.Input{
		Project:              p,
		ConfigPath:           opts.ConfigPath,
		VersionCompatibility: req.override,
	})
	if err != nil {
		return exitErrorFor(err)
	}
	logger.WithField("scenarios", len(cfg.Scenarios)).Debug("configuration resolved")

	scenarios, err := selector.New(opts.generator(p, logger)).Select(ctx, cfg, req.selector)
	if err != nil {
		return exitErrorFor(err)
	}

	// Unset means detect from the lockfile, as reset does.
	packageManager := cfg.PackageManager
	if packageManager == "" {
		packageManager = deps.DetectPackageManager(p.Root)
		logger.WithField("package_manager", packageManager).Debug("detected package manager")
	}

	r := opts.runner(logger)
	stream := cmd.ErrOrStderr()
	applier := opts.applier(p.Root, packageManager, r, stream, logger)
	clock := opts.clock()
	exec := executor.New(applier, r, p.Root,
		executor.WithLogger(logger),
		executor.WithClock(clock),
		executor.WithStream(stream),
	)

	started := clock.Now()
	results, runErr := exec.Run(ctx, scenarios, executor.Options{
		SkipCleanup:       opts.SkipCleanup,
		ContinueOnFailure: !opts.FailFast,
		Command:           cfg.Command,
		NpmOptions:        cfg.NpmOptions,
		PackageManager:    cfg.PackageManager,
	})
	finished := clock.Now()

	summary := report.Summarize(results)
	summary.RunID = recordHistory(ctx, opts, logger, p, store.Run{
		Command:     req.command,
		ProjectRoot: p.Root,
		StartedAt:   started,
		FinishedAt:  finished,
		Success:     runErr == nil,
		Error:       errString(runErr),
		Results:     results,
	})

	if err := writeSummary(cmd, opts.RootOptions, summary); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}
	return exitErrorFor(runErr)
}

// recordHistory stores the run and returns its ID. History is best effort:
// failures are logged and do not change the command outcome.
func recordHistory(ctx context.Context, opts *RunOptions, logger *logrus.Logger, p *project.Project, run store.Run) string {
	st, err := opts.openHistory(p)
	if err != nil {
		logger.WithError(err).Warn("failed to open run history")
		return ""
	}
	if st == nil {
		return ""
	}
	defer st.Close()

	id, err := st.RecordRun(context.WithoutCancel(ctx), run)
	if err != nil {
		logger.WithError(err).Warn("failed to record run history")
		return ""
	}
	logger.WithField("run_id", id).Debug("run recorded")
	return id
}

func writeSummary(cmd *cobra.Command, opts *RootOptions, summary report.Summary) error {
	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return report.WriteJSON(out, summary)
	}
	return report.WriteText(out, summary, report.ColorEnabled(out))
}

// exitErrorFor maps domain errors to exit codes: scenario failures exit 1,
// everything else that stops a run exits 2.
func exitErrorFor(err error) error {
	var (
		unknown *selector.UnknownScenarioError
		exitErr *ExitError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return err
	case executor.IsTaskFailed(err):
		return WrapExitError(ExitFailure, "scenario run failed", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return WrapExitError(ExitFailure, "interrupted", err)
	case config.IsNotFound(err):
		return &ExitError{Code: ExitCommandError, Err: err}
	case config.IsInvalid(err):
		return WrapExitError(ExitCommandError, "configuration error", err)
	case errors.As(err, &unknown):
		return WrapExitError(ExitCommandError, "scenario selection failed", err)
	case selector.IsUsageError(err):
		return &ExitError{Code: ExitCommandError, Err: err}
	case executor.IsDependencyApplyError(err):
		return WrapExitError(ExitCommandError, "dependency error", err)
	default:
		return WrapExitError(ExitCommandError, "command failed", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// usageError builds the exit error for a malformed invocation.
func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf(format, args...)}
}
