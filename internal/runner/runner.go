// Package runner executes scenario commands as shell subprocesses.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Command describes one subprocess invocation.
type Command struct {
	Line string            // Shell command line, run with "<shell> -c"
	Dir  string            // Working directory
	Env  map[string]string // Added to the inherited environment

	// Stream, when set, receives output while the command runs.
	Stream io.Writer
}

// Outcome is the result of a command that ran to completion.
type Outcome struct {
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output,omitempty"`
}

// Success reports whether the command exited with status 0.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// ShellRunner runs commands through a POSIX shell.
type ShellRunner struct {
	Shell  string
	Logger *logrus.Logger
}

// NewShellRunner creates a runner using /bin/sh.
func NewShellRunner(logger *logrus.Logger) *ShellRunner {
	if logger == nil {
		logger = logrus.New()
	}
	return &ShellRunner{Shell: "/bin/sh", Logger: logger}
}

// Run executes cmd and waits for it. A non-zero exit status is reported in
// the Outcome, not as an error. Errors are returned when the command could
// not be started or ctx was cancelled; the process is killed on cancel.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) (Outcome, error) {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	c := exec.CommandContext(ctx, shell, "-c", cmd.Line)
	c.Dir = cmd.Dir
	c.Env = mergeEnv(os.Environ(), cmd.Env)
	c.WaitDelay = 5 * time.Second

	var buf bytes.Buffer
	var w io.Writer = &buf
	if cmd.Stream != nil {
		w = io.MultiWriter(&buf, cmd.Stream)
	}
	c.Stdout = w
	c.Stderr = w

	r.Logger.WithFields(logrus.Fields{"command": cmd.Line, "dir": cmd.Dir}).Debug("running command")

	err := c.Run()
	outcome := Outcome{Output: buf.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		outcome.ExitCode = -1
		return outcome, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		r.Logger.WithFields(logrus.Fields{"command": cmd.Line, "exit_code": outcome.ExitCode}).Debug("command exited non-zero")
		return outcome, nil
	}
	if err != nil {
		return outcome, fmt.Errorf("failed to run %q: %w", cmd.Line, err)
	}
	return outcome, nil
}

// mergeEnv appends extra to base in sorted key order. Later entries win when
// the process environment is built, so extra overrides inherited values.
func mergeEnv(base []string, extra map[string]string) []string {
	env := append([]string(nil), base...)
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
