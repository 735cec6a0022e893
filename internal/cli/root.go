package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/tryeach/internal/compat"
	"github.com/roach88/tryeach/internal/deps"
	"github.com/roach88/tryeach/internal/executor"
	"github.com/roach88/tryeach/internal/preset"
	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/runner"
	"github.com/roach88/tryeach/internal/selector"
	"github.com/roach88/tryeach/internal/store"
)

// Environment variables read by the CLI.
const (
	EnvDebug     = "TRYEACH_DEBUG"
	EnvHistoryDB = "TRYEACH_HISTORY_DB"
	EnvRegistry  = "TRYEACH_REGISTRY"
)

// DefaultHistoryDB is the history database path, relative to the project root.
const DefaultHistoryDB = ".tryeach/history.db"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	ProjectRoot string
	HistoryDB   string // empty disables history

	// Deps overrides collaborators (for testing). Nil fields use the
	// production implementations.
	Deps Dependencies
}

// Dependencies are the collaborators commands are built from.
type Dependencies struct {
	Runner    executor.CommandRunner
	Applier   executor.Applier
	Generator selector.PresetGenerator
	Lister    compat.VersionLister
	Clock     executor.Clock
	IDs       store.IDGenerator
	Logger    *logrus.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tryeach CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts, so tests
// can inject collaborators.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tryeach",
		Short: "tryeach - run a project's tests against dependency scenarios",
		Long: `tryeach runs a JavaScript project's test command once per configured
scenario. Each scenario overrides dependency versions in package.json,
installs, runs the tests and restores the original dependencies.

Scenarios come from config/try-each.{yaml,yml,json,toml,cue} (or an
executable config/try-each script) and from the versionCompatibility
declaration under "ember-addon" in package.json.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ProjectRoot, "project-root", ".", "project directory containing package.json")
	cmd.PersistentFlags().StringVar(&opts.HistoryDB, "history-db", envOr(EnvHistoryDB, DefaultHistoryDB), "run history database, relative to the project root (empty disables)")

	cmd.AddCommand(NewEmbroiderCommand(opts))
	cmd.AddCommand(NewEachCommand(opts))
	cmd.AddCommand(NewOneCommand(opts))
	cmd.AddCommand(NewEmberCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// logger returns the injected logger or builds one writing to w.
func (o *RootOptions) logger(w io.Writer) *logrus.Logger {
	if o.Deps.Logger != nil {
		return o.Deps.Logger
	}
	l := logrus.New()
	l.SetOutput(w)
	if o.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	l.SetLevel(logrus.InfoLevel)
	if debug, _ := strconv.ParseBool(os.Getenv(EnvDebug)); debug || o.Verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func (o *RootOptions) loadProject() (*project.Project, error) {
	p, err := project.Load(o.ProjectRoot)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load project", err)
	}
	return p, nil
}

func (o *RootOptions) runner(logger *logrus.Logger) executor.CommandRunner {
	if o.Deps.Runner != nil {
		return o.Deps.Runner
	}
	return runner.NewShellRunner(logger)
}

func (o *RootOptions) applier(root, packageManager string, r executor.CommandRunner, stream io.Writer, logger *logrus.Logger) executor.Applier {
	if o.Deps.Applier != nil {
		return o.Deps.Applier
	}
	a := deps.NewNpmApplier(root, packageManager, r, logger)
	a.Stream = stream
	return a
}

func (o *RootOptions) generator(p *project.Project, logger *logrus.Logger) selector.PresetGenerator {
	if o.Deps.Generator != nil {
		return o.Deps.Generator
	}
	return preset.NewEmbroider(p, logger)
}

func (o *RootOptions) expander(logger *logrus.Logger) *compat.Expander {
	lister := o.Deps.Lister
	if lister == nil {
		lister = compat.NewRegistryLister(os.Getenv(EnvRegistry))
	}
	return compat.New(compat.WithLister(lister), compat.WithLogger(logger))
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (o *RootOptions) clock() executor.Clock {
	if o.Deps.Clock != nil {
		return o.Deps.Clock
	}
	return wallClock{}
}

// openHistory opens the history store, or returns nil when history is
// disabled.
func (o *RootOptions) openHistory(p *project.Project) (*store.Store, error) {
	if o.HistoryDB == "" {
		return nil, nil
	}
	path := p.Path(o.HistoryDB)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	var opts []store.Option
	if o.Deps.IDs != nil {
		opts = append(opts, store.WithIDGenerator(o.Deps.IDs))
	}
	if o.Deps.Clock != nil {
		opts = append(opts, store.WithClock(o.Deps.Clock.Now))
	}
	return store.Open(path, opts...)
}
