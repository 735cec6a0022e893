package testutil

import (
	"context"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/tryeach/internal/runner"
	"github.com/roach88/tryeach/internal/scenario"
)

// ScenarioEnv is the environment variable the executor sets to the name of
// the running scenario. FakeRunner keys its canned results on it.
const ScenarioEnv = "TRYEACH_CURRENT_SCENARIO"

// FakeApplier records Apply and Restore calls in order.
type FakeApplier struct {
	mu sync.Mutex

	// Events is the ordered call log: "apply" or "restore".
	Events []string

	// Applied holds the overrides passed to each Apply call.
	Applied []*scenario.NpmOverrides

	// NpmOptions holds the options passed to each Apply call.
	NpmOptions [][]string

	// ApplyErrs maps a 1-based Apply call number to the error it returns.
	ApplyErrs map[int]error

	// RestoreErr is returned from every Restore call.
	RestoreErr error

	applies int
}

// Apply records the call.
func (f *FakeApplier) Apply(_ context.Context, overrides *scenario.NpmOverrides, npmOptions []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applies++
	f.Events = append(f.Events, "apply")
	f.Applied = append(f.Applied, overrides)
	f.NpmOptions = append(f.NpmOptions, npmOptions)
	return f.ApplyErrs[f.applies]
}

// Restore records the call.
func (f *FakeApplier) Restore(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, "restore")
	return f.RestoreErr
}

// Count returns how many times event occurred.
func (f *FakeApplier) Count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.Events {
		if e == event {
			n++
		}
	}
	return n
}

// FakeRunner returns canned outcomes instead of spawning processes.
//
// Results are keyed by the running scenario's name (from ScenarioEnv) or,
// when that is unset, by the command line.
type FakeRunner struct {
	mu sync.Mutex

	Commands  []runner.Command
	ExitCodes map[string]int
	Outputs   map[string]string
	Errs      map[string]error

	// OnRun, when set, replaces the canned lookup.
	OnRun func(ctx context.Context, cmd runner.Command) (runner.Outcome, error)
}

// Run records cmd and returns its canned outcome.
func (f *FakeRunner) Run(ctx context.Context, cmd runner.Command) (runner.Outcome, error) {
	f.mu.Lock()
	f.Commands = append(f.Commands, cmd)
	onRun := f.OnRun
	f.mu.Unlock()

	if onRun != nil {
		return onRun(ctx, cmd)
	}

	key := cmd.Env[ScenarioEnv]
	if key == "" {
		key = cmd.Line
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errs[key]; err != nil {
		return runner.Outcome{ExitCode: -1}, err
	}
	out := runner.Outcome{ExitCode: f.ExitCodes[key], Output: f.Outputs[key]}
	if cmd.Stream != nil && out.Output != "" {
		_, _ = cmd.Stream.Write([]byte(out.Output))
	}
	return out, nil
}

// Lines returns the command lines run so far.
func (f *FakeRunner) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Commands))
	for i, c := range f.Commands {
		lines[i] = c.Line
	}
	return lines
}

// FakeGenerator returns preset scenarios from a map.
type FakeGenerator struct {
	mu        sync.Mutex
	Scenarios map[string]scenario.Scenario
	Err       error
	Calls     []string
}

// Generate records the variant and returns its scenario.
func (g *FakeGenerator) Generate(_ context.Context, variant string) (scenario.Scenario, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls = append(g.Calls, variant)
	if g.Err != nil {
		return scenario.Scenario{}, g.Err
	}
	return g.Scenarios[variant], nil
}

// StaticLister serves package versions from a map.
type StaticLister struct {
	Published map[string][]string
	Err       error
	Calls     []string
}

// Versions returns the configured versions of pkg.
func (l *StaticLister) Versions(_ context.Context, pkg string) ([]*semver.Version, error) {
	l.Calls = append(l.Calls, pkg)
	if l.Err != nil {
		return nil, l.Err
	}
	var out []*semver.Version
	for _, raw := range l.Published[pkg] {
		out = append(out, semver.MustParse(raw))
	}
	return out, nil
}
