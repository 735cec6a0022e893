package cli

import (
	"bytes"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/testutil"
)

// cliHarness runs commands against a temporary project with fake
// collaborators.
type cliHarness struct {
	t       *testing.T
	root    string
	applier *testutil.FakeApplier
	runner  *testutil.FakeRunner
	gen     *testutil.FakeGenerator
	lister  *testutil.StaticLister
	opts    *RootOptions
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	root := t.TempDir()
	testutil.WriteFile(t, root, "package.json", testutil.FixtureManifest)

	logger, _ := logtest.NewNullLogger()
	h := &cliHarness{
		t:       t,
		root:    root,
		applier: &testutil.FakeApplier{},
		runner:  &testutil.FakeRunner{},
		gen: &testutil.FakeGenerator{Scenarios: map[string]scenario.Scenario{
			"safe":      embroiderSafeGenerated,
			"optimized": embroiderOptimizedGenerated,
		}},
		lister: &testutil.StaticLister{},
	}
	h.opts = &RootOptions{Deps: Dependencies{
		Runner:    h.runner,
		Applier:   h.applier,
		Generator: h.gen,
		Lister:    h.lister,
		Clock:     testutil.NewStepClock(time.Second),
		IDs:       &testutil.SequentialIDs{},
		Logger:    logger,
	}}
	return h
}

// config writes config/try-each.yaml.
func (h *cliHarness) config(yaml string) {
	h.t.Helper()
	testutil.WriteFile(h.t, h.root, "config/try-each.yaml", yaml)
}

// run executes the root command with history disabled unless args enable it.
func (h *cliHarness) run(args ...string) error {
	h.out = &bytes.Buffer{}
	h.errOut = &bytes.Buffer{}
	cmd := NewRootCommandWithOptions(h.opts)
	cmd.SetOut(h.out)
	cmd.SetErr(h.errOut)
	cmd.SetArgs(append([]string{"--project-root", h.root, "--history-db="}, args...))
	return cmd.Execute()
}

// scenarioNames returns the scenario names the fake runner executed.
func (h *cliHarness) scenarioNames() []string {
	var names []string
	for _, c := range h.runner.Commands {
		if name := c.Env[testutil.ScenarioEnv]; name != "" {
			names = append(names, name)
		}
	}
	return names
}

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	testutil.WriteFile(t, root, rel, content)
}
