package compat

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/testutil"
)

func newTestExpander(opts ...Option) *Expander {
	logger, _ := test.NewNullLogger()
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func ember(version string) scenario.Scenario {
	return scenario.Scenario{
		Name: "ember-" + version,
		Npm:  &scenario.NpmOverrides{DevDependencies: map[string]string{"ember-source": version}},
	}
}

func names(scenarios []scenario.Scenario) []string {
	out := make([]string, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.Name
	}
	return out
}

func TestExpandWithoutConfigUsesDeclaration(t *testing.T) {
	e := newTestExpander()

	cfg, err := e.Expand(context.Background(), nil, scenario.VersionCompatibility{"ember": "=2.18.0"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []scenario.Scenario{ember("2.18.0")}, cfg.Scenarios)
}

func TestExpandIgnoredWhenConfigHasScenarios(t *testing.T) {
	e := newTestExpander()
	in := &scenario.Configuration{Scenarios: []scenario.Scenario{{Name: "foo"}}}

	cfg, err := e.Expand(context.Background(), in, scenario.VersionCompatibility{"ember": "=2.18.0"}, nil)
	require.NoError(t, err)
	assert.Equal(t, in, cfg)
	assert.NotSame(t, in, cfg)
}

func TestExpandMergedWhenConfigHasNoScenarios(t *testing.T) {
	e := newTestExpander()
	in := &scenario.Configuration{NpmOptions: []string{"--some-thing=true"}}

	cfg, err := e.Expand(context.Background(), in, scenario.VersionCompatibility{"ember": "=2.18.0"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"--some-thing=true"}, cfg.NpmOptions)
	assert.Len(t, cfg.Scenarios, 1)
}

func TestExpandMergedWhenUseVersionCompatibility(t *testing.T) {
	e := newTestExpander()
	in := &scenario.Configuration{
		UseVersionCompatibility: true,
		NpmOptions:              []string{"--whatever=true"},
		Extra:                   map[string]any{"custom": "kept"},
		Scenarios: []scenario.Scenario{
			{Name: "bar"},
			{Name: "ember-beta", AllowedToFail: false},
		},
	}

	cfg, err := e.Expand(context.Background(), in, scenario.VersionCompatibility{"ember": "=2.18.0"}, nil)
	require.NoError(t, err)
	assert.True(t, cfg.UseVersionCompatibility)
	assert.Equal(t, []string{"--whatever=true"}, cfg.NpmOptions)
	assert.Equal(t, "kept", cfg.Extra["custom"])
	assert.Equal(t, []string{"bar", "ember-beta", "ember-2.18.0"}, names(cfg.Scenarios))
}

func TestExpandOverrideAlwaysApplies(t *testing.T) {
	e := newTestExpander()
	in := &scenario.Configuration{Scenarios: []scenario.Scenario{{Name: "foo"}}}

	cfg, err := e.Expand(context.Background(), in, nil, scenario.VersionCompatibility{"ember": "2.18.0"})
	require.NoError(t, err)
	assert.True(t, cfg.UseVersionCompatibility)
	assert.Equal(t, []string{"foo", "ember-2.18.0"}, names(cfg.Scenarios))
	assert.False(t, in.UseVersionCompatibility, "input is not modified")
}

func TestExpandOverrideReplacesDeclaration(t *testing.T) {
	e := newTestExpander()

	cfg, err := e.Expand(context.Background(), nil,
		scenario.VersionCompatibility{"ember": "=3.4.0"},
		scenario.VersionCompatibility{"ember": "2.18.0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ember-2.18.0"}, names(cfg.Scenarios))
}

func TestExpandCollisionMergesUserFieldsFirst(t *testing.T) {
	e := newTestExpander()
	in := &scenario.Configuration{
		UseVersionCompatibility: true,
		Scenarios: []scenario.Scenario{
			{Name: "first"},
			{Name: "ember-2.18.0", AllowedToFail: true, Command: "ember test --path dist"},
			{Name: "last"},
		},
	}

	cfg, err := e.Expand(context.Background(), in, scenario.VersionCompatibility{"ember": "2.18.0 || 3.4.0"}, nil)
	require.NoError(t, err)

	// 3 user scenarios + 2 synthetic - 1 collision
	require.Equal(t, []string{"first", "ember-2.18.0", "last", "ember-3.4.0"}, names(cfg.Scenarios))

	merged := cfg.Scenarios[1]
	assert.True(t, merged.AllowedToFail)
	assert.Equal(t, "ember test --path dist", merged.Command)
	require.NotNil(t, merged.Npm, "npm filled from the synthetic scenario")
	assert.Equal(t, "2.18.0", merged.Npm.DevDependencies["ember-source"])
}

func TestExpandCollisionKeepsUserNpm(t *testing.T) {
	e := newTestExpander()
	user := scenario.Scenario{
		Name: "ember-2.18.0",
		Npm:  &scenario.NpmOverrides{DevDependencies: map[string]string{"ember-source": "2.18.2"}},
	}
	in := &scenario.Configuration{UseVersionCompatibility: true, Scenarios: []scenario.Scenario{user}}

	cfg, err := e.Expand(context.Background(), in, scenario.VersionCompatibility{"ember": "=2.18.0"}, nil)
	require.NoError(t, err)
	require.Len(t, cfg.Scenarios, 1)
	assert.Equal(t, "2.18.2", cfg.Scenarios[0].Npm.DevDependencies["ember-source"])
}

func TestExpandMultiplePackagesOneScenarioEach(t *testing.T) {
	e := newTestExpander()

	cfg, err := e.Expand(context.Background(), nil, scenario.VersionCompatibility{
		"ember-data": "=3.28.0",
		"ember":      "=3.28.0",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"ember-3.28.0", "ember-data-3.28.0"}, names(cfg.Scenarios))
	assert.Equal(t, map[string]string{"ember-data": "3.28.0"}, cfg.Scenarios[1].Npm.DevDependencies)
}

func TestExpandRangeUsesLister(t *testing.T) {
	lister := &testutil.StaticLister{Published: map[string][]string{
		"ember-source": {"3.26.0", "3.28.0", "3.28.11", "4.0.0", "4.0.1", "4.1.0-beta.1", "5.0.0"},
	}}
	e := newTestExpander(WithLister(lister))

	cfg, err := e.Expand(context.Background(), nil, scenario.VersionCompatibility{"ember": ">=3.28.0 <5.0.0"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ember-3.28.11", "ember-4.0.1"}, names(cfg.Scenarios))
	assert.Equal(t, []string{"ember-source"}, lister.Calls)
}

func TestExpandRangeWithoutListerFails(t *testing.T) {
	e := newTestExpander()

	_, err := e.Expand(context.Background(), nil, scenario.VersionCompatibility{"ember": "^3.28.0"}, nil)
	require.Error(t, err)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "ember", rangeErr.Package)
}

func TestExpandInvalidRange(t *testing.T) {
	e := newTestExpander()

	_, err := e.Expand(context.Background(), nil, scenario.VersionCompatibility{"ember": "not a range"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `versionCompatibility ember "not a range"`)
}

func TestExpandNoPublishedMatch(t *testing.T) {
	lister := &testutil.StaticLister{Published: map[string][]string{"ember-source": {"1.0.0"}}}
	e := newTestExpander(WithLister(lister))

	_, err := e.Expand(context.Background(), nil, scenario.VersionCompatibility{"ember": ">=3.0.0"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no published version")
}

func TestActive(t *testing.T) {
	declared := scenario.VersionCompatibility{"ember": "=2.18.0"}
	withScenarios := &scenario.Configuration{Scenarios: []scenario.Scenario{{Name: "a"}}}

	assert.True(t, Active(nil, declared, nil))
	assert.False(t, Active(nil, nil, nil))
	assert.False(t, Active(withScenarios, declared, nil))
	assert.True(t, Active(withScenarios, nil, declared))
	assert.True(t, Active(&scenario.Configuration{UseVersionCompatibility: true, Scenarios: withScenarios.Scenarios}, declared, nil))
}

func TestMergeWithoutUserScenariosIsExactlySynthetic(t *testing.T) {
	synthetic := []scenario.Scenario{ember("2.18.0"), ember("3.4.0")}
	assert.Equal(t, synthetic, Merge(nil, synthetic))
}

func TestMergeNamesAreExact(t *testing.T) {
	user := []scenario.Scenario{{Name: "Ember-2.18.0"}}
	merged := Merge(user, []scenario.Scenario{ember("2.18.0")})
	assert.Equal(t, []string{"Ember-2.18.0", "ember-2.18.0"}, names(merged))
}
