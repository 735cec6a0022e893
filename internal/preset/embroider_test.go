package preset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tryeach/internal/project"
	"github.com/roach88/tryeach/internal/scenario"
	"github.com/roach88/tryeach/internal/selector"
	"github.com/roach88/tryeach/internal/testutil"
)

func loadProject(t *testing.T, manifest string) *project.Project {
	t.Helper()
	root := t.TempDir()
	if manifest != "" {
		testutil.WriteFile(t, root, "package.json", manifest)
	}
	p, err := project.Load(root)
	require.NoError(t, err)
	return p
}

func TestEmbroiderGenerate(t *testing.T) {
	gen := NewEmbroider(loadProject(t, `{"name": "addon"}`), nil)

	for _, variant := range selector.Variants {
		t.Run(variant, func(t *testing.T) {
			got, err := gen.Generate(context.Background(), variant)
			require.NoError(t, err)

			assert.Equal(t, "embroider-"+variant, got.Name)
			assert.Equal(t, map[string]string{EmbroiderOptionsEnv: variant}, got.Env)
			require.NotNil(t, got.Npm)
			assert.Equal(t, map[string]string{
				"@embroider/core":       "latest",
				"@embroider/webpack":    "latest",
				"@embroider/compat":     "latest",
				"@embroider/test-setup": "latest",
			}, got.Npm.DevDependencies)
			assert.Nil(t, got.Npm.Dependencies)
		})
	}
}

func TestEmbroiderVersionFromProject(t *testing.T) {
	gen := NewEmbroider(loadProject(t, `{
  "name": "addon",
  "devDependencies": {"@embroider/test-setup": "^3.0.1"}
}`), nil)

	got, err := gen.Generate(context.Background(), selector.VariantOptimized)
	require.NoError(t, err)
	assert.Equal(t, "^3.0.1", got.Npm.DevDependencies["@embroider/core"])
	assert.Equal(t, "^3.0.1", got.Npm.DevDependencies["@embroider/test-setup"])
}

func TestEmbroiderWithoutManifest(t *testing.T) {
	gen := NewEmbroider(loadProject(t, ""), nil)
	assert.Equal(t, DefaultEmbroiderVersion, gen.Version())

	assert.Equal(t, DefaultEmbroiderVersion, NewEmbroider(nil, nil).Version())
}

func TestEmbroiderRejectsUnknownVariant(t *testing.T) {
	_, err := NewEmbroider(nil, nil).Generate(context.Background(), "turbo")
	require.Error(t, err)
	assert.True(t, selector.IsUsageError(err))
}

func TestEmbroiderWithSelector(t *testing.T) {
	gen := NewEmbroider(loadProject(t, `{"name": "addon"}`), nil)
	cfg := &scenario.Configuration{Scenarios: []scenario.Scenario{{Name: "ember-lts"}}}

	got, err := selector.New(gen).Select(context.Background(), cfg, selector.Request{
		PresetFamily:  EmbroiderFamily,
		PresetVariant: selector.VariantSafe,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "embroider-safe", got[0].Name)
}
