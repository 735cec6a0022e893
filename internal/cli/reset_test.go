package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tryeach/internal/deps"
	"github.com/roach88/tryeach/internal/testutil"
)

func TestResetRestoresBackup(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.root, filepath.Join(deps.BackupDir, "package.json"), testutil.FixtureManifest)
	testutil.WriteFile(t, h.root, filepath.Join(deps.BackupDir, "yarn.lock"), "# original\n")
	testutil.WriteFile(t, h.root, "package.json", `{"name": "fixture-addon", "devDependencies": {"ember-source": "5.4.0"}}`)

	require.NoError(t, h.run("reset"))

	assert.Equal(t, "Restored original dependencies (yarn).\n", h.out.String())
	assert.Equal(t, testutil.FixtureManifest, testutil.ReadFile(t, h.root, "package.json"))
	assert.Equal(t, "# original\n", testutil.ReadFile(t, h.root, "yarn.lock"))
	assert.Equal(t, []string{"yarn install --no-lockfile --ignore-engines"}, h.runner.Lines())

	require.NoError(t, h.run("reset"))
	assert.Equal(t, "Nothing to reset.\n", h.out.String())
}

func TestResetInstallFailure(t *testing.T) {
	h := newHarness(t)
	testutil.WriteFile(t, h.root, filepath.Join(deps.BackupDir, "package.json"), testutil.FixtureManifest)
	h.runner.ExitCodes = map[string]int{"npm install --no-package-lock": 1}

	err := h.run("reset")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestResetAfterSkippedCleanupKeepsYarnLock(t *testing.T) {
	h := newHarness(t)
	h.opts.Deps.Applier = nil
	h.config(`
scenarios:
  - name: ember-release
    npm:
      devDependencies:
        ember-source: 5.4.0
`)
	testutil.WriteFile(t, h.root, "yarn.lock", "# original\n")

	require.NoError(t, h.run("each", "--skip-cleanup"))
	assert.Contains(t, testutil.ReadFile(t, h.root, "package.json"), `"ember-source": "5.4.0"`)
	testutil.WriteFile(t, h.root, "yarn.lock", "# rewritten by install\n")

	require.NoError(t, h.run("reset"))

	assert.Equal(t, "Restored original dependencies (yarn).\n", h.out.String())
	assert.Equal(t, testutil.FixtureManifest, testutil.ReadFile(t, h.root, "package.json"))
	assert.Equal(t, "# original\n", testutil.ReadFile(t, h.root, "yarn.lock"))
	assert.Equal(t, []string{
		"yarn install --no-lockfile --ignore-engines",
		"npm test",
		"yarn install --no-lockfile --ignore-engines",
	}, h.runner.Lines())
}
