package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPrintsYAML(t *testing.T) {
	h := newHarness(t)
	h.config(threeScenarios)

	require.NoError(t, h.run("config"))
	out := h.out.String()
	assert.Contains(t, out, "- name: ember-lts")
	assert.Contains(t, out, "ember-source: ~4.12.0")
	assert.Contains(t, out, "allowedToFail: true")
	assert.Contains(t, out, "command: ember test")
}

func TestConfigJSON(t *testing.T) {
	h := newHarness(t)
	h.config(threeScenarios + "owner: platform-team\n")

	require.NoError(t, h.run("config", "--format", "json"))

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scenarios []struct {
				Name string `json:"name"`
			} `json:"scenarios"`
			Owner string `json:"owner"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.Scenarios, 3)
	assert.Equal(t, "platform-team", resp.Data.Owner, "custom fields pass through")
}

func TestConfigEmberOverride(t *testing.T) {
	h := newHarness(t)
	h.config(threeScenarios)

	require.NoError(t, h.run("config", "--ember", "=3.28.0"))
	assert.Contains(t, h.out.String(), "name: ember-3.28.0")
	assert.Contains(t, h.out.String(), "useVersionCompatibility: true")
}

func TestConfigNotFound(t *testing.T) {
	h := newHarness(t)

	err := h.run("config")
	require.Error(t, err)
	assert.Equal(t, CodeConfigNotFound, ErrorCode(err))
}

func TestConfigInvalid(t *testing.T) {
	h := newHarness(t)
	h.config("scenarios:\n  - npm: {}\n")

	err := h.run("config")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, CodeInvalidConfig, ErrorCode(err))
	assert.Contains(t, err.Error(), "name is required")
}
