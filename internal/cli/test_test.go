package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: lid_close
description: "Closing the lid locks the session"
config: |
  lid_open == false => loginctl lock-session
providers:
  - name: lid
    steps:
      - lid_open: true
      - lid_open: false
assertions:
  - type: dispatched
    command: loginctl lock-session
    tick: 2
`

const failingScenario = `name: never_opens
description: "Expects a dispatch that never happens"
config: |
  lid_open == true => echo open
providers:
  - name: lid
    steps:
      - lid_open: true
      - lid_open: true
assertions:
  - type: dispatched
    command: echo open
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTestCommand_Pass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"lid.yaml": passingScenario})

	out, _, err := execute(t, &RootOptions{}, nil, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ lid_close")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_Fail(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"lid.yaml":   passingScenario,
		"never.yaml": failingScenario,
	})

	out, _, err := execute(t, &RootOptions{}, nil, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ never_opens")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"lid.yaml":   passingScenario,
		"never.yaml": failingScenario,
	})

	out, _, err := execute(t, &RootOptions{}, nil, "test", dir, "--filter", "li*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
}

func TestTestCommand_GoldenUpdateThenCompare(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"lid.yaml": passingScenario})

	out, _, err := execute(t, &RootOptions{}, nil, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden updated)")

	goldenPath := filepath.Join(dir, "golden", "lid.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"command":"loginctl lock-session"`)

	_, _, err = execute(t, &RootOptions{}, nil, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"lid_close","trace":[]}`), 0644))
	out, _, err = execute(t, &RootOptions{}, nil, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"lid.yaml": passingScenario})

	out, _, err := execute(t, &RootOptions{}, nil, "test", dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "lid_close", resp.Data.Scenarios[0].Name)
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, _, err := execute(t, &RootOptions{}, nil, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_NoScenarios(t *testing.T) {
	out, _, err := execute(t, &RootOptions{}, nil, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
