package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario lays out a program and scenario file in one directory
// and returns the scenario path.
func writeScenario(t *testing.T, scenarioYAML string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "program.cue"), []byte(validProgramCUE), 0644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0644))
	return path
}

const passingScenarioYAML = `
name: two-events
description: A pulse and a capture produce two log events in order.
program: program.cue
assertions:
  - type: event_count
    count: 2
  - type: log_order
    kinds: [pulse, capture]
`

const failingScenarioYAML = `
name: wrong-count
description: Deliberately wrong event count to exercise failure reporting.
program: program.cue
assertions:
  - type: event_count
    count: 5
`

func TestTestPassingScenario(t *testing.T) {
	path := writeScenario(t, passingScenarioYAML)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "✓ two-events")
	assert.Contains(t, output, "✓ All scenarios passed (1 run)")
}

func TestTestFailingScenario(t *testing.T) {
	path := writeScenario(t, failingScenarioYAML)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ wrong-count")
	assert.Contains(t, output, "1 of 1 scenario(s) failed")
}

func TestTestMixedScenarios(t *testing.T) {
	passing := writeScenario(t, passingScenarioYAML)
	failing := writeScenario(t, failingScenarioYAML)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{passing, failing})

	err := cmd.Execute()
	require.Error(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ two-events")
	assert.Contains(t, output, "✗ wrong-count")
	assert.Contains(t, output, "1 of 2 scenario(s) failed")
}

func TestTestJSON(t *testing.T) {
	path := writeScenario(t, passingScenarioYAML)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["passed"])
	assert.Equal(t, float64(0), data["failed"])
}

func TestTestMissingScenarioFile(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestInvalidScenarioFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nunknown_field: true\n"), 0644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
