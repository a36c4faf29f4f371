package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestProgram writes a minimal CUE program file for testing.
func createTestProgram(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := `program: {
	frames: [{name: "rf", qubits: [0], sample_rate: 1.0e9}]
	instructions: [{pulse: {frame: "rf", duration: 1.0e-8}}]
}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	programPath := createTestProgram(t, dir, "prog.cue")

	path := writeScenario(t, dir, `
name: basic
description: "Pulse on one frame"
program: `+programPath+`
run_token: run-1
assertions:
  - type: event_count
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "basic", scenario.Name)
	assert.Equal(t, programPath, scenario.Program)
	assert.Equal(t, "run-1", scenario.RunToken)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertEventCount, scenario.Assertions[0].Type)
}

func TestLoadScenario_ResolvesRelativeProgramPath(t *testing.T) {
	dir := t.TempDir()
	createTestProgram(t, dir, "prog.cue")

	path := writeScenario(t, dir, `
name: relative
description: "Program path relative to scenario file"
program: prog.cue
assertions:
  - type: event_count
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "prog.cue"), scenario.Program)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	programPath := createTestProgram(t, dir, "prog.cue")

	// "assertion" (singular) is a typo and must be rejected.
	path := writeScenario(t, dir, `
name: typo
description: "Typo in assertions key"
program: `+programPath+`
assertion:
  - type: event_count
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingProgramFile(t *testing.T) {
	dir := t.TempDir()

	path := writeScenario(t, dir, `
name: missing
description: "Program file does not exist"
program: nope.cue
assertions:
  - type: event_count
    count: 0
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "program file not found")
}

func TestLoadScenario_RequiresAssertions(t *testing.T) {
	dir := t.TempDir()
	programPath := createTestProgram(t, dir, "prog.cue")

	path := writeScenario(t, dir, `
name: bare
description: "No assertions"
program: `+programPath+`
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertions list is required")
}

func TestValidateAssertion_PerType(t *testing.T) {
	cases := []struct {
		name    string
		a       Assertion
		wantErr string
	}{
		{"clock without frame", Assertion{Type: AssertClock, Time: new(float64)}, "frame is required"},
		{"clock without time", Assertion{Type: AssertClock, Frame: "rf[0]"}, "time is required"},
		{"log_order without kinds", Assertion{Type: AssertLogOrder}, "kinds list is required"},
		{"error without code", Assertion{Type: AssertError}, "code is required"},
		{"event with nothing to check", Assertion{Type: AssertEvent}, "at least one of"},
		{"unknown type", Assertion{Type: "trace_contains"}, "unknown assertion type"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateAssertion(0, &tc.a)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
