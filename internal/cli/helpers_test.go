package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsetrace/internal/engine"
	"github.com/roach88/pulsetrace/internal/store"
)

// validProgramCUE defines two frames and emits two pulse events.
const validProgramCUE = `
program: {
	frames: [
		{name: "rf", qubits: [0], sample_rate: 1.0e9},
		{name: "ro", qubits: [1], sample_rate: 1.0e9},
	]
	instructions: [
		{pulse: {frame: "rf", waveform: "flat", duration: 1.0e-7}},
		{capture: {frame: "ro", memory_region: "ro[0]", duration: 2.0e-7}},
	]
}
`

// invalidProgramCUE compiles but fails static validation: the frame has
// no sample rate.
const invalidProgramCUE = `
program: {
	frames: [
		{name: "rf", qubits: [0]},
	]
	instructions: [
		{pulse: {frame: "rf", duration: 1.0e-7}},
	]
}
`

// writeProgramFile writes a CUE program into a temp directory and
// returns its path.
func writeProgramFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.cue")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seedRun traces validProgramCUE and persists it under the given token,
// returning the database path.
func seedRun(t *testing.T, token string) string {
	t.Helper()

	program, err := LoadProgramFile(writeProgramFile(t, validProgramCUE))
	require.NoError(t, err)

	events, err := engine.Trace(*program)
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "traces.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.WriteTrace(context.Background(), token, *program, events)
	require.NoError(t, err)

	return dbPath
}
