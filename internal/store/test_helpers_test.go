package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/pulsetrace/internal/engine"
	"github.com/roach88/pulsetrace/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRate(v float64) *float64 { return &v }

// createTestProgram builds a small two-frame program with one event per
// frame.
func createTestProgram() ir.Program {
	rf := ir.Frame{Qubits: []int{0}, Name: "rf"}
	ro := ir.Frame{Qubits: []int{0}, Name: "ro"}
	return ir.Program{
		Frames: []ir.FrameDefinition{
			{Frame: rf, SampleRate: testRate(1e9)},
			{Frame: ro, SampleRate: testRate(2e9), InitialFrequency: testRate(7.1e9)},
		},
		Instructions: []ir.Instruction{
			ir.FrameMutation{Frame: rf, Op: ir.OpSetPhase, Value: 0.5},
			ir.Pulse{Frame: rf, Waveform: "flat", Duration: 4e-8},
			ir.Capture{Frame: ro, MemoryRegion: "ro[0]", Duration: 1e-7},
		},
	}
}

// traceTestProgram runs the test program through the engine.
func traceTestProgram(t *testing.T) (ir.Program, []ir.PulseEvent) {
	t.Helper()
	program := createTestProgram()
	events, err := engine.Trace(program)
	if err != nil {
		t.Fatalf("Trace() failed: %v", err)
	}
	return program, events
}
