package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() PulseEvent {
	return PulseEvent{
		Instruction: Pulse{
			Frame:    Frame{Qubits: []int{0}, Name: "rf"},
			Waveform: "flat",
			Duration: 1e-7,
		},
		StartTime: 0,
		EndTime:   1e-7,
		State:     NewFrameState(1e9, nil),
	}
}

func TestEventID_Stable(t *testing.T) {
	ev := testEvent()

	first, err := EventID("run-1", 0, ev)
	require.NoError(t, err)
	again, err := EventID("run-1", 0, ev)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Len(t, first, 64, "hex-encoded SHA-256")
}

func TestEventID_SensitiveToRunAndIndex(t *testing.T) {
	ev := testEvent()

	base, err := EventID("run-1", 0, ev)
	require.NoError(t, err)

	otherRun, err := EventID("run-2", 0, ev)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherRun)

	otherIndex, err := EventID("run-1", 1, ev)
	require.NoError(t, err)
	assert.NotEqual(t, base, otherIndex)
}

func TestEventID_SensitiveToPayload(t *testing.T) {
	ev := testEvent()
	base, err := EventID("run-1", 0, ev)
	require.NoError(t, err)

	ev.EndTime = 2e-7
	changed, err := EventID("run-1", 0, ev)
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)
}

func TestProgramHash_IgnoresQubitOrder(t *testing.T) {
	rate := 1e9
	a := Program{
		Frames: []FrameDefinition{
			{Frame: Frame{Qubits: []int{1, 0}, Name: "cz"}, SampleRate: &rate},
		},
		Instructions: []Instruction{Fence{Qubits: []int{1, 0}}},
	}
	b := Program{
		Frames: []FrameDefinition{
			{Frame: Frame{Qubits: []int{0, 1}, Name: "cz"}, SampleRate: &rate},
		},
		Instructions: []Instruction{Fence{Qubits: []int{0, 1}}},
	}

	ha, err := ProgramHash(a)
	require.NoError(t, err)
	hb, err := ProgramHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
}

func TestProgramHash_SensitiveToInstructions(t *testing.T) {
	rate := 1e9
	base := Program{
		Frames: []FrameDefinition{
			{Frame: Frame{Qubits: []int{0}, Name: "rf"}, SampleRate: &rate},
		},
		Instructions: []Instruction{
			Pulse{Frame: Frame{Qubits: []int{0}, Name: "rf"}, Duration: 1e-7},
		},
	}
	other := base
	other.Instructions = []Instruction{
		Pulse{Frame: Frame{Qubits: []int{0}, Name: "rf"}, Duration: 2e-7},
	}

	hBase, err := ProgramHash(base)
	require.NoError(t, err)
	hOther, err := ProgramHash(other)
	require.NoError(t, err)
	assert.NotEqual(t, hBase, hOther)
}

func TestCanonicalInstruction_KindDisambiguates(t *testing.T) {
	frame := Frame{Qubits: []int{0}, Name: "ro"}

	capture := CanonicalInstruction(Capture{Frame: frame, Duration: 1e-6})
	raw := CanonicalInstruction(RawCapture{Frame: frame, Duration: 1e-6})

	assert.Equal(t, "capture", capture["kind"])
	assert.Equal(t, "raw_capture", raw["kind"])
}

func TestCanonicalInstruction_MutationKindIsOp(t *testing.T) {
	m := FrameMutation{
		Frame: Frame{Qubits: []int{0}, Name: "rf"},
		Op:    OpShiftPhase,
		Value: 0.5,
	}
	assert.Equal(t, "shift_phase", CanonicalInstruction(m)["kind"])
}

func TestCanonicalEvent_OmitsAbsentFrequency(t *testing.T) {
	obj := CanonicalEvent(testEvent())
	state, ok := obj["frame_state"].(map[string]any)
	require.True(t, ok)
	_, present := state["frequency"]
	assert.False(t, present, "absent frequency must be omitted, not nulled")
}
