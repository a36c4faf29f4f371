package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsetrace/internal/ir"
)

func rate(v float64) *float64 { return &v }

func validProgram() ir.Program {
	return ir.Program{
		Frames: []ir.FrameDefinition{
			{Frame: ir.Frame{Qubits: []int{0}, Name: "rf"}, SampleRate: rate(1e9)},
			{Frame: ir.Frame{Qubits: []int{0, 1}, Name: "cz"}, SampleRate: rate(2e9)},
		},
		Instructions: []ir.Instruction{
			ir.Pulse{Frame: ir.Frame{Qubits: []int{0}, Name: "rf"}, Duration: 1e-7},
			ir.Fence{Qubits: []int{0}},
			ir.FrameMutation{Frame: ir.Frame{Qubits: []int{0, 1}, Name: "cz"}, Op: ir.OpSetPhase, Value: 0.5},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateProgram_Clean(t *testing.T) {
	assert.Empty(t, ValidateProgram(validProgram()))
}

func TestValidateProgram_MissingSampleRate(t *testing.T) {
	p := validProgram()
	p.Frames[0].SampleRate = nil

	errs := ValidateProgram(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMissingSampleRate, errs[0].Code)
	assert.Equal(t, "frames[0].sample_rate", errs[0].Field)
}

func TestValidateProgram_NonPositiveSampleRate(t *testing.T) {
	p := validProgram()
	p.Frames[1].SampleRate = rate(0)

	errs := ValidateProgram(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidSampleRate, errs[0].Code)
}

func TestValidateProgram_DuplicateFrame(t *testing.T) {
	p := validProgram()
	// Same canonical identity spelled with reordered, duplicated qubits.
	p.Frames = append(p.Frames, ir.FrameDefinition{
		Frame:      ir.Frame{Qubits: []int{1, 0, 1}, Name: "cz"},
		SampleRate: rate(2e9),
	})

	errs := ValidateProgram(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateFrame, errs[0].Code)
}

func TestValidateProgram_BadFrameDefinition(t *testing.T) {
	p := ir.Program{
		Frames: []ir.FrameDefinition{
			{Frame: ir.Frame{Name: ""}, SampleRate: rate(1e9)},
		},
	}

	errs := ValidateProgram(p)
	assert.ElementsMatch(t, []string{ErrEmptyFrameName, ErrFrameWithoutQubits}, codes(errs))
}

func TestValidateProgram_UndefinedInstructionFrame(t *testing.T) {
	p := validProgram()
	p.Instructions = append(p.Instructions,
		ir.Capture{Frame: ir.Frame{Qubits: []int{9}, Name: "ghost"}, MemoryRegion: "ro[0]", Duration: 1e-7})

	errs := ValidateProgram(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUndefinedFrame, errs[0].Code)
	assert.Equal(t, "instructions[3].frame", errs[0].Field)
}

func TestValidateProgram_DelayTargetsAreExempt(t *testing.T) {
	p := validProgram()
	p.Instructions = append(p.Instructions,
		ir.DelayFrames{Frames: []ir.Frame{{Qubits: []int{9}, Name: "ghost"}}, Duration: 1e-8})

	assert.Empty(t, ValidateProgram(p))
}

func TestValidateProgram_NegativeDuration(t *testing.T) {
	p := validProgram()
	p.Instructions = append(p.Instructions,
		ir.DelayQubits{Qubits: []int{0}, Duration: -1e-9})

	errs := ValidateProgram(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrNegativeDuration, errs[0].Code)
}

func TestValidateProgram_SelfSwap(t *testing.T) {
	p := validProgram()
	rf := ir.Frame{Qubits: []int{0}, Name: "rf"}
	p.Instructions = append(p.Instructions, ir.SwapPhases{Left: rf, Right: rf})

	errs := ValidateProgram(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrSelfSwap, errs[0].Code)
}

func TestValidateProgram_UnknownMutationOp(t *testing.T) {
	p := validProgram()
	p.Instructions = append(p.Instructions,
		ir.FrameMutation{Frame: ir.Frame{Qubits: []int{0}, Name: "rf"}, Op: "negate_phase"})

	errs := ValidateProgram(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownMutation, errs[0].Code)
}

func TestValidateProgram_CollectsAllErrors(t *testing.T) {
	p := ir.Program{
		Frames: []ir.FrameDefinition{
			{Frame: ir.Frame{Qubits: []int{0}, Name: "rf"}},
		},
		Instructions: []ir.Instruction{
			ir.Pulse{Frame: ir.Frame{Qubits: []int{9}, Name: "ghost"}, Duration: -1},
		},
	}

	errs := ValidateProgram(p)
	assert.ElementsMatch(t,
		[]string{ErrMissingSampleRate, ErrUndefinedFrame, ErrNegativeDuration},
		codes(errs))
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Field: "frames[0]", Message: "boom", Code: ErrDuplicateFrame}
	assert.Equal(t, "[E102] frames[0]: boom", err.Error())
}
