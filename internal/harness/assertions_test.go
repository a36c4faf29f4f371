package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsetrace/internal/ir"
)

func num(v float64) *float64 { return &v }

func traceResult() *Result {
	rf := ir.Frame{Qubits: []int{0}, Name: "rf"}
	ro := ir.Frame{Qubits: []int{1}, Name: "ro"}
	return &Result{
		Events: []ir.PulseEvent{
			{
				Instruction: ir.Pulse{Frame: rf, Duration: 1e-8},
				StartTime:   0,
				EndTime:     1e-8,
				State:       ir.FrameState{Scale: 1, SampleRate: 1e9},
			},
			{
				Instruction: ir.Capture{Frame: ro, MemoryRegion: "ro[0]", Duration: 2e-8},
				StartTime:   1e-8,
				EndTime:     3e-8,
				State:       ir.FrameState{Scale: 1, SampleRate: 1e9},
			},
		},
		Clocks: map[string]float64{
			"rf[0]": 1e-8,
			"ro[1]": 3e-8,
		},
	}
}

func TestAssertEvent_Match(t *testing.T) {
	result := traceResult()

	err := evaluateAssertion(result, Assertion{
		Type:  AssertEvent,
		Index: 1,
		Kind:  "capture",
		Frame: "ro[1]",
		Start: num(1e-8),
		End:   num(3e-8),
	})
	assert.NoError(t, err)
}

func TestAssertEvent_KindMismatch(t *testing.T) {
	result := traceResult()

	err := evaluateAssertion(result, Assertion{Type: AssertEvent, Index: 0, Kind: "capture"})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Error(), `kind "capture"`)
}

func TestAssertEvent_IndexOutOfRange(t *testing.T) {
	result := traceResult()

	err := evaluateAssertion(result, Assertion{Type: AssertEvent, Index: 7, Kind: "pulse"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log holds 2 events")
}

func TestAssertEventCount(t *testing.T) {
	result := traceResult()

	assert.NoError(t, evaluateAssertion(result, Assertion{Type: AssertEventCount, Count: 2}))
	assert.Error(t, evaluateAssertion(result, Assertion{Type: AssertEventCount, Count: 3}))
}

func TestAssertClock(t *testing.T) {
	result := traceResult()

	assert.NoError(t, evaluateAssertion(result, Assertion{
		Type: AssertClock, Frame: "ro[1]", Time: num(3e-8),
	}))
	assert.Error(t, evaluateAssertion(result, Assertion{
		Type: AssertClock, Frame: "ro[1]", Time: num(5e-8),
	}))
	assert.Error(t, evaluateAssertion(result, Assertion{
		Type: AssertClock, Frame: "ghost[9]", Time: num(0),
	}))
}

func TestAssertClock_ToleratesFloatSums(t *testing.T) {
	result := &Result{Clocks: map[string]float64{"a[0]": 0.1 + 0.2}}

	// 0.1+0.2 != 0.3 exactly; the tolerance must absorb it.
	err := evaluateAssertion(result, Assertion{Type: AssertClock, Frame: "a[0]", Time: num(0.3)})
	assert.NoError(t, err)
}

func TestAssertLogOrder(t *testing.T) {
	result := traceResult()

	assert.NoError(t, evaluateAssertion(result, Assertion{
		Type: AssertLogOrder, Kinds: []string{"pulse", "capture"},
	}))
	assert.NoError(t, evaluateAssertion(result, Assertion{
		Type: AssertLogOrder, Kinds: []string{"capture"},
	}))

	err := evaluateAssertion(result, Assertion{
		Type: AssertLogOrder, Kinds: []string{"capture", "pulse"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched only")
}

func TestAssertError(t *testing.T) {
	failed := &Result{TraceCode: "UNDEFINED_FRAME"}

	assert.NoError(t, evaluateAssertion(failed, Assertion{Type: AssertError, Code: "UNDEFINED_FRAME"}))
	assert.Error(t, evaluateAssertion(failed, Assertion{Type: AssertError, Code: "SAME_PHASE_FRAME"}))

	succeeded := traceResult()
	err := evaluateAssertion(succeeded, Assertion{Type: AssertError, Code: "UNDEFINED_FRAME"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trace succeeded")
}
