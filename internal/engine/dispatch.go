package engine

import "github.com/roach88/pulsetrace/internal/ir"

// apply dispatches one instruction against the tracer's stores.
//
// The switch is exhaustive over the sealed ir.Instruction union: the three
// pulse-like variants share the ir.PulseLike case, and anything outside
// the union is the fatal UNSUPPORTED_INSTRUCTION error.
func (t *Tracer) apply(in ir.Instruction) error {
	switch i := in.(type) {
	case ir.DelayFrames:
		return t.applyDelayFrames(i)
	case ir.DelayQubits:
		return t.applyDelayQubits(i)
	case ir.Fence:
		return t.applyFence(i)
	case ir.FrameMutation:
		return t.applyMutation(i)
	case ir.SwapPhases:
		return t.applySwapPhases(i)
	case ir.PulseLike:
		return t.emit(i)
	default:
		return NewUnsupportedInstructionError(in)
	}
}

// applyDelayFrames advances each listed frame's clock independently.
// No cross-frame synchronization takes place, and the targets need not
// carry registered analog state.
func (t *Tracer) applyDelayFrames(d ir.DelayFrames) error {
	for _, f := range d.Frames {
		t.clocks.Set(f, t.clocks.Get(f)+d.Duration)
	}
	return nil
}

// applyDelayQubits synchronizes every frame whose qubit set exactly
// matches the target set to the latest clock among them.
//
// The instruction's duration is intentionally NOT added to the
// synchronized time. The reference implementation reads the duration but
// never applies it, and that literal behavior is preserved here; see
// DESIGN.md.
func (t *Tracer) applyDelayQubits(d ir.DelayQubits) error {
	frames := t.states.Exact(d.Qubits)
	latest := t.clocks.Latest(frames)
	for _, f := range frames {
		t.clocks.Set(f, latest)
	}
	return nil
}

// applyFence aligns every frame touching the target qubits to the latest
// clock among them.
func (t *Tracer) applyFence(fence ir.Fence) error {
	frames := t.states.Intersecting(fence.Qubits)
	latest := t.clocks.Latest(frames)
	for _, f := range frames {
		t.clocks.Set(f, latest)
	}
	return nil
}

// applyMutation performs a read-modify-write of a single state field.
func (t *Tracer) applyMutation(m ir.FrameMutation) error {
	state, err := t.states.Get(m.Frame)
	if err != nil {
		return err
	}

	switch m.Op {
	case ir.OpSetFrequency:
		v := m.Value
		state.Frequency = &v
	case ir.OpSetPhase:
		state.Phase = m.Value
	case ir.OpShiftPhase:
		state.Phase += m.Value
	case ir.OpSetScale:
		state.Scale = m.Value
	default:
		return NewUnsupportedInstructionError(m)
	}

	return t.states.Set(m.Frame, state)
}

// applySwapPhases exchanges exactly the phase fields of two distinct
// frames. Scale, frequency and sample rate stay untouched on both.
func (t *Tracer) applySwapPhases(s ir.SwapPhases) error {
	if s.Left.Key() == s.Right.Key() {
		return NewSamePhaseFrameError(s.Left)
	}

	left, err := t.states.Get(s.Left)
	if err != nil {
		return err
	}
	right, err := t.states.Get(s.Right)
	if err != nil {
		return err
	}

	left.Phase, right.Phase = right.Phase, left.Phase

	if err := t.states.Set(s.Left, left); err != nil {
		return err
	}
	return t.states.Set(s.Right, right)
}

// emit handles the pulse-like instructions: pulse, capture, raw capture.
//
// The event's start time is the target frame's current clock; its end time
// is start plus the declared duration. The state snapshot is taken before
// the clock advances. A blocking instruction then reserves the frame's
// qubits: every registered frame sharing a qubit with the target
// (including the target itself) has its clock raised to at least the end
// time, so no overlapping channel can be considered free before the pulse
// finishes. Non-blocking instructions leave other frames' clocks alone.
func (t *Tracer) emit(p ir.PulseLike) error {
	frame := p.Target()

	snapshot, err := t.states.Get(frame)
	if err != nil {
		return err
	}

	start := t.clocks.Get(frame)
	end := start + p.PulseDuration()

	t.log = append(t.log, ir.PulseEvent{
		Instruction: p,
		StartTime:   start,
		EndTime:     end,
		State:       snapshot,
	})

	t.clocks.Set(frame, end)

	if p.Blocking() {
		for _, other := range t.states.Intersecting(frame.Qubits) {
			if t.clocks.Get(other) < end {
				t.clocks.Set(other, end)
			}
		}
	}

	return nil
}
