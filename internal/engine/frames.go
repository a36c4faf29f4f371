package engine

import "github.com/roach88/pulsetrace/internal/ir"

// StateStore owns the analog state of every registered frame.
//
// Frames are registered exactly once, at initialization from the program's
// frame definitions, and never removed. State mutation can never
// implicitly register a new frame: both Get and Set fail with
// UNDEFINED_FRAME for frames outside the registry.
//
// Registration order is preserved so that the synchronization queries
// iterate frames deterministically.
type StateStore struct {
	states map[ir.FrameKey]ir.FrameState
	frames []ir.Frame // registration order
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[ir.FrameKey]ir.FrameState)}
}

// Init registers one frame per definition with its initial state: phase
// 0.0, scale 1.0, the definition's optional frequency, and its required
// sample rate. A definition without a sample rate is the fatal
// MISSING_SAMPLE_RATE error.
func (s *StateStore) Init(defs []ir.FrameDefinition) error {
	for _, def := range defs {
		if def.SampleRate == nil {
			return NewMissingSampleRateError(def.Frame)
		}
		key := def.Frame.Key()
		if _, exists := s.states[key]; !exists {
			s.frames = append(s.frames, def.Frame)
		}
		s.states[key] = ir.NewFrameState(*def.SampleRate, def.InitialFrequency)
	}
	return nil
}

// Get returns an independent value copy of the frame's state, or the
// UNDEFINED_FRAME error if the frame was never registered. The returned
// copy never aliases live state.
func (s *StateStore) Get(frame ir.Frame) (ir.FrameState, error) {
	state, ok := s.states[frame.Key()]
	if !ok {
		return ir.FrameState{}, NewUndefinedFrameError(frame)
	}
	return state.Clone(), nil
}

// Set replaces the frame's stored state wholesale. Fails with
// UNDEFINED_FRAME if the frame is not registered; a write can never create
// a frame.
func (s *StateStore) Set(frame ir.Frame, state ir.FrameState) error {
	key := frame.Key()
	if _, ok := s.states[key]; !ok {
		return NewUndefinedFrameError(frame)
	}
	s.states[key] = state.Clone()
	return nil
}

// Registered returns all registered frames in registration order.
func (s *StateStore) Registered() []ir.Frame {
	out := make([]ir.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Len returns the number of registered frames.
func (s *StateStore) Len() int {
	return len(s.frames)
}
