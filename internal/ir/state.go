package ir

// FrameState holds the analog state of a frame at a point in logical time.
//
// Phase and Scale always have a value (defaults 0.0 and 1.0). Frequency is
// optional: a frame may have no frequency until a SetFrequency mutation
// assigns one. SampleRate is required at definition time and never changes
// afterwards.
//
// FrameState is a value type. Every read for logging purposes must go
// through Clone so that a stored snapshot can never alias live state.
type FrameState struct {
	Phase      float64  `json:"phase"`
	Scale      float64  `json:"scale"`
	Frequency  *float64 `json:"frequency,omitempty"`
	SampleRate float64  `json:"sample_rate"`
}

// NewFrameState returns the initial state for a frame definition:
// phase 0.0, scale 1.0, and the definition's optional frequency.
func NewFrameState(sampleRate float64, frequency *float64) FrameState {
	s := FrameState{
		Phase:      0.0,
		Scale:      1.0,
		SampleRate: sampleRate,
	}
	if frequency != nil {
		f := *frequency
		s.Frequency = &f
	}
	return s
}

// Clone returns an independent deep copy of the state. The optional
// frequency is duplicated so mutations of the original cannot reach the
// copy.
func (s FrameState) Clone() FrameState {
	out := s
	if s.Frequency != nil {
		f := *s.Frequency
		out.Frequency = &f
	}
	return out
}

// FrameDefinition declares a frame and its initial analog parameters.
//
// SampleRate is a pointer because its absence must be detectable: a
// definition without a sample rate is a fatal initialization error, not a
// silent zero.
type FrameDefinition struct {
	Frame            Frame    `json:"frame"`
	SampleRate       *float64 `json:"sample_rate,omitempty"`
	InitialFrequency *float64 `json:"initial_frequency,omitempty"`
}
